package protocol

import (
	"fmt"
	"strings"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

// Converters between game types and wire types. The server encodes with
// the FromGame direction; clients decode with ToGame before handing
// state to an agent.

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Compact()
	}
	return out
}

func parseCards(ss []string) ([]deck.Card, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]deck.Card, len(ss))
	for i, s := range ss {
		c, err := deck.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// PlayerStateFromGame converts a seat view. The engine already blanks
// hole cards for everyone but the snapshot's viewer, so no extra
// filtering happens here.
func PlayerStateFromGame(p game.PlayerState) PlayerStateData {
	var hole []string
	if len(p.HoleCards) > 0 {
		hole = cardStrings(p.HoleCards)
	}
	return PlayerStateData{
		Seat:      p.Seat,
		Name:      p.Name,
		Chips:     p.Chips,
		Bet:       p.Bet,
		TotalBet:  p.TotalBet,
		Folded:    p.Folded,
		AllIn:     p.AllIn,
		HoleCards: hole,
	}
}

// PlayerStateToGame is the inverse of PlayerStateFromGame.
func PlayerStateToGame(p PlayerStateData) (game.PlayerState, error) {
	hole, err := parseCards(p.HoleCards)
	if err != nil {
		return game.PlayerState{}, fmt.Errorf("player %s hole cards: %w", p.Name, err)
	}
	return game.PlayerState{
		Seat:      p.Seat,
		Name:      p.Name,
		Chips:     p.Chips,
		Bet:       p.Bet,
		TotalBet:  p.TotalBet,
		Folded:    p.Folded,
		AllIn:     p.AllIn,
		HoleCards: hole,
	}, nil
}

func ValidActionInfoFromGame(va game.ValidAction) ValidActionInfo {
	return ValidActionInfo{
		Action:    va.Action.String(),
		MinAmount: va.MinAmount,
		MaxAmount: va.MaxAmount,
	}
}

// ValidActionToGame is the inverse of ValidActionInfoFromGame.
func ValidActionToGame(va ValidActionInfo) (game.ValidAction, error) {
	action, err := ParseAction(va.Action)
	if err != nil {
		return game.ValidAction{}, err
	}
	return game.ValidAction{
		Action:    action,
		MinAmount: va.MinAmount,
		MaxAmount: va.MaxAmount,
	}, nil
}

func TableStateFromGame(ts game.TableState) TableStateData {
	players := make([]PlayerStateData, len(ts.Players))
	for i, p := range ts.Players {
		players[i] = PlayerStateFromGame(p)
	}
	return TableStateData{
		HandID:     ts.HandID,
		Street:     ts.Street.String(),
		Board:      cardStrings(ts.Board),
		Pot:        ts.Pot,
		CurrentBet: ts.CurrentBet,
		MinRaise:   ts.MinRaise,
		SmallBlind: ts.SmallBlind,
		BigBlind:   ts.BigBlind,
		Button:     ts.Button,
		Players:    players,
		Acting:     ts.Acting,
	}
}

// TableStateToGame rebuilds the engine view a remote agent reasons
// about from its wire form.
func TableStateToGame(ts TableStateData) (game.TableState, error) {
	street, err := ParseStreet(ts.Street)
	if err != nil {
		return game.TableState{}, err
	}
	board, err := parseCards(ts.Board)
	if err != nil {
		return game.TableState{}, fmt.Errorf("board: %w", err)
	}
	players := make([]game.PlayerState, len(ts.Players))
	for i, p := range ts.Players {
		gp, err := PlayerStateToGame(p)
		if err != nil {
			return game.TableState{}, err
		}
		players[i] = gp
	}
	return game.TableState{
		HandID:     ts.HandID,
		Street:     street,
		Board:      board,
		Pot:        ts.Pot,
		CurrentBet: ts.CurrentBet,
		MinRaise:   ts.MinRaise,
		SmallBlind: ts.SmallBlind,
		BigBlind:   ts.BigBlind,
		Button:     ts.Button,
		Players:    players,
		Acting:     ts.Acting,
	}, nil
}

// ParseAction converts a wire action string back into a game.Action.
func ParseAction(s string) (game.Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return game.Fold, nil
	case "check":
		return game.Check, nil
	case "call":
		return game.Call, nil
	case "raise":
		return game.Raise, nil
	case "allin", "all-in":
		return game.AllIn, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ParseStreet converts a wire street string back into a game.Street.
func ParseStreet(s string) (game.Street, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preflop":
		return game.PreFlop, nil
	case "flop":
		return game.Flop, nil
	case "turn":
		return game.Turn, nil
	case "river":
		return game.River, nil
	case "showdown":
		return game.Showdown, nil
	}
	return 0, fmt.Errorf("unknown street %q", s)
}

// MessageFromEvent converts a game event into the wire message a given
// viewer should see. It returns false when the event is not for that
// viewer, which is how another player's hole cards stay private.
func MessageFromEvent(ev game.GameEvent, viewer string) (*Message, bool) {
	switch e := ev.(type) {
	case game.HandStartEvent:
		players := make([]PlayerStateData, len(e.Players))
		for i, p := range e.Players {
			players[i] = PlayerStateFromGame(p)
		}
		msg, err := NewMessage(TypeHandStart, HandStartData{
			HandID:     e.HandID,
			Players:    players,
			Button:     e.Button,
			SmallBlind: e.SmallBlind,
			BigBlind:   e.BigBlind,
		})
		return msg, err == nil

	case game.HoleCardsEvent:
		if e.Name != viewer {
			return nil, false
		}
		msg, err := NewMessage(TypeHoleCards, HoleCardsData{
			HandID: e.HandID,
			Seat:   e.Seat,
			Name:   e.Name,
			Cards:  cardStrings(e.Cards),
		})
		return msg, err == nil

	case game.PlayerActionEvent:
		msg, err := NewMessage(TypePlayerAction, PlayerActionData{
			HandID: e.HandID,
			Seat:   e.Seat,
			Name:   e.Name,
			Street: e.Street.String(),
			Action: e.Action.String(),
			Amount: e.Amount,
			To:     e.To,
			Pot:    e.Pot,
		})
		return msg, err == nil

	case game.StreetChangeEvent:
		pots := make([]PotData, len(e.Pots))
		for i, p := range e.Pots {
			pots[i] = PotData{Amount: p.Amount, Eligible: p.Eligible}
		}
		msg, err := NewMessage(TypeStreetChange, StreetChangeData{
			HandID: e.HandID,
			Street: e.Street.String(),
			Board:  cardStrings(e.Board),
			Pots:   pots,
		})
		return msg, err == nil

	case game.ShowdownEvent:
		hands := make([]ShowdownHandData, len(e.Hands))
		for i, sh := range e.Hands {
			hands[i] = ShowdownHandData{
				Seat:      sh.Seat,
				Name:      sh.Name,
				HoleCards: cardStrings(sh.HoleCards),
				Hand:      sh.Rank.Describe(),
			}
		}
		msg, err := NewMessage(TypeShowdown, ShowdownData{
			HandID: e.HandID,
			Board:  cardStrings(e.Board),
			Hands:  hands,
		})
		return msg, err == nil

	case game.HandEndEvent:
		res := e.Result
		winners := make([]WinnerData, len(res.Winners))
		for i, w := range res.Winners {
			wd := WinnerData{Seat: w.Seat, Name: w.Name, Amount: w.Amount}
			if res.Showdown {
				wd.Hand = w.Rank.Describe()
			}
			winners[i] = wd
		}
		deltas := make([]DeltaData, len(res.Deltas))
		for i, d := range res.Deltas {
			deltas[i] = DeltaData{Seat: d.Seat, Name: d.Name, Net: d.Net}
		}
		msg, err := NewMessage(TypeHandEnd, HandEndData{
			HandID:   res.HandID,
			Board:    cardStrings(res.Board),
			Pot:      res.PotTotal,
			Winners:  winners,
			Deltas:   deltas,
			Showdown: res.Showdown,
		})
		return msg, err == nil
	}

	return nil, false
}
