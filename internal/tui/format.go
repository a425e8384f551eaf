package tui

import (
	"fmt"
	"strings"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
)

// formatCards renders a hand of cards with suit colouring, e.g. "[A♠ K♦]".
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.Suit.Red() {
			parts[i] = RedCardStyle.Render(c.String())
		} else {
			parts[i] = BlackCardStyle.Render(c.String())
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func streetBanner(s game.Street) string {
	name := strings.ToUpper(s.String())
	if s == game.PreFlop {
		name = "PRE-FLOP"
	}
	return "*** " + name + " ***"
}

// RenderEvent converts a game event into hand-log lines from one
// player's point of view. Hole cards belonging to anyone else render
// nothing.
func RenderEvent(ev game.GameEvent, viewer string) []string {
	switch e := ev.(type) {
	case game.HandStartEvent:
		return renderHandStart(e)
	case game.HoleCardsEvent:
		if e.Name != viewer {
			return nil
		}
		return []string{
			fmt.Sprintf("Dealt to you: %s", formatCards(e.Cards)),
			"",
			streetBanner(game.PreFlop),
		}
	case game.PlayerActionEvent:
		return []string{renderAction(e)}
	case game.StreetChangeEvent:
		return renderStreetChange(e)
	case game.ShowdownEvent:
		return renderShowdown(e)
	case game.HandEndEvent:
		return renderHandEnd(e)
	}
	return nil
}

func renderHandStart(e game.HandStartEvent) []string {
	lines := []string{
		"",
		fmt.Sprintf("Hand %s • %d players • $%d/$%d", e.HandID, len(e.Players), e.SmallBlind, e.BigBlind),
	}
	// Bet carries what was actually posted, which can be short of the
	// blind when the stack does not cover it.
	sb, bb := game.BlindSeats(e.Button, len(e.Players))
	if p := e.Players[sb]; p.Bet > 0 {
		lines = append(lines, fmt.Sprintf("%s: posts small blind $%d", p.Name, p.Bet))
	}
	if p := e.Players[bb]; p.Bet > 0 {
		lines = append(lines, fmt.Sprintf("%s: posts big blind $%d", p.Name, p.Bet))
	}
	return append(lines, "*** HOLE CARDS ***")
}

func renderAction(e game.PlayerActionEvent) string {
	switch e.Action {
	case game.Fold:
		return fmt.Sprintf("%s: folds", e.Name)
	case game.Check:
		return fmt.Sprintf("%s: checks", e.Name)
	case game.Call:
		return fmt.Sprintf("%s: calls $%d (pot now: $%d)", e.Name, e.Amount, e.Pot)
	case game.Raise:
		return fmt.Sprintf("%s: raises to $%d (pot now: $%d)", e.Name, e.To, e.Pot)
	case game.AllIn:
		return fmt.Sprintf("%s: goes all-in for $%d (pot now: $%d)", e.Name, e.To, e.Pot)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Action)
}

func renderStreetChange(e game.StreetChangeEvent) []string {
	lines := []string{"", streetBanner(e.Street)}
	switch e.Street {
	case game.Flop:
		lines = append(lines, fmt.Sprintf("Board: %s", formatCards(e.Board)))
	case game.Turn, game.River:
		n := len(e.Board)
		lines = append(lines, fmt.Sprintf("Board: %s %s",
			formatCards(e.Board[:n-1]), formatCards(e.Board[n-1:])))
	}
	return append(lines, fmt.Sprintf("Pot: $%d", potTotal(e.Pots)))
}

func renderShowdown(e game.ShowdownEvent) []string {
	lines := []string{
		"",
		"*** SHOWDOWN ***",
		fmt.Sprintf("Final board: %s", formatCards(e.Board)),
	}
	for _, h := range e.Hands {
		lines = append(lines, fmt.Sprintf("%s: shows %s (%s)", h.Name, formatCards(h.HoleCards), h.Rank.Describe()))
	}
	return lines
}

func renderHandEnd(e game.HandEndEvent) []string {
	res := e.Result
	lines := []string{
		"",
		fmt.Sprintf("=== Hand %s complete ===", res.HandID),
		fmt.Sprintf("Pot: $%d", res.PotTotal),
	}
	for _, w := range res.Winners {
		if res.Showdown {
			lines = append(lines, fmt.Sprintf("Winner: %s ($%d) - %s", w.Name, w.Amount, w.Rank.Describe()))
		} else {
			lines = append(lines, fmt.Sprintf("Winner: %s ($%d)", w.Name, w.Amount))
		}
	}
	return lines
}

// RenderSessionEnd formats the final standings.
func RenderSessionEnd(res *game.SessionResult) []string {
	lines := []string{
		"",
		fmt.Sprintf("=== Session over • %d hands ===", res.Hands),
	}
	for i, s := range res.Standings {
		if s.Chips > 0 {
			lines = append(lines, fmt.Sprintf("%d. %s  $%d", i+1, s.Name, s.Chips))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s  busted on hand %d", i+1, s.Name, s.BustedHand))
		}
	}
	return append(lines, "", "Press q to exit.")
}

func potTotal(pots []game.Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
