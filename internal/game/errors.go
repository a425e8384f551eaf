package game

import "fmt"

// IllegalActionError reports a decision the rules reject: acting out of
// turn, checking a live bet, raising below the minimum, and so on. The
// hand state is unchanged and the player may be asked again.
type IllegalActionError struct {
	Seat   int
	Action Action
	Amount int
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("game: seat %d cannot %s %d: %s", e.Seat, e.Action, e.Amount, e.Reason)
}

func illegal(seat int, action Action, amount int, format string, args ...any) *IllegalActionError {
	return &IllegalActionError{
		Seat:   seat,
		Action: action,
		Amount: amount,
		Reason: fmt.Sprintf(format, args...),
	}
}

// InsufficientStackError reports a raise that would cost more chips
// than the player holds. It unwraps to an IllegalActionError so callers
// matching the broader class with errors.As still catch it.
type InsufficientStackError struct {
	Seat     int
	Required int
	Stack    int
}

func (e *InsufficientStackError) Error() string {
	return fmt.Sprintf("game: seat %d has %d chips, needs %d", e.Seat, e.Stack, e.Required)
}

func (e *InsufficientStackError) Unwrap() error {
	return illegal(e.Seat, Raise, e.Required, "insufficient chips: have %d, need %d", e.Stack, e.Required)
}

// PotConservationError reports a chip accounting failure: the sum of
// stacks, live bets and pots no longer matches the chips the hand
// started with. It is fatal; the hand state cannot be trusted.
type PotConservationError struct {
	HandID   string
	Expected int
	Actual   int
}

func (e *PotConservationError) Error() string {
	return fmt.Sprintf("game: hand %s chip total %d, expected %d", e.HandID, e.Actual, e.Expected)
}
