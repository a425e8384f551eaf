package phh

// Hand is a single no-limit hold'em hand in the poker hand history
// (PHH) interchange format, ready for TOML encoding. Seat indices in
// the format are 1-based and blinds are listed per seat.
type Hand struct {
	Variant           string   `toml:"variant"`
	SeatCount         int      `toml:"seat_count"`
	Seats             []int    `toml:"seats"`
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks"`
	Winnings          []int    `toml:"winnings"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players"`
	HandID            string   `toml:"hand"`
	Time              string   `toml:"time"`
	TimeZone          string   `toml:"time_zone"`
	Day               int      `toml:"day"`
	Month             int      `toml:"month"`
	Year              int      `toml:"year"`
}
