package engine

import "errors"

// Mode selects how strictly moves are checked.
type Mode int

const (
	// Unrestricted accepts any physically possible move, for setting up
	// boards by hand.
	Unrestricted Mode = iota
	// RuleEnforced applies the full rules of play.
	RuleEnforced
)

func (m Mode) String() string {
	if m == Unrestricted {
		return "unrestricted"
	}
	return "rules"
}

// Reasons a move is rejected.
var (
	ErrBadSlot       = errors.New("no such point")
	ErrNoColor       = errors.New("move has no owner")
	ErrWrongBar      = errors.New("bar belongs to the other side")
	ErrWrongTray     = errors.New("off tray belongs to the other side")
	ErrCheckerCount  = errors.New("invalid number of checkers")
	ErrEmptySource   = errors.New("not enough checkers on the source point")
	ErrBlocked       = errors.New("destination is blocked")
	ErrNotYourTurn   = errors.New("not this side's turn")
	ErrNoDice        = errors.New("no dice to play")
	ErrBarFirst      = errors.New("checkers on the bar must enter first")
	ErrCannotBearOff = errors.New("bearing off is not allowed yet")
	ErrNoSuchDie     = errors.New("move does not match an available die")
)

// Proposal asks to move Count checkers of Owner between absolute slots.
type Proposal struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Count int   `json:"count"`
	Owner Color `json:"owner"`
}

// Validate checks a proposal against pos. ts is the turn in progress, if
// any; without one the dice come from the position. On success it returns
// the die the move consumes (0 in Unrestricted mode).
func Validate(pos Position, ts *TurnState, p Proposal, mode Mode) (int, error) {
	if err := checkSlots(p); err != nil {
		return 0, err
	}
	if p.Count < 1 || p.Count > NumCheckers {
		return 0, ErrCheckerCount
	}
	b := pos.Board
	if b.Checkers(p.Owner, p.From) < p.Count {
		return 0, ErrEmptySource
	}
	if isPoint(p.To) && b.Point(p.To).BlockedFor(p.Owner) {
		return 0, ErrBlocked
	}
	if mode == Unrestricted {
		return 0, nil
	}
	return checkRules(pos, ts, p)
}

// ValidMove reports whether Validate accepts the proposal.
func ValidMove(pos Position, ts *TurnState, p Proposal, mode Mode) bool {
	_, err := Validate(pos, ts, p, mode)
	return err == nil
}

// checkSlots holds in every mode: each bar and tray takes only its own
// side's checkers.
func checkSlots(p Proposal) error {
	if !p.Owner.Valid() {
		return ErrNoColor
	}
	for _, s := range [2]int{p.From, p.To} {
		if s < WhiteOff || s > WhiteBar {
			return ErrBadSlot
		}
	}
	if p.From == p.To {
		return ErrBadSlot
	}
	switch {
	case p.To == BlackBar && p.Owner != Black, p.To == WhiteBar && p.Owner != White:
		return ErrWrongBar
	case p.To == BlackOff && p.Owner != Black, p.To == WhiteOff && p.Owner != White:
		return ErrWrongTray
	}
	return nil
}

func checkRules(pos Position, ts *TurnState, p Proposal) (int, error) {
	c := p.Owner
	if pos.Turn.Player == Open || pos.Turn.Player != c {
		return 0, ErrNotYourTurn
	}

	var avail []int
	doubles := false
	switch {
	case ts != nil && ts.Player == c:
		avail = ts.Available()
		doubles = ts.Doubles()
	case pos.Turn.Rolled():
		avail = ExpandDice(int(pos.Turn.Dice[0]), int(pos.Turn.Dice[1]))
		doubles = pos.Turn.Doubles()
	}
	if len(avail) == 0 {
		return 0, ErrNoDice
	}
	if p.Count > 1 && (!doubles || p.Count > len(avail)) {
		return 0, ErrCheckerCount
	}

	b := pos.Board
	from, to := ToRelative(c, p.From), ToRelative(c, p.To)
	if b.Bar(c) > 0 && from != relBar {
		return 0, ErrBarFirst
	}

	if to == relOff {
		if !CanBearOff(b, c) || from < 1 || from > 6 {
			return 0, ErrCannotBearOff
		}
		d, ok := bearOffDie(from, avail, HighestOccupiedPoint(b, c))
		if !ok {
			return 0, ErrNoSuchDie
		}
		return d, nil
	}

	d, ok := MoveDistance(from, to)
	if !ok || !containsDie(avail, d) {
		return 0, ErrNoSuchDie
	}
	return d, nil
}
