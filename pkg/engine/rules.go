package engine

// AvailableDice returns the dice not yet used. Each used value removes one
// occurrence, so doubles keep their remaining uses.
func AvailableDice(all, used []int) []int {
	left := make([]int, 0, len(all))
	left = append(left, all...)
	for _, u := range used {
		for i, d := range left {
			if d == u {
				left = append(left[:i], left[i+1:]...)
				break
			}
		}
	}
	return left
}

// ExpandDice returns the dice uses of a roll: two entries, or four for
// doubles.
func ExpandDice(d1, d2 int) []int {
	if d1 == d2 {
		return []int{d1, d1, d1, d1}
	}
	return []int{d1, d2}
}

// CanBearOff reports whether owner has no checker on the bar and every
// checker in the home board.
func CanBearOff(b Board, owner Color) bool {
	if b.Bar(owner) > 0 {
		return false
	}
	for rel := 7; rel <= 24; rel++ {
		if b.RelPoint(owner, rel).Owns(owner) {
			return false
		}
	}
	return true
}

// HighestOccupiedPoint returns the highest relative home point (1..6)
// holding one of owner's checkers, or 0 when the home board is empty.
func HighestOccupiedPoint(b Board, owner Color) int {
	for rel := 6; rel >= 1; rel-- {
		if b.RelPoint(owner, rel).Owns(owner) {
			return rel
		}
	}
	return 0
}

// CanEnterFromBar reports whether the side of ts must enter from the bar
// and at least one available die lands on an open entry point.
func CanEnterFromBar(b Board, ts *TurnState) bool {
	if ts == nil || !ts.MustEnterFromBar {
		return false
	}
	for _, d := range ts.Available() {
		if b.RelPoint(ts.Player, relBar-d).OpenFor(ts.Player) {
			return true
		}
	}
	return false
}

// MoveDistance returns the pips between two relative slots: entering from
// the bar (25) onto 19..24, bearing off from 1..6 to 0, or moving forward
// between points. ok is false for any other pair.
func MoveDistance(from, to int) (dist int, ok bool) {
	switch {
	case from == relBar:
		if to >= 19 && to <= 24 {
			return relBar - to, true
		}
	case to == relOff:
		if from >= 1 && from <= 6 {
			return from, true
		}
	case isPoint(from) && isPoint(to) && from > to:
		return from - to, true
	}
	return 0, false
}

// smallestAbove returns the smallest die greater than point, or 0.
func smallestAbove(dice []int, point int) int {
	m := 0
	for _, d := range dice {
		if d > point && (m == 0 || d < m) {
			m = d
		}
	}
	return m
}

// bearsOff reports whether die d may bear a checker off relative point p.
// An exact die always does. A larger die only clears the highest occupied
// point, and only the smallest available die above it may be used for
// that.
func bearsOff(p, d int, avail []int, highest int) bool {
	if d == p {
		return true
	}
	return p == highest && d > p && d == smallestAbove(avail, highest)
}

// bearOffDie picks the die a bear-off from p consumes, preferring the
// exact die.
func bearOffDie(p int, avail []int, highest int) (int, bool) {
	for _, d := range avail {
		if d == p {
			return d, true
		}
	}
	if d := smallestAbove(avail, highest); d != 0 && bearsOff(p, d, avail, highest) {
		return d, true
	}
	return 0, false
}

func containsDie(dice []int, d int) bool {
	for _, x := range dice {
		if x == d {
			return true
		}
	}
	return false
}

// distinctDice returns the dice values in first-seen order, once each.
func distinctDice(dice []int) []int {
	out := make([]int, 0, len(dice))
	for _, d := range dice {
		if !containsDie(out, d) {
			out = append(out, d)
		}
	}
	return out
}
