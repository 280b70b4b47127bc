package engine

import "fmt"

// ApplyMove moves count checkers of owner between absolute slots and
// returns the new board; b is not modified. Landing on a single enemy
// checker hits it onto its bar, reported by hit.
//
// The move must already be valid. Landing on a point held by two or more
// enemy checkers, or moving checkers that are not there, panics.
func ApplyMove(b Board, from, to, count int, owner Color) (next Board, hit bool) {
	next = b
	next.remove(owner, from, count)
	hit = next.place(owner, to, count)
	return next, hit
}

func (b *Board) remove(c Color, slot, n int) {
	switch {
	case isPoint(slot):
		p := b.points[slot-1]
		if p.owner != c || p.Count() < n {
			panic(fmt.Sprintf("engine: moving %d %v checkers from point %d holding %d %v", n, c, slot, p.Count(), p.owner))
		}
		b.points[slot-1] = MakePoint(c, p.Count()-n)
	case slot == BarSlot(c):
		if b.Bar(c) < n {
			panic(fmt.Sprintf("engine: moving %d %v checkers from a bar holding %d", n, c, b.Bar(c)))
		}
		b.bar[c.index()] -= uint8(n)
	case slot == OffSlot(c):
		if b.Off(c) < n {
			panic(fmt.Sprintf("engine: moving %d %v checkers from a tray holding %d", n, c, b.Off(c)))
		}
		// Borne-off checkers are implicit.
	default:
		panic(fmt.Sprintf("engine: %v cannot move from slot %d", c, slot))
	}
}

func (b *Board) place(c Color, slot, n int) (hit bool) {
	switch {
	case isPoint(slot):
		p := b.points[slot-1]
		switch {
		case p.BlockedFor(c):
			panic(fmt.Sprintf("engine: %v landing on point %d held by %d %v", c, slot, p.Count(), p.owner))
		case p.HitFor(c):
			b.bar[p.owner.index()]++
			b.points[slot-1] = MakePoint(c, n)
			return true
		}
		b.points[slot-1] = MakePoint(c, p.Count()+n)
	case slot == BarSlot(c):
		b.bar[c.index()] += uint8(n)
	case slot == OffSlot(c):
	default:
		panic(fmt.Sprintf("engine: %v cannot move to slot %d", c, slot))
	}
	return false
}

// ApplyMoves plays single checker moves of owner in order and returns the
// board with the moves' Hit flags filled in.
func ApplyMoves(b Board, owner Color, moves []Move) (Board, []Move) {
	out := make([]Move, len(moves))
	for i, m := range moves {
		b, m.Hit = ApplyMove(b, m.From, m.To, 1, owner)
		out[i] = m
	}
	return b, out
}
