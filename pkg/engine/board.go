package engine

import (
	"errors"
	"fmt"

	"github.com/yourusername/bgrules/internal/positionid"
)

// ErrTooManyCheckers is returned by Board.Check when a side has more than
// NumCheckers checkers on the board and bar.
var ErrTooManyCheckers = errors.New("engine: more than 15 checkers for one side")

// Point is one of the 24 board points. A point either is empty or holds
// 1..15 checkers of a single owner; the zero value is an empty point.
type Point struct {
	count uint8
	owner Color
}

// MakePoint returns a point holding n checkers of owner. n == 0 yields the
// empty point regardless of owner.
func MakePoint(owner Color, n int) Point {
	if n <= 0 {
		return Point{}
	}
	if !owner.Valid() || n > NumCheckers {
		panic(fmt.Sprintf("engine: invalid point %d checkers of %v", n, owner))
	}
	return Point{count: uint8(n), owner: owner}
}

func (p Point) Count() int { return int(p.count) }

func (p Point) Owner() Color { return p.owner }

func (p Point) Empty() bool { return p.count == 0 }

// Owns reports whether the point holds at least one of c's checkers.
func (p Point) Owns(c Color) bool { return p.count > 0 && p.owner == c }

// BlockedFor reports whether c's checkers may not land here: two or more
// enemy checkers make a point.
func (p Point) BlockedFor(c Color) bool {
	return p.count >= 2 && p.owner != c
}

// OpenFor reports whether c may land here: empty, own, or an enemy blot.
func (p Point) OpenFor(c Color) bool { return !p.BlockedFor(c) }

// HitFor reports whether c landing here hits an enemy blot.
func (p Point) HitFor(c Color) bool {
	return p.count == 1 && p.owner != c
}

// Board holds the 24 points, indexed by absolute point (White's frame),
// and the bar counts of both sides. Checkers that are borne off are not
// stored; they are whatever remains of NumCheckers.
type Board struct {
	points [24]Point
	bar    [2]uint8
}

// Point returns absolute point abs (1..24). Any other slot reads as empty.
func (b Board) Point(abs int) Point {
	if !isPoint(abs) {
		return Point{}
	}
	return b.points[abs-1]
}

// RelPoint returns the point rel (1..24) as seen by c.
func (b Board) RelPoint(c Color, rel int) Point {
	return b.Point(ToAbsolute(c, rel))
}

// SetPoint replaces absolute point abs. It is meant for board setup.
func (b *Board) SetPoint(abs int, owner Color, n int) {
	if !isPoint(abs) {
		panic(fmt.Sprintf("engine: no point %d", abs))
	}
	b.points[abs-1] = MakePoint(owner, n)
}

// Bar returns the number of c's checkers on the bar.
func (b Board) Bar(c Color) int { return int(b.bar[c.index()]) }

// SetBar replaces c's bar count.
func (b *Board) SetBar(c Color, n int) {
	if n < 0 || n > NumCheckers {
		panic(fmt.Sprintf("engine: invalid bar count %d", n))
	}
	b.bar[c.index()] = uint8(n)
}

// OnBoard counts c's checkers on points and bar.
func (b Board) OnBoard(c Color) int {
	n := b.Bar(c)
	for _, p := range b.points {
		if p.owner == c {
			n += int(p.count)
		}
	}
	return n
}

// Off returns the number of c's checkers borne off.
func (b Board) Off(c Color) int { return NumCheckers - b.OnBoard(c) }

// Checkers returns how many of c's checkers sit on the absolute slot,
// which may be a point, c's bar, or c's off tray.
func (b Board) Checkers(c Color, slot int) int {
	switch {
	case isPoint(slot):
		if p := b.Point(slot); p.owner == c {
			return int(p.count)
		}
		return 0
	case slot == BarSlot(c):
		return b.Bar(c)
	case slot == OffSlot(c):
		return b.Off(c)
	}
	return 0
}

// Check verifies checker conservation for both sides.
func (b Board) Check() error {
	for _, c := range []Color{Black, White} {
		if n := b.OnBoard(c); n > NumCheckers {
			return fmt.Errorf("%w: %v has %d", ErrTooManyCheckers, c, n)
		}
	}
	return nil
}

// PipCount returns the total pips c needs to bear off all checkers.
func (b Board) PipCount(c Color) int {
	pips := b.Bar(c) * relBar
	for rel := 1; rel <= 24; rel++ {
		if p := b.RelPoint(c, rel); p.owner == c {
			pips += rel * int(p.count)
		}
	}
	return pips
}

// tanBoard converts to the gnubg per-side layout with onRoll at index 1.
func (b Board) tanBoard(onRoll Color) positionid.Board {
	var tb positionid.Board
	for side, c := range [2]Color{onRoll.Opponent(), onRoll} {
		for rel := 1; rel <= 24; rel++ {
			if p := b.RelPoint(c, rel); p.owner == c {
				tb[side][rel-1] = p.count
			}
		}
		tb[side][24] = uint8(b.Bar(c))
	}
	return tb
}

func boardFromTan(tb positionid.Board, onRoll Color) Board {
	var b Board
	for side, c := range [2]Color{onRoll.Opponent(), onRoll} {
		for rel := 1; rel <= 24; rel++ {
			if n := int(tb[side][rel-1]); n > 0 {
				b.points[ToAbsolute(c, rel)-1] = MakePoint(c, n)
			}
		}
		b.bar[c.index()] = tb[side][24]
	}
	return b
}

// Key returns a compact key of the board as seen by onRoll; equal boards
// have equal keys.
func (b Board) Key(onRoll Color) positionid.Key {
	return positionid.MakeKey(b.tanBoard(onRoll))
}

// GnubgID returns the GNU Backgammon position ID with onRoll as the side
// to move.
func (b Board) GnubgID(onRoll Color) string {
	return positionid.PositionID(b.tanBoard(onRoll))
}

// BoardFromGnubgID decodes a GNU Backgammon position ID for side onRoll.
func BoardFromGnubgID(id string, onRoll Color) (Board, error) {
	if !onRoll.Valid() {
		return Board{}, fmt.Errorf("engine: gnubg id needs a side on roll")
	}
	tb, err := positionid.BoardFromPositionID(id)
	if err != nil {
		return Board{}, err
	}
	b := boardFromTan(tb, onRoll)
	// A point claimed by both sides decodes to whichever side was written
	// last; CheckPosition rejects those upstream.
	return b, b.Check()
}
