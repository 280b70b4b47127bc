package engine

import "fmt"

// Color identifies a side. The values match the XGID fields for the
// player and cube owner: -1 is Black, 1 is White.
type Color int8

const (
	Black Color = -1
	None  Color = 0
	White Color = 1
)

// Open is the turn marker before the opening roll has decided who starts.
const Open = None

// Centered is the cube owner when neither side holds the cube.
const Centered = None

// NumCheckers is the number of checkers each side plays with.
const NumCheckers = 15

// Special slots of the absolute frame, next to points 1..24.
const (
	BlackBar = 0
	WhiteBar = 25
	BlackOff = -1
	WhiteOff = -2
)

// Slots of the relative frame. The mover always enters from 25 and bears
// off to 0.
const (
	relBar = 25
	relOff = 0
)

// Opponent returns the other side. The opponent of None is None.
func (c Color) Opponent() Color { return -c }

// Valid reports whether c is Black or White.
func (c Color) Valid() bool { return c == Black || c == White }

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "none"
	}
}

// ParseColor accepts "black"/"white" and the XGID digits -1/1.
func ParseColor(s string) (Color, error) {
	switch s {
	case "black", "b", "-1":
		return Black, nil
	case "white", "w", "1":
		return White, nil
	case "none", "open", "0", "":
		return None, nil
	}
	return None, fmt.Errorf("unknown color %q", s)
}

func (c Color) index() int {
	if c == Black {
		return 0
	}
	return 1
}

// BarSlot returns the absolute slot holding c's hit checkers.
func BarSlot(c Color) int {
	if c == Black {
		return BlackBar
	}
	return WhiteBar
}

// OffSlot returns the absolute slot of c's off tray.
func OffSlot(c Color) int {
	if c == Black {
		return BlackOff
	}
	return WhiteOff
}

// ToRelative converts an absolute slot into the frame of the moving side,
// where the home board is 1..6, the bar is 25 and the off tray is 0.
// This and ToAbsolute are the only places the frames are converted.
func ToRelative(c Color, abs int) int {
	if abs == OffSlot(c) {
		return relOff
	}
	if c == White {
		return abs
	}
	return 25 - abs
}

// ToAbsolute is the inverse of ToRelative.
func ToAbsolute(c Color, rel int) int {
	if rel == relOff {
		return OffSlot(c)
	}
	if c == White {
		return rel
	}
	return 25 - rel
}

func isPoint(slot int) bool { return slot >= 1 && slot <= 24 }
