// Package engine implements backgammon positions and rules: the XGID
// position codec, legal move generation, move validation and application,
// the per-turn dice state machine, and move notation.
//
// Coordinates are absolute unless stated otherwise: points 1..24 are
// numbered from White's side, White's home board is 1..6 and Black's is
// 19..24. The bars and off trays have their own slots (BlackBar, WhiteBar,
// BlackOff, WhiteOff). Rule checks work in the mover's relative frame,
// obtained with ToRelative.
package engine

// Cube is the doubling cube. Value is the exponent: the cube shows
// 2^Value, except that exponent 0 shows 64.
type Cube struct {
	Value uint8 `json:"value"`
	Owner Color `json:"owner"`
}

// MaxCubeValue is the largest exponent the position string can carry.
const MaxCubeValue = 6

// Face returns the number printed on the cube face.
func (c Cube) Face() int {
	if c.Value == 0 {
		return 64
	}
	return 1 << c.Value
}

// TurnMarker records whose turn it is and the dice rolled, if any.
type TurnMarker struct {
	Player Color    `json:"player"`
	Dice   [2]uint8 `json:"dice"`
}

// Rolled reports whether dice have been rolled for the turn.
func (t TurnMarker) Rolled() bool { return t.Dice[0] != 0 && t.Dice[1] != 0 }

// Doubles reports whether the rolled dice are equal.
func (t TurnMarker) Doubles() bool { return t.Rolled() && t.Dice[0] == t.Dice[1] }

// Position is a board plus cube and turn. Match holds the trailing
// match-play fields of the position string; they are carried verbatim.
// Positions are values: every operation returns a new one with its own
// copy of Match. Copying a Position by assignment shares Match; use Clone
// before editing the fields in place.
type Position struct {
	Board Board
	Cube  Cube
	Turn  TurnMarker
	Match []string
}

// DefaultMatchFields are used when a position string has no match fields.
var DefaultMatchFields = []string{"0", "0", "0", "0", "10"}

// StartingBoard returns the standard opening setup.
func StartingBoard() Board {
	var b Board
	for _, c := range []Color{White, Black} {
		b.SetPoint(ToAbsolute(c, 24), c, 2)
		b.SetPoint(ToAbsolute(c, 13), c, 5)
		b.SetPoint(ToAbsolute(c, 8), c, 3)
		b.SetPoint(ToAbsolute(c, 6), c, 5)
	}
	return b
}

// StartingPosition returns the opening position before the opening roll.
func StartingPosition() Position {
	return Position{
		Board: StartingBoard(),
		Cube:  Cube{Value: 0, Owner: Centered},
		Turn:  TurnMarker{Player: Open},
		Match: append([]string(nil), DefaultMatchFields...),
	}
}

// Winner returns the side that has borne off all its checkers, or None.
func Winner(b Board) Color {
	for _, c := range []Color{White, Black} {
		if b.OnBoard(c) == 0 {
			return c
		}
	}
	return None
}

// Clone returns a copy of p that shares no memory with it.
func (p Position) Clone() Position {
	if p.Match != nil {
		p.Match = append([]string(nil), p.Match...)
	}
	return p
}

// handOff ends the current turn: the other side is to move and no dice
// are rolled.
func (p Position) handOff() Position {
	p = p.Clone()
	p.Turn = TurnMarker{Player: p.Turn.Player.Opponent()}
	return p
}
