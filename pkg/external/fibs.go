package external

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/bgrules/pkg/engine"
)

// ErrFIBSBoard is wrapped by every FIBS board parse failure.
var ErrFIBSBoard = errors.New("invalid FIBS board")

// fibsMinFields is names, match length, scores, 26 board slots and turn.
const fibsMinFields = 32

// FIBSBoard represents a parsed FIBS board string.
// See: http://www.fibs.com/fibs_interface.html#board_state
type FIBSBoard struct {
	Player1      string  // Your name
	Player2      string  // Opponent's name
	MatchLength  int     // Match length (0 = unlimited)
	Score1       int     // Your score
	Score2       int     // Opponent's score
	Board        [26]int // Checkers per slot, signed by color
	Turn         int     // Color of the side to move, 0 when the game is over
	Dice         [2]int  // Your dice (0,0 if not rolled)
	OppDice      [2]int  // Opponent's dice
	Cube         int     // Cube value
	CanDouble    bool    // Can you double?
	OppCanDouble bool    // Can opponent double?
	Doubled      bool    // Has opponent doubled?
	Color        int     // Your color (1 or -1)
	Direction    int     // Your direction (1 or -1)
}

// ParseFIBSBoard parses a FIBS board string.
// Format: board:player1:player2:matchlen:score1:score2:board[26]:turn:dice[4]:cube:...
// Optional trailing fields may be missing; numbers that do not parse read
// as zero.
func ParseFIBSBoard(s string) (*FIBSBoard, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "board:")

	parts := strings.Split(s, ":")
	if len(parts) < fibsMinFields {
		return nil, fmt.Errorf("%w: expected at least %d fields, got %d", ErrFIBSBoard, fibsMinFields, len(parts))
	}

	fb := &FIBSBoard{Color: 1, Direction: -1}
	num := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		v, _ := strconv.Atoi(parts[i])
		return v
	}
	flag := func(i int) bool { return i < len(parts) && parts[i] == "1" }

	fb.Player1 = parts[0]
	fb.Player2 = parts[1]
	fb.MatchLength = num(2)
	fb.Score1 = num(3)
	fb.Score2 = num(4)
	for i := 0; i < 26; i++ {
		fb.Board[i] = num(5 + i)
	}
	fb.Turn = num(31)
	fb.Dice = [2]int{num(32), num(33)}
	fb.OppDice = [2]int{num(34), num(35)}
	fb.Cube = num(36)
	fb.CanDouble = flag(37)
	fb.OppCanDouble = flag(38)
	fb.Doubled = flag(39)
	if c := num(40); c == 1 || c == -1 {
		fb.Color = c
	}
	if d := num(41); d == 1 || d == -1 {
		fb.Direction = d
	}
	return fb, nil
}

// You returns the engine color of the FIBS player "You". The side moving
// from 24 down to 1 is White, so FIBS point numbers are absolute points.
func (fb *FIBSBoard) You() engine.Color {
	if fb.Direction == 1 {
		return engine.Black
	}
	return engine.White
}

// ToPosition converts the board into an engine position. The bar counts
// come from slots 25 (White) and 0 (Black).
func (fb *FIBSBoard) ToPosition() (engine.Position, error) {
	you := fb.You()
	side := func(v int) engine.Color {
		if (v > 0) == (fb.Color > 0) {
			return you
		}
		return you.Opponent()
	}

	var b engine.Board
	for p := 1; p <= 24; p++ {
		v := fb.Board[p]
		if v == 0 {
			continue
		}
		n := abs(v)
		if n > engine.NumCheckers {
			return engine.Position{}, fmt.Errorf("%w: %d checkers on point %d", ErrFIBSBoard, n, p)
		}
		b.SetPoint(p, side(v), n)
	}
	for _, bar := range [2]struct {
		slot int
		c    engine.Color
	}{{engine.WhiteBar, engine.White}, {engine.BlackBar, engine.Black}} {
		n := abs(fb.Board[bar.slot])
		if n > engine.NumCheckers {
			return engine.Position{}, fmt.Errorf("%w: %d checkers on the bar", ErrFIBSBoard, n)
		}
		b.SetBar(bar.c, n)
	}
	if err := b.Check(); err != nil {
		return engine.Position{}, fmt.Errorf("%w: %w", ErrFIBSBoard, err)
	}

	pos := engine.Position{Board: b}
	switch {
	case fb.Turn == 0:
		pos.Turn.Player = engine.Open
	case (fb.Turn > 0) == (fb.Color > 0):
		pos.Turn.Player = you
		pos.Turn.Dice = fibsDice(fb.Dice)
	default:
		pos.Turn.Player = you.Opponent()
		pos.Turn.Dice = fibsDice(fb.OppDice)
	}

	pos.Cube.Value = cubeExponent(fb.Cube)
	switch {
	case fb.CanDouble && fb.OppCanDouble:
		pos.Cube.Owner = engine.Centered
	case fb.CanDouble:
		pos.Cube.Owner = you
	case fb.OppCanDouble:
		pos.Cube.Owner = you.Opponent()
	}

	white, black := fb.Score1, fb.Score2
	if you == engine.Black {
		white, black = black, white
	}
	pos.Match = []string{
		strconv.Itoa(white), strconv.Itoa(black), "0",
		strconv.Itoa(fb.MatchLength), engine.DefaultMatchFields[4],
	}
	return pos, nil
}

func fibsDice(d [2]int) [2]uint8 {
	if d[0] < 1 || d[0] > 6 || d[1] < 1 || d[1] > 6 {
		return [2]uint8{}
	}
	return [2]uint8{uint8(d[0]), uint8(d[1])}
}

// cubeExponent maps a cube face to the position string exponent. FIBS
// reports 1 for an unturned cube.
func cubeExponent(face int) uint8 {
	var e uint8
	for face > 1 && e < engine.MaxCubeValue {
		face >>= 1
		e++
	}
	return e
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FormatMoves writes moves in FIBS "move" syntax, e.g. "8-5 6-5" or
// "bar-22 5-off". Points are FIBS (absolute) numbers.
func FormatMoves(moves []engine.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = formatFIBSPoint(m.From) + "-" + formatFIBSPoint(m.To)
	}
	return strings.Join(parts, " ")
}

// formatFIBSPoint formats a point for FIBS output.
func formatFIBSPoint(slot int) string {
	switch slot {
	case engine.WhiteBar, engine.BlackBar:
		return "bar"
	case engine.WhiteOff, engine.BlackOff:
		return "off"
	}
	return strconv.Itoa(slot)
}
