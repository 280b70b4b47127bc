package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// BoardFieldLength is the length of the board field of a position string:
// Black's bar, points 1..24, White's bar.
const BoardFieldLength = 26

const xgidPrefix = "XGID="

// requiredFields is the board plus cube value, cube owner, player, dice.
const requiredFields = 5

var (
	ErrBadLength = errors.New("xgid: board field must be 26 characters")
	ErrBadChar   = errors.New("xgid: invalid board character")
	ErrBadField  = errors.New("xgid: malformed field")
)

// DecodeError describes why a position string was rejected. It wraps one
// of ErrBadLength, ErrBadChar or ErrBadField.
type DecodeError struct {
	Err    error
	Field  string // name of the offending field
	Offset int    // character offset within the board field, or -1
	Value  string
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%v: %q at offset %d", e.Err, e.Value, e.Offset)
	}
	return fmt.Sprintf("%v: %s %q", e.Err, e.Field, e.Value)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses a position string, with or without the "XGID=" prefix.
//
// The board field must be exactly 26 valid characters and all five
// required fields must be present. Unparseable values in the cube, player
// and dice fields read as unset rather than failing.
func Decode(s string) (Position, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), xgidPrefix)
	fields := strings.Split(s, ":")

	board, err := decodeBoard(fields[0])
	if err != nil {
		return Position{}, err
	}
	if len(fields) < requiredFields {
		return Position{}, &DecodeError{Err: ErrBadField, Field: "fields", Offset: -1, Value: s}
	}

	pos := Position{Board: board}
	if v, err := strconv.Atoi(fields[1]); err == nil && v >= 0 && v <= MaxCubeValue {
		pos.Cube.Value = uint8(v)
	}
	pos.Cube.Owner = parseSide(fields[2])
	pos.Turn.Player = parseSide(fields[3])
	pos.Turn.Dice = parseDice(fields[4])

	if len(fields) > requiredFields {
		pos.Match = append([]string(nil), fields[requiredFields:]...)
	} else {
		pos.Match = append([]string(nil), DefaultMatchFields...)
	}
	return pos, nil
}

func decodeBoard(f string) (Board, error) {
	var b Board
	if len(f) != BoardFieldLength {
		return b, &DecodeError{Err: ErrBadLength, Field: "board", Offset: -1, Value: f}
	}
	for i := 0; i < BoardFieldLength; i++ {
		c, n, ok := decodeChar(f[i])
		if ok && n > 0 && i == 0 {
			ok = c == Black
		}
		if ok && n > 0 && i == BoardFieldLength-1 {
			ok = c == White
		}
		if !ok {
			return Board{}, &DecodeError{Err: ErrBadChar, Field: "board", Offset: i, Value: string(f[i])}
		}
		switch i {
		case 0:
			b.SetBar(Black, n)
		case BoardFieldLength - 1:
			b.SetBar(White, n)
		default:
			b.SetPoint(i, c, n)
		}
	}
	if err := b.Check(); err != nil {
		return Board{}, &DecodeError{Err: fmt.Errorf("%w: %w", ErrBadField, err), Field: "board", Offset: -1, Value: f}
	}
	return b, nil
}

func decodeChar(ch byte) (Color, int, bool) {
	switch {
	case ch == '-':
		return None, 0, true
	case ch >= 'a' && ch <= 'o':
		return Black, int(ch-'a') + 1, true
	case ch >= 'A' && ch <= 'O':
		return White, int(ch-'A') + 1, true
	}
	return None, 0, false
}

func encodeChar(p Point) byte {
	switch {
	case p.Empty():
		return '-'
	case p.Owner() == Black:
		return 'a' + byte(p.Count()-1)
	default:
		return 'A' + byte(p.Count()-1)
	}
}

func parseSide(f string) Color {
	switch f {
	case "-1":
		return Black
	case "1":
		return White
	}
	return None
}

func parseDice(f string) [2]uint8 {
	if len(f) != 2 {
		return [2]uint8{}
	}
	var d [2]uint8
	for i := 0; i < 2; i++ {
		if f[i] < '0' || f[i] > '6' {
			return [2]uint8{}
		}
		d[i] = f[i] - '0'
	}
	if d[0] == 0 || d[1] == 0 {
		return [2]uint8{}
	}
	return d
}

// EncodeBoard returns the 26-character board field.
func EncodeBoard(b Board) string {
	out := make([]byte, BoardFieldLength)
	out[0] = encodeChar(MakePoint(Black, b.Bar(Black)))
	for abs := 1; abs <= 24; abs++ {
		out[abs] = encodeChar(b.Point(abs))
	}
	out[BoardFieldLength-1] = encodeChar(MakePoint(White, b.Bar(White)))
	return string(out)
}

// Encode returns the position string without prefix. Match fields are
// written as stored; a position without any gets the defaults.
func Encode(p Position) string {
	var sb strings.Builder
	sb.WriteString(EncodeBoard(p.Board))
	fmt.Fprintf(&sb, ":%d:%d:%d:%d%d", p.Cube.Value, p.Cube.Owner, p.Turn.Player, p.Turn.Dice[0], p.Turn.Dice[1])
	match := p.Match
	if match == nil {
		match = DefaultMatchFields
	}
	for _, f := range match {
		sb.WriteByte(':')
		sb.WriteString(f)
	}
	return sb.String()
}

// String returns the encoded position.
func (p Position) String() string { return Encode(p) }

// XGID returns the encoded position with the "XGID=" prefix.
func (p Position) XGID() string { return xgidPrefix + Encode(p) }

// GnubgID returns the GNU Backgammon position ID with the side to move on
// roll. Before the opening roll White is taken to be on roll.
func (p Position) GnubgID() string {
	onRoll := p.Turn.Player
	if onRoll == Open {
		onRoll = White
	}
	return p.Board.GnubgID(onRoll)
}
