package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startXGID = "-b----E-C---eE---c-e----B-:0:0:0:00:0:0:0:0:10"

func TestDecodeStartingPosition(t *testing.T) {
	pos, err := Decode(startXGID)
	require.NoError(t, err)
	assert.Equal(t, StartingBoard(), pos.Board)
	assert.Equal(t, Open, pos.Turn.Player)
	assert.False(t, pos.Turn.Rolled())
	assert.Equal(t, Centered, pos.Cube.Owner)
	assert.Equal(t, 64, pos.Cube.Face())
	assert.Equal(t, startXGID, Encode(pos))
	assert.Equal(t, startXGID, StartingPosition().String())
	assert.Equal(t, "XGID="+startXGID, StartingPosition().XGID())
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		startXGID,
		"-b----E-C---eE---c-e----B-:1:1:1:52:0:0:3:0:10",
		"a-B---C-C---dE---c-e---AA-:2:-1:-1:66:1:2:0:7:11",
		"---------------------oO---:0:0:1:31",
		"-------------------------A:6:1:1:00:x:y:z",
		"-AAA----------------aaa--A:3:0:-1:42:0:0:0:0:0:extra",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			pos, err := Decode(s)
			require.NoError(t, err)
			got := Encode(pos)
			assert.Equal(t, s[:BoardFieldLength], got[:BoardFieldLength])
			if strings.Count(s, ":") > 4 {
				assert.Equal(t, s, got)
			} else {
				assert.Equal(t, s+":0:0:0:0:10", got)
			}
		})
	}
}

func TestDecodeFields(t *testing.T) {
	pos, err := Decode("XGID=-b----E-C---eE---c-e----B-:2:-1:1:52:0:0:3:0:10")
	require.NoError(t, err)
	assert.Equal(t, Cube{Value: 2, Owner: Black}, pos.Cube)
	assert.Equal(t, 4, pos.Cube.Face())
	assert.Equal(t, TurnMarker{Player: White, Dice: [2]uint8{5, 2}}, pos.Turn)
	assert.Equal(t, []string{"0", "0", "3", "0", "10"}, pos.Match)

	pos, err = Decode("a-B---C-C---dE---c-e---AA-:0:0:-1:00")
	require.NoError(t, err)
	assert.Equal(t, 1, pos.Board.Bar(Black))
	assert.Equal(t, White, pos.Board.Point(2).Owner())
	assert.Equal(t, 1, pos.Board.Point(23).Count())
}

func TestDecodeDegradesOptionalFields(t *testing.T) {
	pos, err := Decode("-b----E-C---eE---c-e----B-:9:7:x:7a")
	require.NoError(t, err)
	assert.Equal(t, Cube{}, pos.Cube)
	assert.Equal(t, Open, pos.Turn.Player)
	assert.Equal(t, [2]uint8{}, pos.Turn.Dice)

	pos, err = Decode("-b----E-C---eE---c-e----B-:0:0:1:60")
	require.NoError(t, err)
	assert.False(t, pos.Turn.Rolled())
}

func TestDecodeErrors(t *testing.T) {
	tooMany := "-oo" + strings.Repeat("-", 23)
	tests := []struct {
		name   string
		in     string
		want   error
		offset int
	}{
		{"empty", "", ErrBadLength, -1},
		{"short board", "-b----E-C---eE---c-e----B:0:0:0:00", ErrBadLength, -1},
		{"long board", "-b----E-C---eE---c-e----B--:0:0:0:00", ErrBadLength, -1},
		{"bad char", "-b----E-C---eE-x-c-e----B-:0:0:0:00", ErrBadChar, 15},
		{"too many per point", "-b----E-C---eE---c-e----Z-:0:0:0:00", ErrBadChar, 24},
		{"white on black bar", "Ab----E-C---eE---c-e----B-:0:0:0:00", ErrBadChar, 0},
		{"black on white bar", "-b----E-C---eE---c-e----Ba:0:0:0:00", ErrBadChar, 25},
		{"missing fields", "-b----E-C---eE---c-e----B-:0:0:0", ErrBadField, -1},
		{"too many checkers", tooMany + ":0:0:0:00", ErrBadField, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			require.ErrorIs(t, err, tt.want)
			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.offset, de.Offset)
		})
	}

	_, err := Decode(tooMany + ":0:0:0:00")
	assert.ErrorIs(t, err, ErrTooManyCheckers)
}

func TestEncodeNilMatch(t *testing.T) {
	pos := Position{Board: StartingBoard(), Turn: TurnMarker{Player: Black, Dice: [2]uint8{6, 1}}}
	assert.Equal(t, "-b----E-C---eE---c-e----B-:0:0:-1:61:0:0:0:0:10", Encode(pos))
}
