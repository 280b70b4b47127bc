package positionid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startingBoard is the opening setup, identical from both sides.
func startingBoard() Board {
	var b Board
	for side := 0; side < 2; side++ {
		b[side][5] = 5
		b[side][7] = 3
		b[side][12] = 5
		b[side][23] = 2
	}
	return b
}

// Known position ID of the starting position.
const startingPositionID = "4HPwATDgc/ABMA"

func TestPositionIDStartingPosition(t *testing.T) {
	assert.Equal(t, startingPositionID, PositionID(startingBoard()))
}

func TestBoardFromPositionID(t *testing.T) {
	b, err := BoardFromPositionID(startingPositionID)
	require.NoError(t, err)
	assert.Equal(t, startingBoard(), b)
}

func TestPositionIDRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		board func() Board
	}{
		{"starting", startingBoard},
		{"empty", func() Board { return Board{} }},
		{"bar", func() Board {
			b := startingBoard()
			b[1][23] = 1
			b[1][24] = 1
			return b
		}},
		{"bearoff", func() Board {
			var b Board
			b[1][0], b[1][1], b[1][2] = 4, 3, 2
			b[0][5] = 15
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.board()
			got, err := BoardFromPositionID(PositionID(b))
			require.NoError(t, err)
			assert.Equal(t, b, got)
		})
	}
}

func TestBoardFromPositionIDInvalid(t *testing.T) {
	for _, id := range []string{
		"",
		"4HPwATDgc/AB",
		"4HPwATDgc/ABMAA",
		"4HPwATDgc/AB!A",
		"//////////////",
	} {
		t.Run(id, func(t *testing.T) {
			_, err := BoardFromPositionID(id)
			assert.ErrorIs(t, err, ErrInvalidPositionID)
		})
	}
}

func TestKey(t *testing.T) {
	b := startingBoard()
	assert.Equal(t, b, FromKey(MakeKey(b)))

	moved := b
	moved[1][7]--
	moved[1][4]++
	assert.NotEqual(t, MakeKey(b), MakeKey(moved))
	assert.Equal(t, MakeKey(moved), MakeKey(moved))
}

func TestCheckPosition(t *testing.T) {
	assert.True(t, CheckPosition(startingBoard()))

	tooMany := startingBoard()
	tooMany[0][0] = 1
	assert.False(t, CheckPosition(tooMany))

	shared := Board{}
	shared[0][0] = 1
	shared[1][23] = 1
	assert.False(t, CheckPosition(shared))

	var closed Board
	for j := 0; j < 6; j++ {
		closed[0][j] = 2
		closed[1][j] = 2
	}
	closed[0][24] = 1
	closed[1][24] = 1
	assert.False(t, CheckPosition(closed))
}
