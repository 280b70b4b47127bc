package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup builds a board from absolute point counts per side. Checkers not
// placed count as borne off.
func setup(t *testing.T, white, black map[int]int) Board {
	t.Helper()
	var b Board
	for abs, n := range white {
		if abs == WhiteBar {
			b.SetBar(White, n)
			continue
		}
		b.SetPoint(abs, White, n)
	}
	for abs, n := range black {
		if abs == BlackBar {
			b.SetBar(Black, n)
			continue
		}
		b.SetPoint(abs, Black, n)
	}
	require.NoError(t, b.Check())
	return b
}

func TestToRelative(t *testing.T) {
	tests := []struct {
		c        Color
		abs, rel int
	}{
		{White, 1, 1},
		{White, 24, 24},
		{White, WhiteBar, 25},
		{White, WhiteOff, 0},
		{Black, 1, 24},
		{Black, 24, 1},
		{Black, 19, 6},
		{Black, BlackBar, 25},
		{Black, BlackOff, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.rel, ToRelative(tt.c, tt.abs), "%v abs %d", tt.c, tt.abs)
		assert.Equal(t, tt.abs, ToAbsolute(tt.c, tt.rel), "%v rel %d", tt.c, tt.rel)
	}
}

func TestMakePoint(t *testing.T) {
	assert.Equal(t, Point{}, MakePoint(White, 0))
	assert.Equal(t, Point{}, MakePoint(None, 0))
	p := MakePoint(Black, 3)
	assert.Equal(t, 3, p.Count())
	assert.Equal(t, Black, p.Owner())
	assert.Panics(t, func() { MakePoint(None, 2) })
	assert.Panics(t, func() { MakePoint(White, 16) })
}

func TestPointOccupancy(t *testing.T) {
	blot := MakePoint(Black, 1)
	made := MakePoint(Black, 2)

	assert.True(t, blot.OpenFor(White))
	assert.True(t, blot.HitFor(White))
	assert.False(t, blot.HitFor(Black))
	assert.True(t, made.BlockedFor(White))
	assert.False(t, made.BlockedFor(Black))
	assert.True(t, Point{}.OpenFor(White))
	assert.False(t, Point{}.HitFor(White))
}

func TestBoardCounts(t *testing.T) {
	b := StartingBoard()
	for _, c := range []Color{White, Black} {
		assert.Equal(t, NumCheckers, b.OnBoard(c))
		assert.Equal(t, 0, b.Off(c))
		assert.Equal(t, 167, b.PipCount(c))
	}
	assert.Equal(t, 5, b.Checkers(White, 6))
	assert.Equal(t, 0, b.Checkers(Black, 6))
	assert.Equal(t, 5, b.Checkers(Black, 19))

	b = setup(t, map[int]int{3: 1, WhiteBar: 2}, map[int]int{20: 4})
	assert.Equal(t, 2, b.Checkers(White, WhiteBar))
	assert.Equal(t, 0, b.Checkers(White, BlackBar))
	assert.Equal(t, 12, b.Checkers(White, WhiteOff))
	assert.Equal(t, 11, b.Off(Black))
	assert.Equal(t, 3+2*25, b.PipCount(White))
	assert.Equal(t, 4*5, b.PipCount(Black))
}

func TestBoardCheck(t *testing.T) {
	var b Board
	b.SetPoint(1, White, 15)
	require.NoError(t, b.Check())
	b.SetBar(White, 1)
	assert.ErrorIs(t, b.Check(), ErrTooManyCheckers)
}

func TestWinner(t *testing.T) {
	assert.Equal(t, None, Winner(StartingBoard()))
	assert.Equal(t, White, Winner(setup(t, nil, map[int]int{24: 2})))
	assert.Equal(t, Black, Winner(setup(t, map[int]int{WhiteBar: 1}, nil)))
}

func TestGnubgID(t *testing.T) {
	const start = "4HPwATDgc/ABMA"
	b := StartingBoard()
	assert.Equal(t, start, b.GnubgID(White))
	assert.Equal(t, start, b.GnubgID(Black))
	assert.Equal(t, start, StartingPosition().GnubgID())

	got, err := BoardFromGnubgID(start, Black)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	moved := setup(t, map[int]int{5: 2, 13: 3, WhiteBar: 1}, map[int]int{20: 2, 3: 1})
	for _, c := range []Color{White, Black} {
		got, err := BoardFromGnubgID(moved.GnubgID(c), c)
		require.NoError(t, err)
		assert.Equal(t, moved, got, "on roll %v", c)
	}

	_, err = BoardFromGnubgID("nope", White)
	assert.Error(t, err)
	_, err = BoardFromGnubgID(start, None)
	assert.Error(t, err)
}

func TestBoardKey(t *testing.T) {
	b := StartingBoard()
	other, _ := ApplyMove(b, 8, 5, 1, White)
	assert.Equal(t, b.Key(White), StartingBoard().Key(White))
	assert.NotEqual(t, b.Key(White), other.Key(White))
}
