package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSequence(t *testing.T) {
	tests := []struct {
		name  string
		moves []Move
		want  []Move
		text  string
	}{
		{
			name:  "same checker",
			moves: []Move{{From: 13, To: 10, Die: 3}, {From: 10, To: 8, Die: 2}},
			want:  []Move{{From: 13, To: 8}},
			text:  "13/8",
		},
		{
			name:  "hit ends the chain",
			moves: []Move{{From: 13, To: 10, Hit: true, Die: 3}, {From: 10, To: 8, Die: 2}},
			want:  []Move{{From: 13, To: 10, Hit: true, Die: 3}, {From: 10, To: 8, Die: 2}},
			text:  "13/10* 10/8",
		},
		{
			name:  "hit is not merged backwards",
			moves: []Move{{From: 8, To: 5, Die: 3}, {From: 5, To: 4, Hit: true, Die: 1}},
			want:  []Move{{From: 8, To: 5, Die: 3}, {From: 5, To: 4, Hit: true, Die: 1}},
			text:  "8/5 5/4*",
		},
		{
			name:  "two checkers to one point",
			moves: []Move{{From: 8, To: 5, Die: 3}, {From: 6, To: 5, Die: 1}},
			want:  []Move{{From: 8, To: 5, Die: 3}, {From: 6, To: 5, Die: 1}},
			text:  "8/5 6/5",
		},
		{
			name: "doubles one checker",
			moves: []Move{
				{From: 24, To: 20, Die: 4}, {From: 20, To: 16, Die: 4},
				{From: 16, To: 12, Die: 4}, {From: 12, To: 8, Die: 4},
			},
			want: []Move{{From: 24, To: 8}},
			text: "24/8",
		},
		{
			name: "doubles two checkers",
			moves: []Move{
				{From: 13, To: 11, Die: 2}, {From: 13, To: 11, Die: 2},
				{From: 6, To: 4, Die: 2}, {From: 6, To: 4, Die: 2},
			},
			want: []Move{
				{From: 13, To: 11, Die: 2}, {From: 13, To: 11, Die: 2},
				{From: 6, To: 4, Die: 2}, {From: 6, To: 4, Die: 2},
			},
			text: "13/11(2) 6/4(2)",
		},
		{
			name:  "interleaved checkers",
			moves: []Move{{From: 24, To: 21, Die: 3}, {From: 13, To: 12, Die: 1}, {From: 21, To: 18, Die: 3}, {From: 12, To: 9, Die: 3}},
			want:  []Move{{From: 24, To: 18}, {From: 13, To: 9}},
			text:  "24/18 13/9",
		},
		{
			name:  "bar and off",
			moves: []Move{{From: WhiteBar, To: 22, Die: 3}, {From: 4, To: WhiteOff, Die: 4}},
			want:  []Move{{From: WhiteBar, To: 22, Die: 3}, {From: 4, To: WhiteOff, Die: 4}},
			text:  "bar/22 4/off",
		},
		{
			name:  "empty",
			moves: nil,
			want:  []Move{},
			text:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]Move(nil), tt.moves...)
			got := NormalizeSequence(tt.moves)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, in, tt.moves, "input must not change")
			assert.Equal(t, tt.text, FormatMoves(got, White))
		})
	}
}

func TestFormatMovesBlack(t *testing.T) {
	moves := []Move{{From: 12, To: 18}, {From: BlackBar, To: 3, Hit: true}, {From: 22, To: BlackOff}}
	assert.Equal(t, "13/7 bar/22* 3/off", FormatMoves(moves, Black))
}

// A repeated hitting move is written out rather than counted.
func TestFormatMovesRepeatedHit(t *testing.T) {
	moves := []Move{{From: 6, To: 2, Hit: true}, {From: 6, To: 2}}
	assert.Equal(t, "6/2* 6/2", FormatMoves(moves, White))
}

func TestParseMoves(t *testing.T) {
	tests := []struct {
		in     string
		player Color
		want   []Move
	}{
		{"13/8 6/5*", White, []Move{{From: 13, To: 8}, {From: 6, To: 5, Hit: true}}},
		{"bar/22 6/off", White, []Move{{From: WhiteBar, To: 22}, {From: 6, To: WhiteOff}}},
		{"Bar/22 6/Off", Black, []Move{{From: BlackBar, To: 3}, {From: 19, To: BlackOff}}},
		{"8/5(2)", White, []Move{{From: 8, To: 5}, {From: 8, To: 5}}},
		{"24/18/13", White, []Move{{From: 24, To: 18}, {From: 18, To: 13}}},
		{"24/21*/18", Black, []Move{{From: 1, To: 4, Hit: true}, {From: 4, To: 7}}},
		{"  ", White, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoves(tt.in, tt.player)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMovesErrors(t *testing.T) {
	for _, in := range []string{"13", "13/14", "off/3", "8/bar", "x/3", "8/5(9)", "8/5(2", "25/20", "8/0", "6/off/3"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMoves(in, White)
			assert.ErrorIs(t, err, ErrBadNotation)
		})
	}
	_, err := ParseMoves("13/8", None)
	assert.ErrorIs(t, err, ErrNoColor)
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"13/8 6/5*", "bar/20 13/11(2)", "3/off 2/off"} {
		for _, c := range []Color{White, Black} {
			moves, err := ParseMoves(s, c)
			require.NoError(t, err)
			assert.Equal(t, s, FormatMoves(moves, c))
		}
	}
}

func TestPlayNotation(t *testing.T) {
	res, err := Roll(whiteToMove(), 6, 4)
	require.NoError(t, err)

	got := PlayNotation(res.Position, res.Turn, "24/14")
	require.True(t, got.Applied, "%v", got.Reason)
	assert.True(t, got.Ended)
	require.Len(t, got.Moves, 2)
	assert.Equal(t, 24, got.Moves[0].From)
	assert.Equal(t, 14, got.Moves[1].To)
	assert.Equal(t, got.Moves[0].To, got.Moves[1].From)
	assert.Equal(t, "24/14", FormatMoves(NormalizeSequence(got.Moves), White))

	got = PlayNotation(res.Position, res.Turn, "8/2 6/2")
	require.True(t, got.Applied, "%v", got.Reason)
	assert.Equal(t, 2, got.Position.Board.Checkers(White, 2))
}

func TestPlayNotationBlocked(t *testing.T) {
	// 13/9 with 3-1: 13/10 is open, 13/12 is not.
	res, err := Roll(whiteToMove(), 3, 1)
	require.NoError(t, err)
	got := PlayNotation(res.Position, res.Turn, "13/9")
	require.True(t, got.Applied, "%v", got.Reason)
	assert.Equal(t, []Move{{From: 13, To: 10, Die: 3}, {From: 10, To: 9, Die: 1}}, got.Moves)

	got = PlayNotation(res.Position, res.Turn, "13/6")
	assert.False(t, got.Applied)
	assert.ErrorIs(t, got.Reason, ErrNoSuchDie)
	assert.Equal(t, res.Position, got.Position)

	got = PlayNotation(res.Position, res.Turn, "13/")
	assert.ErrorIs(t, got.Reason, ErrBadNotation)
}

func TestPlayNotationDoubles(t *testing.T) {
	res, err := Roll(whiteToMove(), 3, 3)
	require.NoError(t, err)
	got := PlayNotation(res.Position, res.Turn, "8/5(2) 6/3(2)")
	require.True(t, got.Applied, "%v", got.Reason)
	assert.True(t, got.Ended)
	assert.Equal(t, "8/5(2) 6/3(2)", FormatMoves(NormalizeSequence(got.Moves), White))
}
