package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whiteToMove() Position {
	pos := StartingPosition()
	pos.Turn.Player = White
	return pos
}

func TestOpeningRoll(t *testing.T) {
	res, err := Roll(StartingPosition(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, White, res.Position.Turn.Player)
	assert.Equal(t, []int{3, 1}, res.Turn.Dice)

	res, err = Roll(StartingPosition(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, Black, res.Position.Turn.Player)
	assert.Equal(t, Black, res.Turn.Player)

	_, err = Roll(StartingPosition(), 4, 4)
	assert.ErrorIs(t, err, ErrOpeningDoubles)
}

func TestRollErrors(t *testing.T) {
	_, err := Roll(whiteToMove(), 0, 3)
	assert.ErrorIs(t, err, ErrBadDice)
	_, err = Roll(whiteToMove(), 3, 7)
	assert.ErrorIs(t, err, ErrBadDice)

	res, err := Roll(whiteToMove(), 5, 2)
	require.NoError(t, err)
	_, err = Roll(res.Position, 5, 2)
	assert.ErrorIs(t, err, ErrAlreadyRolled)

	won := Position{Board: setup(t, nil, map[int]int{24: 2}), Turn: TurnMarker{Player: Black}}
	_, err = Roll(won, 5, 2)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestRollDoubles(t *testing.T) {
	res, err := Roll(whiteToMove(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2, 2}, res.Turn.Dice)
	assert.True(t, res.Turn.Doubles())
	assert.Contains(t, Encode(res.Position), ":1:22:")
}

func TestTurnCompletion(t *testing.T) {
	res, err := Roll(whiteToMove(), 6, 4)
	require.NoError(t, err)
	require.NotNil(t, res.Turn)

	res = Step(res.Position, res.Turn, 24, 18, 1)
	require.True(t, res.Applied, "%v", res.Reason)
	assert.False(t, res.Ended)
	assert.Equal(t, []int{6}, res.Turn.Used)
	assert.Equal(t, []int{4}, res.Turn.Available())

	res = Step(res.Position, res.Turn, 24, 20, 1)
	require.True(t, res.Applied, "%v", res.Reason)
	assert.True(t, res.Ended)
	assert.Nil(t, res.Turn)
	assert.False(t, res.NoLegalMoves)
	assert.Equal(t, Black, res.Position.Turn.Player)
	assert.False(t, res.Position.Turn.Rolled())
	assert.Contains(t, Encode(res.Position), ":0:0:-1:00:")
}

func TestStepRejected(t *testing.T) {
	res, err := Roll(whiteToMove(), 6, 4)
	require.NoError(t, err)
	pos, ts := res.Position, res.Turn

	got := Step(pos, ts, 13, 10, 1)
	assert.False(t, got.Applied)
	assert.ErrorIs(t, got.Reason, ErrNoSuchDie)
	assert.Equal(t, pos, got.Position)
	assert.Same(t, ts, got.Turn)
	assert.Empty(t, ts.Used)

	got = Step(pos, nil, 13, 7, 1)
	assert.ErrorIs(t, got.Reason, ErrNoTurn)

	other := *ts
	other.Player = Black
	got = Step(pos, &other, 12, 18, 1)
	assert.ErrorIs(t, got.Reason, ErrNotYourTurn)
}

func TestStepDoubles(t *testing.T) {
	res, err := Roll(whiteToMove(), 2, 2)
	require.NoError(t, err)

	res = Step(res.Position, res.Turn, 6, 4, 2)
	require.True(t, res.Applied, "%v", res.Reason)
	assert.Len(t, res.Moves, 2)
	assert.Equal(t, []int{2, 2}, res.Turn.Available())

	res = Step(res.Position, res.Turn, 13, 11, 2)
	require.True(t, res.Applied, "%v", res.Reason)
	assert.True(t, res.Ended)
	assert.Equal(t, 2, res.Position.Board.Checkers(White, 11))
}

func TestBarEntryRecomputed(t *testing.T) {
	b := StartingBoard()
	b.SetPoint(24, White, 1)
	b.SetBar(White, 1)
	pos := Position{Board: b, Turn: TurnMarker{Player: White}}

	res, err := Roll(pos, 6, 1)
	require.NoError(t, err)
	assert.True(t, res.Turn.MustEnterFromBar)

	res = Step(res.Position, res.Turn, WhiteBar, 24, 1)
	require.True(t, res.Applied, "%v", res.Reason)
	assert.False(t, res.Turn.MustEnterFromBar)
	assert.Contains(t, GenerateMoves(res.Position.Board, res.Turn), Move{From: 24, To: 18, Die: 6})
}

func TestNoLegalMovesEndsTurn(t *testing.T) {
	closed := map[int]int{19: 2, 20: 2, 21: 2, 22: 2, 23: 2, 24: 2}
	b := setup(t, map[int]int{WhiteBar: 1, 6: 14}, closed)
	pos := Position{Board: b, Turn: TurnMarker{Player: White}}

	res, err := Roll(pos, 5, 3)
	require.NoError(t, err)
	assert.True(t, res.Ended)
	assert.True(t, res.NoLegalMoves)
	assert.Nil(t, res.Turn)
	assert.Equal(t, Black, res.Position.Turn.Player)
	assert.Equal(t, b, res.Position.Board)
}

func TestNoLegalMovesAfterStep(t *testing.T) {
	// After entering with the 1 the 6 has nowhere to go.
	closed := map[int]int{18: 2, 19: 2, 17: 2, 12: 2, 5: 7}
	b := setup(t, map[int]int{WhiteBar: 1, 2: 14}, closed)
	pos := Position{Board: b, Turn: TurnMarker{Player: White}}

	res, err := Roll(pos, 6, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Turn)
	res = Step(res.Position, res.Turn, WhiteBar, 24, 1)
	require.True(t, res.Applied, "%v", res.Reason)
	assert.True(t, res.Ended)
	assert.True(t, res.NoLegalMoves)
}

func TestWinEndsTurn(t *testing.T) {
	b := setup(t, map[int]int{2: 1}, map[int]int{24: 2})
	pos := Position{Board: b, Turn: TurnMarker{Player: White}}
	res, err := Roll(pos, 2, 1)
	require.NoError(t, err)

	res = Step(res.Position, res.Turn, 2, WhiteOff, 1)
	require.True(t, res.Applied, "%v", res.Reason)
	assert.True(t, res.Ended)
	assert.Equal(t, White, res.Winner)
	assert.Equal(t, White, Winner(res.Position.Board))
	assert.Equal(t, NumCheckers, res.Position.Board.Off(White))
}

func TestPlayMoves(t *testing.T) {
	res, err := Roll(whiteToMove(), 3, 1)
	require.NoError(t, err)

	got := PlayMoves(res.Position, res.Turn, []Move{{From: 8, To: 5}, {From: 6, To: 5}})
	require.True(t, got.Applied, "%v", got.Reason)
	assert.True(t, got.Ended)
	assert.Equal(t, []Move{{From: 8, To: 5, Die: 3}, {From: 6, To: 5, Die: 1}}, got.Moves)
	assert.Equal(t, 2, got.Position.Board.Checkers(White, 5))
}

func TestPlayMovesAllOrNothing(t *testing.T) {
	res, err := Roll(whiteToMove(), 3, 1)
	require.NoError(t, err)
	pos, ts := res.Position, res.Turn

	got := PlayMoves(pos, ts, []Move{{From: 8, To: 5}, {From: 6, To: 3}})
	assert.False(t, got.Applied)
	assert.ErrorIs(t, got.Reason, ErrNoSuchDie)
	assert.Contains(t, got.Reason.Error(), "move 2")
	assert.Equal(t, pos, got.Position)
	assert.Same(t, ts, got.Turn)

	got = PlayMoves(pos, ts, []Move{{From: 8, To: 5}, {From: 6, To: 5}, {From: 8, To: 7}})
	assert.False(t, got.Applied)
	assert.ErrorIs(t, got.Reason, ErrTurnOver)
	assert.Equal(t, pos, got.Position)
}

func TestResultOwnsMatchFields(t *testing.T) {
	pos := whiteToMove()
	res, err := Roll(pos, 3, 1)
	require.NoError(t, err)
	res.Position.Match[0] = "9"
	assert.Equal(t, "0", pos.Match[0])

	mid := res.Position
	step := Step(mid, res.Turn, 8, 5, 1)
	require.True(t, step.Applied, "%v", step.Reason)
	require.False(t, step.Ended)
	step.Position.Match[1] = "7"
	assert.Equal(t, "0", mid.Match[1])

	end := Step(step.Position, step.Turn, 6, 5, 1)
	require.True(t, end.Ended)
	end.Position.Match[2] = "5"
	assert.Equal(t, "0", step.Position.Match[2])

	clone := end.Position.Clone()
	clone.Match[3] = "1"
	assert.Equal(t, "0", end.Position.Match[3])
}

func TestTurnStateJSON(t *testing.T) {
	res, err := Roll(whiteToMove(), 5, 5)
	require.NoError(t, err)
	res = Step(res.Position, res.Turn, 13, 8, 1)
	require.True(t, res.Applied)

	data, err := json.Marshal(res.Turn)
	require.NoError(t, err)
	var back TurnState
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *res.Turn, back)

	res = Step(res.Position, &back, 13, 8, 1)
	assert.True(t, res.Applied, "%v", res.Reason)
}
