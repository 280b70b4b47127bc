package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoTurn         = errors.New("no turn in progress")
	ErrAlreadyRolled  = errors.New("dice already rolled this turn")
	ErrBadDice        = errors.New("dice must be 1-6")
	ErrOpeningDoubles = errors.New("opening roll is doubles, roll again")
	ErrGameOver       = errors.New("game is over")
	ErrTurnOver       = errors.New("turn ended before all moves were played")
)

// TurnState tracks one side's dice while it plays a roll. It is created
// when the dice are rolled and dropped once the turn is over; callers keep
// it next to the Position and hand both back to Step.
type TurnState struct {
	Player           Color `json:"player"`
	Dice             []int `json:"dice"`
	Used             []int `json:"used"`
	MustEnterFromBar bool  `json:"must_enter_from_bar"`
	NoLegalMoves     bool  `json:"no_legal_moves"`
	Complete         bool  `json:"complete"`
}

// Available returns the dice still to be played.
func (ts *TurnState) Available() []int {
	if ts == nil {
		return nil
	}
	return AvailableDice(ts.Dice, ts.Used)
}

// Doubles reports whether the turn plays four equal dice.
func (ts *TurnState) Doubles() bool { return ts != nil && len(ts.Dice) == 4 }

func (ts *TurnState) clone() *TurnState {
	c := *ts
	c.Dice = append([]int(nil), ts.Dice...)
	c.Used = append([]int(nil), ts.Used...)
	return &c
}

// Result is the outcome of a turn operation. When the turn ends, Turn is
// nil and Position has the other side to move with no dice.
type Result struct {
	Position Position
	Turn     *TurnState
	Moves    []Move // moves applied, single-die, in order
	Applied  bool
	Reason   error // why a move was not applied
	Ended    bool
	// NoLegalMoves is set when the turn ended with dice left unplayable.
	NoLegalMoves bool
	Winner       Color
}

// Roll records d1-d2 for the side to move and starts its turn. From the
// opening position the dice decide who starts: d1 is White's die and d2
// Black's, and equal dice must be rolled again.
func Roll(pos Position, d1, d2 int) (Result, error) {
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return Result{}, ErrBadDice
	}
	if Winner(pos.Board) != None {
		return Result{}, ErrGameOver
	}
	if pos.Turn.Rolled() {
		return Result{}, ErrAlreadyRolled
	}
	if pos.Turn.Player == Open {
		if d1 == d2 {
			return Result{}, ErrOpeningDoubles
		}
		pos.Turn.Player = White
		if d2 > d1 {
			pos.Turn.Player = Black
		}
	}
	pos.Turn.Dice = [2]uint8{uint8(d1), uint8(d2)}
	return Begin(pos)
}

// Begin starts the turn for a position whose dice are already rolled. If
// the roll cannot be played at all the turn ends at once.
func Begin(pos Position) (Result, error) {
	if !pos.Turn.Player.Valid() {
		return Result{}, ErrNotYourTurn
	}
	if !pos.Turn.Rolled() {
		return Result{}, ErrNoDice
	}
	if Winner(pos.Board) != None {
		return Result{}, ErrGameOver
	}
	c := pos.Turn.Player
	ts := &TurnState{
		Player:           c,
		Dice:             ExpandDice(int(pos.Turn.Dice[0]), int(pos.Turn.Dice[1])),
		Used:             []int{},
		MustEnterFromBar: pos.Board.Bar(c) > 0,
	}
	res := Result{Position: pos.Clone(), Turn: ts}
	if len(GenerateMoves(pos.Board, ts)) == 0 {
		res.NoLegalMoves = true
		res.end()
	}
	return res, nil
}

// Step plays one move of the side of ts: count checkers from one absolute
// slot to another, all with the same die. A rejected move leaves pos and
// ts as they were and sets Reason.
func Step(pos Position, ts *TurnState, from, to, count int) Result {
	res := Result{Position: pos, Turn: ts}
	if ts == nil || ts.Complete {
		res.Reason = ErrNoTurn
		return res
	}
	if ts.Player != pos.Turn.Player {
		res.Reason = ErrNotYourTurn
		return res
	}

	c := ts.Player
	die, err := Validate(pos, ts, Proposal{From: from, To: to, Count: count, Owner: c}, RuleEnforced)
	if err != nil {
		res.Reason = err
		return res
	}

	board, hit := ApplyMove(pos.Board, from, to, count, c)
	next := ts.clone()
	for i := 0; i < count; i++ {
		next.Used = append(next.Used, die)
		res.Moves = append(res.Moves, Move{From: from, To: to, Hit: hit && i == 0, Die: die})
	}
	next.MustEnterFromBar = board.Bar(c) > 0

	res.Position = pos.Clone()
	res.Position.Board = board
	res.Turn = next
	res.Applied = true

	switch {
	case board.Off(c) == NumCheckers:
		res.Winner = c
		res.end()
	case len(next.Used) >= len(next.Dice):
		res.end()
	case len(GenerateMoves(board, next)) == 0:
		res.NoLegalMoves = true
		res.end()
	}
	return res
}

// end performs the hand-off that closes every turn.
func (r *Result) end() {
	if r.Turn != nil {
		r.Turn.NoLegalMoves = r.NoLegalMoves
		r.Turn.Complete = true
	}
	r.Turn = nil
	r.Ended = true
	r.Position = r.Position.handOff()
}

// PlayMoves plays single-die moves one at a time. Either all of them are
// applied or none: on the first rejection the original position and turn
// are returned with Reason naming the failed move.
func PlayMoves(pos Position, ts *TurnState, moves []Move) Result {
	res := Result{Position: pos, Turn: ts}
	cur := res
	for i, m := range moves {
		if cur.Ended {
			res.Reason = fmt.Errorf("move %d: %w", i+1, ErrTurnOver)
			return res
		}
		step := Step(cur.Position, cur.Turn, m.From, m.To, 1)
		if !step.Applied {
			res.Reason = fmt.Errorf("move %d (%d/%d): %w", i+1, m.From, m.To, step.Reason)
			return res
		}
		step.Moves = append(cur.Moves, step.Moves...)
		cur = step
	}
	cur.Applied = len(moves) > 0
	return cur
}
