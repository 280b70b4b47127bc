package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/bgrules/pkg/engine"
)

var (
	ErrOutOfTurn     = errors.New("action out of turn")
	ErrDiceLeft      = errors.New("playable dice left unused")
	ErrCannotDouble  = errors.New("player may not double")
	ErrNoOffer       = errors.New("no double to answer")
	ErrWinnerMissing = errors.New("recorded winner does not match the game")
)

// ReplayError reports the action a replay stopped at.
type ReplayError struct {
	Game   int
	Index  int
	Action Action
	Err    error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("game %d, action %d (%s %s): %v", e.Game, e.Index+1, e.Action.Player, e.Action.Type, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }

// Step is one replayed action with the position after it.
type Step struct {
	Action   Action
	Position engine.Position
	Moves    []engine.Move // moves of a roll, single-die
	NoMoves  bool          // the roll could not be played
}

// Replay plays a game from the starting position and returns a step per
// action. Every roll must be played in full; the first illegal action
// stops the replay with a *ReplayError.
func Replay(g *Game) ([]Step, error) {
	pos := engine.StartingPosition()
	steps := make([]Step, 0, len(g.Actions))
	offered := false

	for i, a := range g.Actions {
		fail := func(err error) ([]Step, error) {
			return steps, &ReplayError{Game: g.Number, Index: i, Action: a, Err: err}
		}
		if !a.Player.Valid() {
			return fail(engine.ErrNoColor)
		}
		if pos.Turn.Player == engine.Open {
			// the opening roll is recorded as the starter's own roll
			if a.Type == ActionRoll && a.Dice[0] == a.Dice[1] {
				return fail(engine.ErrOpeningDoubles)
			}
			pos.Turn.Player = a.Player
		}

		step := Step{Action: a}
		switch a.Type {
		case ActionRoll:
			if offered || a.Player != pos.Turn.Player {
				return fail(ErrOutOfTurn)
			}
			res, err := engine.Roll(pos, a.Dice[0], a.Dice[1])
			if err != nil {
				return fail(err)
			}
			moves := matNotation(a.Moves)
			switch {
			case res.Ended && moves != "":
				return fail(engine.ErrTurnOver)
			case !res.Ended:
				res = engine.PlayNotation(res.Position, res.Turn, moves)
				if res.Reason != nil {
					return fail(res.Reason)
				}
				if res.Turn != nil {
					return fail(ErrDiceLeft)
				}
			}
			pos = res.Position
			step.Moves = res.Moves
			step.NoMoves = res.NoLegalMoves && len(res.Moves) == 0

		case ActionDouble:
			if offered || a.Player != pos.Turn.Player || pos.Turn.Rolled() {
				return fail(ErrOutOfTurn)
			}
			if pos.Cube.Owner != engine.Centered && pos.Cube.Owner != a.Player {
				return fail(ErrCannotDouble)
			}
			if pos.Cube.Value >= engine.MaxCubeValue {
				return fail(ErrCannotDouble)
			}
			offered = true

		case ActionTake:
			if !offered || a.Player == pos.Turn.Player {
				return fail(ErrNoOffer)
			}
			pos.Cube.Value++
			pos.Cube.Owner = a.Player
			offered = false

		case ActionPass:
			if !offered || a.Player == pos.Turn.Player {
				return fail(ErrNoOffer)
			}
			offered = false

		default:
			return fail(fmt.Errorf("unknown action %d", a.Type))
		}
		step.Position = pos
		steps = append(steps, step)
	}

	if g.Winner != engine.None {
		if w := winnerOf(pos, g.Actions); w != engine.None && w != g.Winner {
			return steps, &ReplayError{Game: g.Number, Index: len(g.Actions) - 1, Action: g.Actions[len(g.Actions)-1], Err: ErrWinnerMissing}
		}
	}
	return steps, nil
}

// winnerOf returns who won the replayed game, or None if neither side
// has borne off and the game did not end on a pass.
func winnerOf(pos engine.Position, actions []Action) engine.Color {
	if w := engine.Winner(pos.Board); w != engine.None {
		return w
	}
	if n := len(actions); n > 0 && actions[n-1].Type == ActionPass {
		return actions[n-1].Player.Opponent()
	}
	return engine.None
}

// matNotation rewrites transcript move text into engine notation: the
// bar is written 25 and the off tray 0.
func matNotation(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if strings.HasPrefix(f, "25/") {
			f = "bar/" + f[3:]
		}
		if j := strings.LastIndexByte(f, '/'); j >= 0 {
			tail := f[j+1:]
			rest := ""
			if k := strings.IndexByte(tail, '('); k >= 0 {
				tail, rest = tail[:k], tail[k:]
			}
			if tail == "0" {
				f = f[:j+1] + "off" + rest
			}
		}
		fields[i] = f
	}
	return strings.Join(fields, " ")
}
