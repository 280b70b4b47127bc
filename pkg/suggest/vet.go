package suggest

import (
	"errors"
	"fmt"

	"github.com/yourusername/bgrules/pkg/engine"
)

var (
	ErrEmptyCandidate = errors.New("candidate has no moves")
	ErrRejected       = errors.New("candidate rejected by the rules")
)

// Verdict is the result of replaying a candidate.
type Verdict struct {
	// Result is the turn outcome with the candidate applied.
	Result engine.Result
	// Notation is the candidate in the mover's frame, as written by the
	// engine.
	Notation string
	// UsesMaxDice is false when the candidate leaves dice unplayed that
	// some other play of the roll would use.
	UsesMaxDice bool
}

// Vet replays a candidate for the turn ts in pos. Moves spanning several
// dice are split into single-die steps; hit flags from the service are
// ignored and recomputed. A candidate breaking any rule is rejected as a
// whole and nothing is applied.
func Vet(pos engine.Position, ts *engine.TurnState, c Candidate) (Verdict, error) {
	if ts == nil {
		return Verdict{}, engine.ErrNoTurn
	}
	moves := c.List()
	if len(moves) == 0 {
		return Verdict{}, ErrEmptyCandidate
	}
	for i := range moves {
		moves[i].Hit = false
	}

	text := engine.FormatMoves(moves, ts.Player)
	res := engine.PlayNotation(pos, ts, text)
	if !res.Applied {
		return Verdict{Result: res, Notation: text}, fmt.Errorf("%w: %s: %w", ErrRejected, text, res.Reason)
	}

	v := Verdict{
		Result:      res,
		Notation:    engine.FormatMoves(engine.NormalizeSequence(res.Moves), ts.Player),
		UsesMaxDice: true,
	}
	if len(ts.Used) == 0 && res.Winner == engine.None {
		pl := engine.GeneratePlays(pos.Board, ts.Player, ts.Dice[0], ts.Dice[1])
		v.UsesMaxDice = len(res.Moves) >= pl.MaxDice
	}
	return v, nil
}
