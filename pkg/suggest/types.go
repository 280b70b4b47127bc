// Package suggest talks to an external move-suggestion service and checks
// its answers against the rules engine. Suggestions are never applied as
// received: every candidate is replayed through the turn state machine.
package suggest

import (
	"context"

	"github.com/yourusername/bgrules/pkg/engine"
)

// Request is the body posted to the suggestion service.
type Request struct {
	Position string `json:"position"`
}

// CandidateMove is one suggested checker movement in absolute slots.
type CandidateMove struct {
	From    int  `json:"from"`
	To      int  `json:"to"`
	HitBlot bool `json:"hitBlot,omitempty"`
}

// Candidate is the service's answer: a single move, or a list under Moves
// for a multi-step play.
type Candidate struct {
	CandidateMove
	Moves []CandidateMove `json:"moves,omitempty"`
}

// List returns the suggested moves in order. A candidate with neither a
// list nor a real single move is empty.
func (c Candidate) List() []engine.Move {
	src := c.Moves
	if len(src) == 0 {
		if c.From == c.To {
			return nil
		}
		src = []CandidateMove{c.CandidateMove}
	}
	out := make([]engine.Move, len(src))
	for i, m := range src {
		out[i] = engine.Move{From: m.From, To: m.To, Hit: m.HitBlot}
	}
	return out
}

// Suggester produces candidate plays for a position.
type Suggester interface {
	Suggest(ctx context.Context, pos engine.Position) (Candidate, error)
}
