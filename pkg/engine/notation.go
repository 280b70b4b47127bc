package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadNotation is returned for move text that does not parse.
var ErrBadNotation = errors.New("bad move notation")

// NormalizeSequence merges the single-die moves of one turn into display
// moves. A move continuing the checker that last arrived at its source is
// joined to that checker's move (13/10 10/8 becomes 13/8). A hitting move
// is never joined to anything: it stands alone and ends its checker's
// chain. Merged moves carry Die 0. The input is not modified.
func NormalizeSequence(moves []Move) []Move {
	out := make([]Move, 0, len(moves))
	open := make([]bool, 0, len(moves))
	for _, m := range moves {
		if !m.Hit {
			if i := lastChainTo(out, open, m.From); i >= 0 {
				out[i].To = m.To
				out[i].Die = 0
				continue
			}
		}
		out = append(out, m)
		open = append(open, !m.Hit)
	}
	return out
}

// lastChainTo returns the most recent open chain ending at slot, or -1.
func lastChainTo(out []Move, open []bool, slot int) int {
	for i := len(out) - 1; i >= 0; i-- {
		if open[i] && out[i].To == slot {
			return i
		}
	}
	return -1
}

// FormatMoves renders moves of player in its own frame, e.g.
// "bar/22 13/8 6/5*". Identical moves without a hit are written once with
// a count, as in "8/5(2)".
func FormatMoves(moves []Move, player Color) string {
	type group struct {
		m Move
		n int
	}
	var groups []group
next:
	for _, m := range moves {
		if !m.Hit {
			for i := range groups {
				g := &groups[i]
				if !g.m.Hit && g.m.From == m.From && g.m.To == m.To {
					g.n++
					continue next
				}
			}
		}
		groups = append(groups, group{m: m, n: 1})
	}

	parts := make([]string, len(groups))
	for i, g := range groups {
		s := formatMove(g.m, player)
		if g.n > 1 {
			s += "(" + strconv.Itoa(g.n) + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

func formatMove(m Move, c Color) string {
	s := formatSlot(c, m.From) + "/" + formatSlot(c, m.To)
	if m.Hit {
		s += "*"
	}
	return s
}

func formatSlot(c Color, abs int) string {
	switch rel := ToRelative(c, abs); rel {
	case relBar:
		return "bar"
	case relOff:
		return "off"
	default:
		return strconv.Itoa(rel)
	}
}

// ParseMoves reads moves written in player's frame, the format produced by
// FormatMoves. Besides "13/8" it accepts chains ("24/18/13"), repeat
// counts ("8/5(2)") and "*" hit marks. Parsed moves are in the absolute
// frame; they are not checked against any position.
func ParseMoves(s string, player Color) ([]Move, error) {
	if !player.Valid() {
		return nil, ErrNoColor
	}
	var moves []Move
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		ms, err := parseToken(tok, player)
		if err != nil {
			return nil, err
		}
		moves = append(moves, ms...)
	}
	return moves, nil
}

func parseToken(tok string, c Color) ([]Move, error) {
	bad := func() error { return fmt.Errorf("%w: %q", ErrBadNotation, tok) }

	body, n := tok, 1
	if i := strings.IndexByte(tok, '('); i >= 0 {
		if !strings.HasSuffix(tok, ")") {
			return nil, bad()
		}
		v, err := strconv.Atoi(tok[i+1 : len(tok)-1])
		if err != nil || v < 1 || v > 4 {
			return nil, bad()
		}
		body, n = tok[:i], v
	}

	parts := strings.Split(body, "/")
	if len(parts) < 2 {
		return nil, bad()
	}
	slots := make([]int, len(parts))
	hits := make([]bool, len(parts))
	for i, p := range parts {
		hits[i] = strings.HasSuffix(p, "*")
		p = strings.TrimRight(p, "*")
		switch p {
		case "bar", "b":
			if i != 0 {
				return nil, bad()
			}
			slots[i] = relBar
		case "off", "o":
			if i != len(parts)-1 {
				return nil, bad()
			}
			slots[i] = relOff
		default:
			v, err := strconv.Atoi(p)
			if err != nil || !isPoint(v) {
				return nil, bad()
			}
			slots[i] = v
		}
		if i > 0 && slots[i] >= slots[i-1] {
			return nil, bad()
		}
	}

	var moves []Move
	for k := 0; k < n; k++ {
		for i := 1; i < len(slots); i++ {
			m := RelativeMove(c, slots[i-1], slots[i])
			m.Hit = hits[i]
			moves = append(moves, m)
		}
	}
	return moves, nil
}

// PlayNotation plays moves written in notation for the side of ts. A move
// covering more than one die, such as 13/7 with 4-2, is split into
// single-die steps; any order of the dice that is legal is used. Like
// PlayMoves, either the whole text is played or nothing is.
func PlayNotation(pos Position, ts *TurnState, s string) Result {
	res := Result{Position: pos, Turn: ts}
	if ts == nil || ts.Complete {
		res.Reason = ErrNoTurn
		return res
	}
	moves, err := ParseMoves(s, ts.Player)
	if err != nil {
		res.Reason = err
		return res
	}

	cur := res
	for _, m := range moves {
		if cur.Ended {
			res.Reason = fmt.Errorf("%s: %w", formatMove(m, ts.Player), ErrTurnOver)
			return res
		}
		next, ok := route(cur, m.From, m.To)
		if !ok {
			res.Reason = fmt.Errorf("%s: %w", formatMove(m, ts.Player), ErrNoSuchDie)
			return res
		}
		next.Moves = append(append([]Move(nil), cur.Moves...), next.Moves...)
		cur = next
	}
	cur.Applied = len(moves) > 0
	return cur
}

// route finds single-die steps taking a checker from one slot to another.
// The returned Result holds only the steps of this route in Moves.
func route(cur Result, from, to int) (Result, bool) {
	c := cur.Turn.Player
	target := ToRelative(c, to)
	for _, m := range GenerateMoves(cur.Position.Board, cur.Turn) {
		if m.From != from {
			continue
		}
		if m.To != to && (!isPoint(m.To) || ToRelative(c, m.To) <= target) {
			continue
		}
		step := Step(cur.Position, cur.Turn, m.From, m.To, 1)
		if !step.Applied {
			continue
		}
		if m.To == to {
			return step, true
		}
		if step.Ended {
			continue
		}
		if next, ok := route(step, m.To, to); ok {
			next.Moves = append(step.Moves, next.Moves...)
			return next, true
		}
	}
	return Result{}, false
}
