package engine

import "github.com/yourusername/bgrules/internal/positionid"

// Move is one checker movement in the absolute frame. Die is the die a
// generated move consumes; merged display moves leave it 0.
type Move struct {
	From int  `json:"from"`
	To   int  `json:"to"`
	Hit  bool `json:"hit_blot,omitempty"`
	Die  int  `json:"die,omitempty"`
}

// Relative returns the move's slots in c's frame.
func (m Move) Relative(c Color) (from, to int) {
	return ToRelative(c, m.From), ToRelative(c, m.To)
}

// RelativeMove builds a move from slots in c's frame.
func RelativeMove(c Color, from, to int) Move {
	return Move{From: ToAbsolute(c, from), To: ToAbsolute(c, to)}
}

// GenerateMoves lists every single-die move the side of ts can make with
// its remaining dice. A side with checkers on the bar only gets entering
// moves. Moves with the same source and destination are listed once.
func GenerateMoves(b Board, ts *TurnState) []Move {
	if ts == nil {
		return nil
	}
	avail := ts.Available()
	if len(avail) == 0 {
		return nil
	}

	moves := make([]Move, 0, 16)
	seen := make(map[[2]int]bool)
	add := func(m Move) {
		k := [2]int{m.From, m.To}
		if !seen[k] {
			seen[k] = true
			moves = append(moves, m)
		}
	}

	bearOff := !ts.MustEnterFromBar && CanBearOff(b, ts.Player)
	highest := HighestOccupiedPoint(b, ts.Player)
	for _, d := range distinctDice(avail) {
		for _, m := range movesForDie(b, ts.Player, d, avail, ts.MustEnterFromBar, bearOff, highest) {
			add(m)
		}
	}
	return moves
}

// movesForDie lists c's moves using die d, from the highest relative
// point down.
func movesForDie(b Board, c Color, d int, avail []int, fromBar, bearOff bool, highest int) []Move {
	var moves []Move
	if fromBar {
		if p := b.RelPoint(c, relBar-d); p.OpenFor(c) {
			moves = append(moves, Move{From: BarSlot(c), To: ToAbsolute(c, relBar-d), Hit: p.HitFor(c), Die: d})
		}
		return moves
	}

	for from := 24; from >= 1; from-- {
		if !b.RelPoint(c, from).Owns(c) {
			continue
		}
		to := from - d
		if to < 1 {
			if bearOff && bearsOff(from, d, avail, highest) {
				moves = append(moves, Move{From: ToAbsolute(c, from), To: OffSlot(c), Die: d})
			}
			continue
		}
		if p := b.RelPoint(c, to); p.OpenFor(c) {
			moves = append(moves, Move{From: ToAbsolute(c, from), To: ToAbsolute(c, to), Hit: p.HitFor(c), Die: d})
		}
	}
	return moves
}

// Play is a complete turn: the single-die moves in the order played.
type Play []Move

// Pips returns the dice total the play uses.
func (p Play) Pips() int {
	n := 0
	for _, m := range p {
		n += m.Die
	}
	return n
}

// PlayList holds every distinct play for a roll. Only plays that use as
// many dice as possible are kept, and among those the ones using the most
// pips, so a single playable die must be the larger one.
type PlayList struct {
	Plays   []Play
	Results []Board
	MaxDice int
	MaxPips int

	player Color
	seen   map[positionid.Key]bool
}

// GeneratePlays enumerates the complete plays for player rolling d1-d2 on
// board. Plays that lead to the same position are listed once.
func GeneratePlays(b Board, player Color, d1, d2 int) *PlayList {
	pl := &PlayList{player: player, seen: make(map[positionid.Key]bool)}
	dice := ExpandDice(d1, d2)
	pl.walk(b, dice, nil, relBar)
	if d1 != d2 {
		pl.walk(b, []int{d2, d1}, nil, relBar)
	}
	return pl
}

// walk plays dice[0] in every legal way and recurses on the rest. With
// doubles, later checkers are taken from no higher than the previous
// source, since any other order reaches the same positions.
func (pl *PlayList) walk(b Board, dice []int, path Play, maxFrom int) {
	if len(dice) == 0 {
		pl.save(b, path)
		return
	}
	c := pl.player
	fromBar := b.Bar(c) > 0
	moves := movesForDie(b, c, dice[0], dice, fromBar, !fromBar && CanBearOff(b, c), HighestOccupiedPoint(b, c))
	doubles := len(dice) > 1 && dice[0] == dice[1]
	used := false
	for _, m := range moves {
		from := ToRelative(c, m.From)
		if doubles && from > maxFrom {
			continue
		}
		next, hit := ApplyMove(b, m.From, m.To, 1, c)
		m.Hit = hit
		step := make(Play, len(path), len(path)+1)
		copy(step, path)
		pl.walk(next, dice[1:], append(step, m), from)
		used = true
	}
	if !used {
		pl.save(b, path)
	}
}

func (pl *PlayList) save(b Board, path Play) {
	if len(path) == 0 {
		return
	}
	n, pips := len(path), path.Pips()
	switch {
	case n < pl.MaxDice:
		return
	case n > pl.MaxDice || pips > pl.MaxPips:
		pl.Plays, pl.Results = pl.Plays[:0], pl.Results[:0]
		pl.seen = make(map[positionid.Key]bool)
		pl.MaxDice, pl.MaxPips = n, pips
	case pips < pl.MaxPips:
		return
	}

	key := b.Key(pl.player)
	if pl.seen[key] {
		return
	}
	pl.seen[key] = true
	pl.Plays = append(pl.Plays, path)
	pl.Results = append(pl.Results, b)
}
