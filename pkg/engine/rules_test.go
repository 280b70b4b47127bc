package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableDice(t *testing.T) {
	tests := []struct {
		name       string
		all, used  []int
		wantRemain []int
	}{
		{"none used", []int{6, 4}, nil, []int{6, 4}},
		{"one used", []int{6, 4}, []int{4}, []int{6}},
		{"all used", []int{6, 4}, []int{6, 4}, []int{}},
		{"doubles keep uses", []int{3, 3, 3, 3}, []int{3}, []int{3, 3, 3}},
		{"doubles two used", []int{3, 3, 3, 3}, []int{3, 3}, []int{3, 3}},
		{"unknown used", []int{2, 1}, []int{5}, []int{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRemain, AvailableDice(tt.all, tt.used))
		})
	}

	all := []int{5, 5, 5, 5}
	AvailableDice(all, []int{5, 5})
	assert.Equal(t, []int{5, 5, 5, 5}, all, "input must not change")
}

func TestExpandDice(t *testing.T) {
	assert.Equal(t, []int{6, 1}, ExpandDice(6, 1))
	assert.Equal(t, []int{2, 2, 2, 2}, ExpandDice(2, 2))
}

func TestCanBearOff(t *testing.T) {
	assert.False(t, CanBearOff(StartingBoard(), White))
	assert.False(t, CanBearOff(StartingBoard(), Black))

	home := setup(t, map[int]int{1: 5, 6: 10}, map[int]int{19: 5, 24: 10})
	assert.True(t, CanBearOff(home, White))
	assert.True(t, CanBearOff(home, Black))

	barred := setup(t, map[int]int{1: 5, WhiteBar: 1}, map[int]int{19: 5})
	assert.False(t, CanBearOff(barred, White))

	straggler := setup(t, map[int]int{1: 5, 7: 1}, map[int]int{18: 1, 20: 2})
	assert.False(t, CanBearOff(straggler, White))
	assert.False(t, CanBearOff(straggler, Black))
}

func TestHighestOccupiedPoint(t *testing.T) {
	b := setup(t, map[int]int{3: 1, 5: 1}, map[int]int{22: 2, 24: 1})
	assert.Equal(t, 5, HighestOccupiedPoint(b, White))
	assert.Equal(t, 3, HighestOccupiedPoint(b, Black))
	assert.Equal(t, 0, HighestOccupiedPoint(setup(t, map[int]int{10: 1}, nil), White))
}

func TestCanEnterFromBar(t *testing.T) {
	closed := map[int]int{19: 2, 20: 2, 21: 2, 22: 2, 23: 2}
	b := setup(t, map[int]int{WhiteBar: 1, 6: 2}, closed)

	ts := &TurnState{Player: White, Dice: []int{6, 2}, MustEnterFromBar: true}
	assert.False(t, CanEnterFromBar(b, ts), "19 and 23 are both made")

	ts = &TurnState{Player: White, Dice: []int{6, 1}, MustEnterFromBar: true}
	assert.True(t, CanEnterFromBar(b, ts), "24 is open")

	ts.Used = []int{1}
	assert.False(t, CanEnterFromBar(b, ts))

	assert.False(t, CanEnterFromBar(b, &TurnState{Player: White, Dice: []int{6, 1}}))
	assert.False(t, CanEnterFromBar(b, nil))
}

func TestMoveDistance(t *testing.T) {
	tests := []struct {
		from, to int
		want     int
		ok       bool
	}{
		{25, 24, 1, true},
		{25, 19, 6, true},
		{25, 18, 0, false},
		{13, 8, 5, true},
		{24, 1, 23, true},
		{8, 13, 0, false},
		{8, 8, 0, false},
		// bearing off counts the pips to the tray
		{6, 0, 6, true},
		{5, 0, 5, true},
		{1, 0, 1, true},
		{7, 0, 0, false},
		{0, 3, 0, false},
	}
	for _, tt := range tests {
		got, ok := MoveDistance(tt.from, tt.to)
		assert.Equal(t, tt.ok, ok, "%d to %d", tt.from, tt.to)
		assert.Equal(t, tt.want, got, "%d to %d", tt.from, tt.to)
	}
}

// Checkers on 3 and 5 with 6-2: the 6 clears the 5 but not the 3.
func TestBearOffOverage(t *testing.T) {
	for _, c := range []Color{White, Black} {
		t.Run(c.String(), func(t *testing.T) {
			b := setup(t, nil, nil)
			b.SetPoint(ToAbsolute(c, 3), c, 1)
			b.SetPoint(ToAbsolute(c, 5), c, 1)
			b.SetPoint(ToAbsolute(c.Opponent(), 2), c.Opponent(), 3)
			pos := Position{Board: b, Turn: TurnMarker{Player: c, Dice: [2]uint8{6, 2}}}
			res, err := Begin(pos)
			require.NoError(t, err)
			ts := res.Turn

			moves := GenerateMoves(b, ts)
			off := OffSlot(c)
			assert.Contains(t, moves, Move{From: ToAbsolute(c, 5), To: off, Die: 6})
			assert.NotContains(t, moves, Move{From: ToAbsolute(c, 3), To: off, Die: 6})

			die, err := Validate(pos, ts, Proposal{From: ToAbsolute(c, 5), To: off, Count: 1, Owner: c}, RuleEnforced)
			require.NoError(t, err)
			assert.Equal(t, 6, die)

			_, err = Validate(pos, ts, Proposal{From: ToAbsolute(c, 3), To: off, Count: 1, Owner: c}, RuleEnforced)
			assert.ErrorIs(t, err, ErrNoSuchDie)
		})
	}
}

func TestBearOffRule(t *testing.T) {
	tests := []struct {
		name    string
		p, d    int
		avail   []int
		highest int
		want    bool
	}{
		{"exact", 4, 4, []int{4, 1}, 6, true},
		{"exact below highest", 2, 2, []int{2, 6}, 5, true},
		{"larger die from highest", 3, 5, []int{5, 1}, 3, true},
		{"larger die not highest", 2, 5, []int{5, 1}, 3, false},
		{"not the smallest larger die", 3, 6, []int{6, 4}, 3, false},
		{"smaller die", 5, 3, []int{3, 1}, 5, false},
		{"doubles overage", 2, 4, []int{4, 4, 4}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bearsOff(tt.p, tt.d, tt.avail, tt.highest))
		})
	}
}
