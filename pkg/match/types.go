// Package match reads and writes match transcripts in the MAT (Jellyfish)
// format and replays their games through the rules engine.
//
// The left column of a transcript is taken to be White and the right
// column Black. Moves are kept as written, in the mover's own frame.
package match

import (
	"github.com/yourusername/bgrules/pkg/engine"
)

// Match is a match transcript.
type Match struct {
	// Match metadata
	Player1     string // left column, White
	Player2     string // right column, Black
	MatchLength int    // Match length (0 = money game)
	Date        string
	Event       string
	Place       string
	Annotator   string
	Games       []*Game
}

// Game is one game of a transcript. Scores are carried as recorded.
type Game struct {
	Number  int
	Score1  int // Player 1 score at start of game
	Score2  int // Player 2 score at start of game
	Actions []Action
	Winner  engine.Color // None while the game is unfinished
	Points  int          // Points won, as recorded
}

// ActionType represents the type of game action.
type ActionType int

const (
	ActionRoll   ActionType = iota // Roll and the moves played with it
	ActionDouble                   // Cube double
	ActionTake                     // Take the cube
	ActionPass                     // Pass (decline the cube)
)

func (t ActionType) String() string {
	switch t {
	case ActionRoll:
		return "roll"
	case ActionDouble:
		return "double"
	case ActionTake:
		return "take"
	case ActionPass:
		return "pass"
	}
	return "unknown"
}

// Action is a single game action.
type Action struct {
	Type   ActionType
	Player engine.Color
	Dice   [2]int // for ActionRoll
	Moves  string // notation for ActionRoll, empty when the roll could not be played
	Value  int    // cube face offered, for ActionDouble
}

// NewMatch creates a new empty match.
func NewMatch(player1, player2 string, matchLength int) *Match {
	return &Match{
		Player1:     player1,
		Player2:     player2,
		MatchLength: matchLength,
		Games:       make([]*Game, 0),
	}
}

// NewGame creates a new game with the given starting scores.
func NewGame(number, score1, score2 int) *Game {
	return &Game{
		Number:  number,
		Score1:  score1,
		Score2:  score2,
		Actions: make([]Action, 0),
	}
}

// AddRoll records a roll and the moves played with it.
func (g *Game) AddRoll(player engine.Color, die1, die2 int, moves string) {
	g.Actions = append(g.Actions, Action{
		Type:   ActionRoll,
		Player: player,
		Dice:   [2]int{die1, die2},
		Moves:  moves,
	})
}

// AddDouble records a double to value.
func (g *Game) AddDouble(player engine.Color, value int) {
	g.Actions = append(g.Actions, Action{
		Type:   ActionDouble,
		Player: player,
		Value:  value,
	})
}

// AddTake records a take.
func (g *Game) AddTake(player engine.Color) {
	g.Actions = append(g.Actions, Action{
		Type:   ActionTake,
		Player: player,
	})
}

// AddPass records a pass. The doubler wins the game.
func (g *Game) AddPass(player engine.Color) {
	g.Actions = append(g.Actions, Action{
		Type:   ActionPass,
		Player: player,
	})
	g.Winner = player.Opponent()
}
