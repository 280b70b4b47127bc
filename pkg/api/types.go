// Package api provides the HTTP/JSON and WebSocket API over the rules
// engine.
package api

import (
	"github.com/yourusername/bgrules/pkg/engine"
)

// ============================================================================
// Request Types
// ============================================================================

// PositionRequest carries a position string, with or without "XGID=".
type PositionRequest struct {
	Position string `json:"position"`
}

// FIBSBoardRequest carries a FIBS "board:" line.
type FIBSBoardRequest struct {
	Board string `json:"board"`
}

// MovesRequest asks for single-die moves. Without a turn, the turn is
// started from the dice in the position.
type MovesRequest struct {
	Position string            `json:"position"`
	Turn     *engine.TurnState `json:"turn,omitempty"`
}

// PlaysRequest asks for the complete plays of a roll. Dice default to the
// dice in the position.
type PlaysRequest struct {
	Position string `json:"position"`
	Dice     [2]int `json:"dice,omitempty"`
}

// ValidateRequest checks a move without applying it.
type ValidateRequest struct {
	Position string            `json:"position"`
	Turn     *engine.TurnState `json:"turn,omitempty"`
	From     int               `json:"from"`
	To       int               `json:"to"`
	Count    int               `json:"count,omitempty"` // default 1
	Owner    engine.Color      `json:"owner,omitempty"` // default: side to move
	Mode     string            `json:"mode,omitempty"`  // "rules" (default) or "unrestricted"
}

// RollRequest records dice for the side to move.
type RollRequest struct {
	Position string `json:"position"`
	Dice     [2]int `json:"dice"`
}

// StepRequest plays one move of a turn.
type StepRequest struct {
	Position string            `json:"position"`
	Turn     *engine.TurnState `json:"turn"`
	From     int               `json:"from"`
	To       int               `json:"to"`
	Count    int               `json:"count,omitempty"`
}

// PlayRequest plays several moves of a turn, either as notation or as a
// list of single-die moves. Notation wins when both are set.
type PlayRequest struct {
	Position string            `json:"position"`
	Turn     *engine.TurnState `json:"turn"`
	Notation string            `json:"notation,omitempty"`
	Moves    []engine.Move     `json:"moves,omitempty"`
}

// NormalizeRequest collapses a single-die move list for display.
type NormalizeRequest struct {
	Player engine.Color  `json:"player"`
	Moves  []engine.Move `json:"moves"`
}

// SuggestRequest asks the suggestion service for a play of the turn.
type SuggestRequest struct {
	Position string            `json:"position"`
	Turn     *engine.TurnState `json:"turn,omitempty"`
}

// ============================================================================
// Response Types
// ============================================================================

// PositionResponse describes a decoded position.
type PositionResponse struct {
	Position string       `json:"position"`
	GnubgID  string       `json:"gnubg_id"`
	Player   engine.Color `json:"player"`
	Dice     [2]int       `json:"dice"`
	Cube     CubeInfo     `json:"cube"`
	Pips     SideCounts   `json:"pips"`
	Bar      SideCounts   `json:"bar"`
	Off      SideCounts   `json:"off"`
	Winner   engine.Color `json:"winner,omitempty"`
	Match    []string     `json:"match"`
}

// CubeInfo is the cube as shown on the board.
type CubeInfo struct {
	Value int          `json:"value"` // exponent
	Face  int          `json:"face"`
	Owner engine.Color `json:"owner"`
}

// SideCounts holds one number per side.
type SideCounts struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// MovesResponse lists single-die moves.
type MovesResponse struct {
	Position string            `json:"position"`
	Turn     *engine.TurnState `json:"turn"`
	Moves    []engine.Move     `json:"moves"`
}

// PlayInfo is one complete play of a roll.
type PlayInfo struct {
	Notation string        `json:"notation"`
	Moves    []engine.Move `json:"moves"`
	Result   string        `json:"result"` // board field after the play
}

// PlaysResponse lists the complete plays of a roll.
type PlaysResponse struct {
	Position string     `json:"position"`
	Dice     [2]int     `json:"dice"`
	Plays    []PlayInfo `json:"plays"`
	MaxDice  int        `json:"max_dice"`
	MaxPips  int        `json:"max_pips"`
}

// ValidateResponse reports whether a move is legal.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Die    int    `json:"die,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// TurnResponse is the outcome of a turn operation. Turn is null once the
// turn has ended.
type TurnResponse struct {
	Position     string            `json:"position"`
	Turn         *engine.TurnState `json:"turn"`
	Moves        []engine.Move     `json:"moves,omitempty"`
	Notation     string            `json:"notation,omitempty"`
	Applied      bool              `json:"applied"`
	Reason       string            `json:"reason,omitempty"`
	Ended        bool              `json:"ended"`
	NoLegalMoves bool              `json:"no_legal_moves"`
	Winner       engine.Color      `json:"winner,omitempty"`
}

// NormalizeResponse is a collapsed move list and its notation.
type NormalizeResponse struct {
	Moves    []engine.Move `json:"moves"`
	Notation string        `json:"notation"`
}

// SuggestResponse is a vetted suggestion. Result shows the turn with the
// suggestion applied; the caller's state is not changed.
type SuggestResponse struct {
	Notation    string       `json:"notation"`
	UsesMaxDice bool         `json:"uses_max_dice"`
	Result      TurnResponse `json:"result"`
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Suggest bool       `json:"suggest"` // suggestion service configured
	Pool    *PoolStats `json:"pool,omitempty"`
}

// ErrorResponse is the response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ============================================================================
// Conversion Helpers
// ============================================================================

// PositionToResponse describes pos.
func PositionToResponse(pos engine.Position) PositionResponse {
	b := pos.Board
	return PositionResponse{
		Position: pos.String(),
		GnubgID:  pos.GnubgID(),
		Player:   pos.Turn.Player,
		Dice:     [2]int{int(pos.Turn.Dice[0]), int(pos.Turn.Dice[1])},
		Cube:     CubeInfo{Value: int(pos.Cube.Value), Face: pos.Cube.Face(), Owner: pos.Cube.Owner},
		Pips:     SideCounts{White: b.PipCount(engine.White), Black: b.PipCount(engine.Black)},
		Bar:      SideCounts{White: b.Bar(engine.White), Black: b.Bar(engine.Black)},
		Off:      SideCounts{White: b.Off(engine.White), Black: b.Off(engine.Black)},
		Winner:   engine.Winner(b),
		Match:    pos.Match,
	}
}

// ResultToResponse converts a turn result. player is the side that moved.
func ResultToResponse(res engine.Result, player engine.Color) TurnResponse {
	resp := TurnResponse{
		Position:     res.Position.String(),
		Turn:         res.Turn,
		Moves:        res.Moves,
		Applied:      res.Applied,
		Ended:        res.Ended,
		NoLegalMoves: res.NoLegalMoves,
		Winner:       res.Winner,
	}
	if len(res.Moves) > 0 {
		resp.Notation = engine.FormatMoves(engine.NormalizeSequence(res.Moves), player)
	}
	if res.Reason != nil {
		resp.Reason = res.Reason.Error()
	}
	return resp
}
