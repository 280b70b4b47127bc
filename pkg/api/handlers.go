package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/obslog"
	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/external"
	"github.com/yourusername/bgrules/pkg/suggest"
)

// Handlers holds the HTTP handlers. The engine is stateless; every request
// carries its own position and turn state.
type Handlers struct {
	version   string
	pool      *WorkerPool
	suggester suggest.Suggester
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance. pool and s may be nil.
func NewHandlers(version string, pool *WorkerPool, s suggest.Suggester, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = obslog.L()
	}
	return &Handlers{
		version:   version,
		pool:      pool,
		suggester: s,
		logger:    logger,
	}
}

// apiError is a failed operation with its HTTP status. Body, when set, is
// written instead of an ErrorResponse.
type apiError struct {
	status int
	code   string
	msg    string
	body   any
}

func (e *apiError) Error() string { return e.msg }

func badRequest(code string, err error) *apiError {
	return &apiError{status: http.StatusBadRequest, code: code, msg: err.Error()}
}

var errBusy = &apiError{status: http.StatusServiceUnavailable, code: "SERVER_BUSY", msg: "server busy"}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, e *apiError) {
	if e.body != nil {
		writeJSON(w, e.status, e.body)
		return
	}
	writeJSON(w, e.status, ErrorResponse{Error: e.msg, Code: e.code})
}

// serve decodes a request of type Req, runs op in the fast lane and writes
// the answer.
func serve[Req, Resp any](h *Handlers, w http.ResponseWriter, r *http.Request, op func(Req) (Resp, *apiError)) {
	var req Req
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apiError{status: http.StatusBadRequest, code: "INVALID_JSON", msg: "invalid JSON"})
		return
	}
	resp, e := runFast(r.Context(), h, func() (Resp, *apiError) { return op(req) })
	if e != nil {
		writeError(w, e)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func runFast[Resp any](ctx context.Context, h *Handlers, op func() (Resp, *apiError)) (Resp, *apiError) {
	if h.pool != nil {
		if err := h.pool.AcquireFast(ctx); err != nil {
			var zero Resp
			return zero, errBusy
		}
		defer h.pool.ReleaseFast()
	}
	return op()
}

// parsePosition decodes a position string from a request.
func parsePosition(s string) (engine.Position, *apiError) {
	if s == "" {
		return engine.Position{}, &apiError{status: http.StatusBadRequest, code: "MISSING_POSITION", msg: "position is required"}
	}
	pos, err := engine.Decode(s)
	if err != nil {
		return engine.Position{}, badRequest("INVALID_POSITION", err)
	}
	return pos, nil
}

// startTurn returns the turn to play in pos: ts when given, otherwise the
// turn begun from the dice in the position. The result may already have
// ended when the roll cannot be played.
func startTurn(pos engine.Position, ts *engine.TurnState) (engine.Result, *apiError) {
	if ts != nil {
		return engine.Result{Position: pos, Turn: ts}, nil
	}
	res, err := engine.Begin(pos)
	if err != nil {
		return res, &apiError{status: http.StatusUnprocessableEntity, code: "NO_TURN", msg: err.Error()}
	}
	return res, nil
}

// turnAnswer converts a turn result. A move that was not applied is
// reported with 422 and the unchanged state.
func turnAnswer(res engine.Result, player engine.Color) (TurnResponse, *apiError) {
	resp := ResultToResponse(res, player)
	if res.Reason != nil {
		return resp, &apiError{status: http.StatusUnprocessableEntity, code: "MOVE_REJECTED", msg: resp.Reason, body: resp}
	}
	return resp, nil
}

// ============================================================================
// Operations shared by HTTP and WebSocket
// ============================================================================

func (h *Handlers) decode(req PositionRequest) (PositionResponse, *apiError) {
	pos, e := parsePosition(req.Position)
	if e != nil {
		return PositionResponse{}, e
	}
	return PositionToResponse(pos), nil
}

func (h *Handlers) fibsBoard(req FIBSBoardRequest) (PositionResponse, *apiError) {
	fb, err := external.ParseFIBSBoard(req.Board)
	if err != nil {
		return PositionResponse{}, badRequest("INVALID_FIBS_BOARD", err)
	}
	pos, err := fb.ToPosition()
	if err != nil {
		return PositionResponse{}, badRequest("INVALID_FIBS_BOARD", err)
	}
	return PositionToResponse(pos), nil
}

func (h *Handlers) moves(req MovesRequest) (MovesResponse, *apiError) {
	pos, e := parsePosition(req.Position)
	if e != nil {
		return MovesResponse{}, e
	}
	res, e := startTurn(pos, req.Turn)
	if e != nil {
		return MovesResponse{}, e
	}
	moves := engine.GenerateMoves(res.Position.Board, res.Turn)
	if moves == nil {
		moves = []engine.Move{}
	}
	return MovesResponse{Position: res.Position.String(), Turn: res.Turn, Moves: moves}, nil
}

func (h *Handlers) plays(req PlaysRequest) (PlaysResponse, *apiError) {
	pos, e := parsePosition(req.Position)
	if e != nil {
		return PlaysResponse{}, e
	}
	d := req.Dice
	if d == [2]int{} {
		d = [2]int{int(pos.Turn.Dice[0]), int(pos.Turn.Dice[1])}
	}
	if d[0] < 1 || d[0] > 6 || d[1] < 1 || d[1] > 6 {
		return PlaysResponse{}, badRequest("INVALID_DICE", engine.ErrBadDice)
	}
	player := pos.Turn.Player
	if !player.Valid() {
		return PlaysResponse{}, badRequest("INVALID_POSITION", engine.ErrNotYourTurn)
	}

	pl := engine.GeneratePlays(pos.Board, player, d[0], d[1])
	resp := PlaysResponse{
		Position: pos.String(),
		Dice:     d,
		Plays:    make([]PlayInfo, len(pl.Plays)),
		MaxDice:  pl.MaxDice,
		MaxPips:  pl.MaxPips,
	}
	for i, p := range pl.Plays {
		resp.Plays[i] = PlayInfo{
			Notation: engine.FormatMoves(engine.NormalizeSequence(p), player),
			Moves:    p,
			Result:   engine.EncodeBoard(pl.Results[i]),
		}
	}
	return resp, nil
}

func (h *Handlers) validate(req ValidateRequest) (ValidateResponse, *apiError) {
	pos, e := parsePosition(req.Position)
	if e != nil {
		return ValidateResponse{}, e
	}
	var mode engine.Mode
	switch req.Mode {
	case "", "rules":
		mode = engine.RuleEnforced
	case "unrestricted":
		mode = engine.Unrestricted
	default:
		return ValidateResponse{}, badRequest("INVALID_MODE", fmt.Errorf("unknown mode %q", req.Mode))
	}

	p := engine.Proposal{From: req.From, To: req.To, Count: req.Count, Owner: req.Owner}
	if p.Count == 0 {
		p.Count = 1
	}
	if p.Owner == engine.None {
		p.Owner = pos.Turn.Player
		if req.Turn != nil {
			p.Owner = req.Turn.Player
		}
	}
	die, err := engine.Validate(pos, req.Turn, p, mode)
	if err != nil {
		return ValidateResponse{Valid: false, Reason: err.Error()}, nil
	}
	return ValidateResponse{Valid: true, Die: die}, nil
}

func (h *Handlers) roll(req RollRequest) (TurnResponse, *apiError) {
	pos, e := parsePosition(req.Position)
	if e != nil {
		return TurnResponse{}, e
	}
	res, err := engine.Roll(pos, req.Dice[0], req.Dice[1])
	if err != nil {
		code := "ROLL_REJECTED"
		if errors.Is(err, engine.ErrBadDice) {
			code = "INVALID_DICE"
		}
		return TurnResponse{}, &apiError{status: http.StatusUnprocessableEntity, code: code, msg: err.Error()}
	}
	return ResultToResponse(res, res.Position.Turn.Player), nil
}

func (h *Handlers) step(req StepRequest) (TurnResponse, *apiError) {
	pos, e := parsePosition(req.Position)
	if e != nil {
		return TurnResponse{}, e
	}
	cur, e := startTurn(pos, req.Turn)
	if e != nil || cur.Ended {
		return ResultToResponse(cur, pos.Turn.Player), e
	}
	count := req.Count
	if count == 0 {
		count = 1
	}
	res := engine.Step(cur.Position, cur.Turn, req.From, req.To, count)
	return turnAnswer(res, cur.Turn.Player)
}

func (h *Handlers) play(req PlayRequest) (TurnResponse, *apiError) {
	pos, e := parsePosition(req.Position)
	if e != nil {
		return TurnResponse{}, e
	}
	cur, e := startTurn(pos, req.Turn)
	if e != nil || cur.Ended {
		return ResultToResponse(cur, pos.Turn.Player), e
	}
	var res engine.Result
	if req.Notation != "" {
		res = engine.PlayNotation(cur.Position, cur.Turn, req.Notation)
	} else {
		res = engine.PlayMoves(cur.Position, cur.Turn, req.Moves)
	}
	return turnAnswer(res, cur.Turn.Player)
}

func (h *Handlers) normalize(req NormalizeRequest) (NormalizeResponse, *apiError) {
	if !req.Player.Valid() {
		return NormalizeResponse{}, badRequest("INVALID_PLAYER", engine.ErrNoColor)
	}
	moves := engine.NormalizeSequence(req.Moves)
	if moves == nil {
		moves = []engine.Move{}
	}
	return NormalizeResponse{Moves: moves, Notation: engine.FormatMoves(moves, req.Player)}, nil
}

// suggest asks the suggestion service and vets the answer. It runs in the
// slow lane.
func (h *Handlers) suggest(ctx context.Context, req SuggestRequest) (SuggestResponse, *apiError) {
	if h.suggester == nil {
		return SuggestResponse{}, &apiError{status: http.StatusServiceUnavailable, code: "NO_SUGGESTER", msg: "no suggestion service configured"}
	}
	pos, e := parsePosition(req.Position)
	if e != nil {
		return SuggestResponse{}, e
	}
	cur, e := startTurn(pos, req.Turn)
	if e != nil {
		return SuggestResponse{}, e
	}
	if cur.Ended {
		return SuggestResponse{}, &apiError{status: http.StatusUnprocessableEntity, code: "NO_TURN", msg: "no legal moves"}
	}

	if h.pool != nil {
		if err := h.pool.AcquireSlow(ctx); err != nil {
			return SuggestResponse{}, errBusy
		}
		defer h.pool.ReleaseSlow()
	}

	cand, err := h.suggester.Suggest(ctx, cur.Position)
	if err != nil {
		h.logger.Warn("suggestion failed", zap.String("position", cur.Position.String()), zap.Error(err))
		return SuggestResponse{}, &apiError{status: http.StatusBadGateway, code: "SUGGEST_FAILED", msg: err.Error()}
	}
	v, err := suggest.Vet(cur.Position, cur.Turn, cand)
	if err != nil {
		h.logger.Info("suggestion rejected", zap.String("position", cur.Position.String()), zap.Error(err))
		return SuggestResponse{}, &apiError{status: http.StatusUnprocessableEntity, code: "SUGGESTION_REJECTED", msg: err.Error()}
	}
	return SuggestResponse{
		Notation:    v.Notation,
		UsesMaxDice: v.UsesMaxDice,
		Result:      ResultToResponse(v.Result, cur.Turn.Player),
	}, nil
}

// ============================================================================
// HTTP handlers
// ============================================================================

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Suggest: h.suggester != nil,
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// Start handles GET /api/position/start
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PositionToResponse(engine.StartingPosition()))
}

// Decode handles POST /api/position
func (h *Handlers) Decode(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.decode) }

// FIBSBoard handles POST /api/position/fibs
func (h *Handlers) FIBSBoard(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.fibsBoard) }

// Moves handles POST /api/moves
func (h *Handlers) Moves(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.moves) }

// Plays handles POST /api/plays
func (h *Handlers) Plays(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.plays) }

// Validate handles POST /api/validate
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.validate) }

// Roll handles POST /api/turn/roll
func (h *Handlers) Roll(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.roll) }

// Step handles POST /api/turn/move
func (h *Handlers) Step(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.step) }

// Play handles POST /api/turn/play
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.play) }

// Normalize handles POST /api/normalize
func (h *Handlers) Normalize(w http.ResponseWriter, r *http.Request) { serve(h, w, r, h.normalize) }

// Suggest handles POST /api/suggest
func (h *Handlers) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &apiError{status: http.StatusBadRequest, code: "INVALID_JSON", msg: "invalid JSON"})
		return
	}
	resp, e := h.suggest(r.Context(), req)
	if e != nil {
		writeError(w, e)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
