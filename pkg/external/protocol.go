// Package external implements the line-oriented TCP protocol and FIBS
// board import.
//
// Protocol overview:
//   - Server listens on a TCP port
//   - Each connection is a session holding one position and, while a roll is
//     being played, its turn state
//   - Commands set up positions (position, fibs, start), roll dice, list and
//     play moves, and ask the suggestion service for a hint
//   - Moves are written in the mover's own frame: "13/8 6/5*"
package external

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/obslog"
	"github.com/yourusername/bgrules/pkg/engine"
	"github.com/yourusername/bgrules/pkg/suggest"
)

// Server implements the session protocol server.
type Server struct {
	listener  net.Listener
	mu        sync.Mutex
	running   bool
	options   ServerOptions
	logger    *zap.Logger
	suggester suggest.Suggester
	wg        sync.WaitGroup
}

// ServerOptions configures the protocol server.
type ServerOptions struct {
	Port           int           // TCP port to listen on, 0 for any
	PromptEnabled  bool          // Send prompts after responses
	SuggestTimeout time.Duration // Bound on a hint request
	// Dice rolls dice for "roll" without arguments. Nil uses math/rand.
	Dice func() (int, int)
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Port:           1234,
		PromptEnabled:  true,
		SuggestTimeout: 5 * time.Second,
	}
}

// NewServer creates a new protocol server. s may be nil, which disables
// the hint command.
func NewServer(opts ServerOptions, s suggest.Suggester, logger *zap.Logger) *Server {
	if logger == nil {
		logger = obslog.L()
	}
	if opts.Dice == nil {
		opts.Dice = randomDice
	}
	return &Server{options: opts, suggester: s, logger: logger}
}

func randomDice() (int, int) { return rand.Intn(6) + 1, rand.Intn(6) + 1 }

// Start begins listening for connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf(":%d", s.options.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.running = true
	s.logger.Info("protocol server listening", zap.String("addr", listener.Addr().String()))

	go s.acceptLoop()

	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the server and waits for open sessions to finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	err := s.listener.Close()
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// Run starts the server and stops it when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return // Server stopped
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection handles a single client connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	sess := s.newSession()
	log := s.logger.With(zap.String("session", sess.id), zap.String("remote", conn.RemoteAddr().String()))
	log.Info("session opened")
	defer log.Info("session closed")

	// Unblock the reader when the server stops.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(200 * time.Millisecond):
				s.mu.Lock()
				running := s.running
				s.mu.Unlock()
				if !running {
					_ = conn.SetReadDeadline(time.Now())
					return
				}
			}
		}
	}()

	reader := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	prompt := func() {
		if s.options.PromptEnabled {
			w.WriteString("> ")
		}
		w.Flush()
	}

	prompt()
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		response := sess.processCommand(line)
		log.Debug("command", zap.String("line", line), zap.String("position", sess.pos.String()))
		w.WriteString(response)

		// Check for exit command
		if cmd := strings.ToLower(line); cmd == "exit" || cmd == "quit" {
			w.Flush()
			return
		}
		prompt()
	}
}

// session is the per-connection game state.
type session struct {
	id     string
	pos    engine.Position
	turn   *engine.TurnState
	server *Server
}

func (s *Server) newSession() *session {
	return &session{id: uuid.NewString(), pos: engine.StartingPosition(), server: s}
}

// processCommand processes a single command and returns the response.
func (ss *session) processCommand(cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "Error: empty command\n"
	}

	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(cmd[len(parts[0]):])

	switch command {
	case "version":
		return "bgrules session protocol 1.0\n"

	case "help":
		return helpResponse

	case "exit", "quit":
		return "Goodbye\n"

	case "start", "new":
		ss.setPosition(engine.StartingPosition())
		return ss.show()

	case "position", "xgid":
		return ss.handlePosition(rest)

	case "fibs", "fibsboard":
		return ss.handleFIBS(rest)

	case "roll":
		return ss.handleRoll(parts[1:])

	case "moves":
		return ss.handleMoves()

	case "plays":
		return ss.handlePlays()

	case "move", "m":
		return ss.handleMove(rest)

	case "show":
		return ss.show()

	case "hint":
		return ss.handleHint()

	default:
		if strings.HasPrefix(cmd, "board:") {
			return ss.handleFIBS(cmd)
		}
		return fmt.Sprintf("Error: unknown command '%s'\n", command)
	}
}

const helpResponse = `Available commands:
  version           - Show version information
  help              - Show this help
  start             - Set up the starting position
  position <xgid>   - Set the position from a position string
  fibs <board:...>  - Set the position from a FIBS board
  roll [d1 d2]      - Roll the dice (random without arguments)
  moves             - List single-die moves for the remaining dice
  plays             - List complete plays for the roll
  move <moves>      - Play moves, e.g. "move 13/8 6/5*"
  hint              - Ask the suggestion service for a play
  show              - Show the position
  exit              - Close connection
`

// setPosition replaces the position. A position with dice starts its turn.
func (ss *session) setPosition(pos engine.Position) {
	ss.pos, ss.turn = pos, nil
	if pos.Turn.Player.Valid() && pos.Turn.Rolled() {
		if res, err := engine.Begin(pos); err == nil {
			ss.apply(res)
		}
	}
}

func (ss *session) apply(res engine.Result) {
	ss.pos, ss.turn = res.Position, res.Turn
}

func (ss *session) handlePosition(arg string) string {
	if arg == "" {
		return "Error: no position specified\n"
	}
	pos, err := engine.Decode(arg)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	ss.setPosition(pos)
	return ss.show()
}

func (ss *session) handleFIBS(arg string) string {
	fb, err := ParseFIBSBoard(arg)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	pos, err := fb.ToPosition()
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	ss.setPosition(pos)
	return ss.show()
}

func (ss *session) handleRoll(args []string) string {
	var d1, d2 int
	switch len(args) {
	case 0:
		d1, d2 = ss.server.options.Dice()
	case 1:
		if len(args[0]) != 2 {
			return "Error: roll takes two dice\n"
		}
		d1, d2 = int(args[0][0]-'0'), int(args[0][1]-'0')
	default:
		var err1, err2 error
		d1, err1 = strconv.Atoi(args[0])
		d2, err2 = strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return "Error: dice must be numbers\n"
		}
	}

	res, err := engine.Roll(ss.pos, d1, d2)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	player := res.Position.Turn.Player
	if res.Ended {
		player = res.Position.Turn.Player.Opponent()
	}
	ss.apply(res)

	out := fmt.Sprintf("%s rolls %d-%d\n", player, d1, d2)
	if res.NoLegalMoves {
		out += "cannot move\n"
	}
	return out + ss.show()
}

func (ss *session) handleMoves() string {
	if ss.turn == nil {
		return "Error: no dice rolled\n"
	}
	moves := engine.GenerateMoves(ss.pos.Board, ss.turn)
	var sb strings.Builder
	for _, m := range moves {
		fmt.Fprintf(&sb, "%s (%d)\n", engine.FormatMoves([]engine.Move{m}, ss.turn.Player), m.Die)
	}
	return sb.String()
}

func (ss *session) handlePlays() string {
	if ss.turn == nil {
		return "Error: no dice rolled\n"
	}
	if len(ss.turn.Used) > 0 {
		return "Error: plays are listed before the first move\n"
	}
	pl := engine.GeneratePlays(ss.pos.Board, ss.turn.Player, ss.turn.Dice[0], ss.turn.Dice[1])
	if len(pl.Plays) == 0 {
		return "cannot move\n"
	}
	var sb strings.Builder
	for i, p := range pl.Plays {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, engine.FormatMoves(engine.NormalizeSequence(p), ss.turn.Player))
	}
	return sb.String()
}

func (ss *session) handleMove(arg string) string {
	if ss.turn == nil {
		return "Error: no dice rolled\n"
	}
	if arg == "" {
		return "Error: no moves specified\n"
	}
	player := ss.turn.Player
	res := engine.PlayNotation(ss.pos, ss.turn, arg)
	if !res.Applied {
		return fmt.Sprintf("Error: %v\n", res.Reason)
	}
	ss.apply(res)
	return moveSummary(res, player) + ss.show()
}

func moveSummary(res engine.Result, player engine.Color) string {
	out := fmt.Sprintf("%s plays %s\n", player, engine.FormatMoves(engine.NormalizeSequence(res.Moves), player))
	out += fmt.Sprintf("fibs: move %s\n", FormatMoves(res.Moves))
	switch {
	case res.Winner != engine.None:
		out += fmt.Sprintf("%s wins\n", res.Winner)
	case res.NoLegalMoves:
		out += "no further moves\n"
	}
	return out
}

func (ss *session) handleHint() string {
	if ss.server.suggester == nil {
		return "Error: no suggestion service configured\n"
	}
	if ss.turn == nil {
		return "Error: no dice rolled\n"
	}
	ctx, cancel := context.WithTimeout(context.Background(), ss.server.options.SuggestTimeout)
	defer cancel()

	cand, err := ss.server.suggester.Suggest(ctx, ss.pos)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	v, err := suggest.Vet(ss.pos, ss.turn, cand)
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	return fmt.Sprintf("hint: %s\n", v.Notation)
}

// show returns the position string, the gnubg id and the turn.
func (ss *session) show() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", ss.pos.XGID())
	fmt.Fprintf(&sb, "gnubg: %s\n", ss.pos.GnubgID())
	switch w := engine.Winner(ss.pos.Board); {
	case w != engine.None:
		fmt.Fprintf(&sb, "%s has won\n", w)
	case ss.turn != nil:
		fmt.Fprintf(&sb, "%s to play %v, left %v\n", ss.turn.Player, ss.turn.Dice, ss.turn.Available())
	case ss.pos.Turn.Player == engine.Open:
		sb.WriteString("opening roll\n")
	default:
		fmt.Fprintf(&sb, "%s to roll\n", ss.pos.Turn.Player)
	}
	return sb.String()
}
