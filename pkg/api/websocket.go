package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is a generic WebSocket message. Type names an operation and
// Payload holds the same body as the matching HTTP request.
type WSMessage struct {
	Type    string          `json:"type"`    // "position", "fibs", "moves", "plays", "validate", "roll", "move", "play", "normalize", "suggest", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string `json:"type"`              // "hello", "result", "error", "pong"
	ID      string `json:"id,omitempty"`      // Request ID
	Payload any    `json:"payload,omitempty"` // Response data
	Error   string `json:"error,omitempty"`   // Error message if any
	Code    string `json:"code,omitempty"`    // Error code, as in ErrorResponse
}

// WSHello is sent once when a connection opens.
type WSHello struct {
	Session string `json:"session"`
	Version string `json:"version"`
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	id       string
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
	ctx      context.Context
	logger   *zap.Logger
}

// WebSocket handles WebSocket connections. Every message is answered
// independently; the connection holds no game state.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	id := uuid.NewString()
	client := &WSClient{
		id:       id,
		conn:     conn,
		handlers: h,
		sendChan: make(chan WSResponse, 256),
		ctx:      r.Context(),
		logger:   h.logger.With(zap.String("session", id)),
	}
	client.logger.Info("websocket opened", zap.String("remote", r.RemoteAddr))
	client.sendChan <- WSResponse{Type: "hello", Payload: WSHello{Session: id, Version: h.version}}
	go client.writePump()
	client.readPump()
	client.logger.Info("websocket closed")
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

// wsOp decodes the payload into Req and runs op in the fast lane.
func wsOp[Req, Resp any](c *WSClient, msg WSMessage, op func(Req) (Resp, *apiError)) {
	var req Req
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload", Code: "INVALID_JSON"}
		return
	}
	resp, e := runFast(c.ctx, c.handlers, func() (Resp, *apiError) { return op(req) })
	c.reply(msg, resp, e)
}

func (c *WSClient) reply(msg WSMessage, resp any, e *apiError) {
	if e != nil {
		out := WSResponse{Type: "error", ID: msg.ID, Error: e.msg, Code: e.code}
		if e.body != nil {
			out.Payload = e.body
		}
		c.sendChan <- out
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	h := c.handlers
	c.logger.Debug("websocket message", zap.String("type", msg.Type), zap.String("id", msg.ID))
	switch msg.Type {
	case "position":
		wsOp(c, msg, h.decode)
	case "fibs":
		wsOp(c, msg, h.fibsBoard)
	case "moves":
		wsOp(c, msg, h.moves)
	case "plays":
		wsOp(c, msg, h.plays)
	case "validate":
		wsOp(c, msg, h.validate)
	case "roll":
		wsOp(c, msg, h.roll)
	case "move":
		wsOp(c, msg, h.step)
	case "play":
		wsOp(c, msg, h.play)
	case "normalize":
		wsOp(c, msg, h.normalize)
	case "suggest":
		var req SuggestRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload", Code: "INVALID_JSON"}
			return
		}
		resp, e := h.suggest(c.ctx, req)
		c.reply(msg, resp, e)
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type", Code: "UNKNOWN_TYPE"}
	}
}
