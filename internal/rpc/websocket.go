package rpc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsMaxMessageSize = 512 * 1024
)

// WebSocketServer upgrades HTTP connections and serves the same method set
// as the HTTP server, plus subscribe/unsubscribe for event streams.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	manager  *SubscriptionManager
	registry *MethodRegistry
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[string]*wsConn
}

type wsConn struct {
	sub    *Connection
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// NewWebSocketServer creates a WebSocket server dispatching commands through
// the given registry and routing events through the given manager.
func NewWebSocketServer(registry *MethodRegistry, manager *SubscriptionManager, logger *slog.Logger) *WebSocketServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		manager:  manager,
		registry: registry,
		logger:   logger.With("component", "websocket"),
		conns:    make(map[string]*wsConn),
	}
}

// wsCommand is the wire form of a WebSocket request:
// {"command": "name", "id": ..., ...params at top level}.
type wsCommand struct {
	Command string `json:"command"`
	ID      any    `json:"id,omitempty"`
}

// wsResponse is the wire form of a WebSocket reply.
type wsResponse struct {
	Type   string `json:"type"`
	ID     any    `json:"id,omitempty"`
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// ServeHTTP upgrades the connection and starts the read and write pumps.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &wsConn{
		sub: &Connection{
			ID:       newConnectionID(),
			Streams:  make(map[string]bool),
			Accounts: make(map[string]bool),
			Send:     make(chan []byte, 256),
		},
		conn:   conn,
		cancel: cancel,
	}

	ws.mu.Lock()
	ws.conns[c.sub.ID] = c
	ws.mu.Unlock()
	ws.manager.Add(c.sub)

	go ws.writePump(ctx, c)
	go ws.readPump(ctx, c)
}

func (ws *WebSocketServer) close(c *wsConn) {
	ws.mu.Lock()
	_, open := ws.conns[c.sub.ID]
	delete(ws.conns, c.sub.ID)
	ws.mu.Unlock()
	if !open {
		return
	}
	ws.manager.Remove(c.sub.ID)
	c.cancel()
	c.conn.Close()
}

func (ws *WebSocketServer) readPump(ctx context.Context, c *wsConn) {
	defer ws.close(c)

	c.conn.SetReadLimit(wsMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Debug("websocket read failed", "err", err)
			}
			return
		}
		ws.handleMessage(ctx, c, message)
	}
}

func (ws *WebSocketServer) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		ws.close(c)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-c.sub.Send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// subscribeParams is shared by subscribe and unsubscribe.
type subscribeParams struct {
	Streams  []string `json:"streams"`
	Accounts []string `json:"accounts"`
}

func (ws *WebSocketServer) handleMessage(ctx context.Context, c *wsConn, message []byte) {
	var cmd wsCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		ws.reply(c, wsResponse{Type: "response", Status: "error", Error: ErrInvalidParams("invalid JSON")})
		return
	}
	if cmd.Command == "" {
		ws.reply(c, wsResponse{Type: "response", ID: cmd.ID, Status: "error", Error: ErrInvalidParams("missing command field")})
		return
	}

	switch cmd.Command {
	case "subscribe", "unsubscribe":
		var p subscribeParams
		if err := json.Unmarshal(message, &p); err != nil {
			ws.reply(c, wsResponse{Type: "response", ID: cmd.ID, Status: "error", Error: ErrInvalidParams("invalid params")})
			return
		}
		if cmd.Command == "subscribe" {
			c.sub.Subscribe(p.Streams, p.Accounts)
		} else {
			c.sub.Unsubscribe(p.Streams, p.Accounts)
		}
		ws.reply(c, wsResponse{Type: "response", ID: cmd.ID, Status: "success", Result: map[string]any{}})
		return
	}

	handler, ok := ws.registry.Get(cmd.Command)
	if !ok {
		ws.reply(c, wsResponse{Type: "response", ID: cmd.ID, Status: "error", Error: ErrUnknownMethod(cmd.Command)})
		return
	}

	result, rpcErr := handler.Handle(&Context{Context: ctx}, message)
	if rpcErr != nil {
		ws.reply(c, wsResponse{Type: "response", ID: cmd.ID, Status: "error", Error: rpcErr})
		return
	}
	ws.reply(c, wsResponse{Type: "response", ID: cmd.ID, Status: "success", Result: result})
}

func (ws *WebSocketServer) reply(c *wsConn, resp wsResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		ws.logger.Warn("failed to marshal websocket response", "err", err)
		return
	}
	select {
	case c.sub.Send <- data:
	default:
	}
}

func newConnectionID() string {
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
