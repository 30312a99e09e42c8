package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/game"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message types on the session socket.
const (
	MsgView          = "view"
	MsgAnswer        = "answer"
	MsgReset         = "reset"
	MsgWeather       = "weather"
	MsgOpponentTimer = "opponent-timer"
	MsgError         = "error"
)

// ClientMessage is a command sent by the renderer.
type ClientMessage struct {
	Type    string `json:"type"`
	Answer  string `json:"answer,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
}

// ServerMessage is pushed to the renderer.
type ServerMessage struct {
	Type    string              `json:"type"`
	View    *game.View          `json:"view,omitempty"`
	Outcome *game.AnswerOutcome `json:"outcome,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// wsConn serializes writes to one socket.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// handleSessionWS streams every view change of a session and applies the
// commands the client sends back.
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	logger := s.logger.With(zap.String("session", m.ID()))
	logger.Info("websocket connected")

	views, unsubscribe := m.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.readCommands(conn, m, logger)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Info("websocket disconnected")
			return
		case v, ok := <-views:
			if !ok {
				_ = conn.send(ServerMessage{Type: MsgError, Error: "session closed"})
				return
			}
			if err := conn.send(ServerMessage{Type: MsgView, View: &v}); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}

func (s *Server) readCommands(conn *wsConn, m *game.Machine, logger *zap.Logger) {
	raw := conn.conn
	_ = raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = conn.send(ServerMessage{Type: MsgError, Error: "invalid message format"})
			continue
		}

		switch msg.Type {
		case MsgAnswer:
			out, accepted := m.AnswerQuestion(msg.Answer)
			if !accepted {
				_ = conn.send(ServerMessage{Type: MsgError, Error: "no question is waiting for an answer"})
				continue
			}
			_ = conn.send(ServerMessage{Type: MsgAnswer, Outcome: &out})
		case MsgReset:
			m.ResetGame()
		case MsgWeather:
			m.CycleWeather()
		case MsgOpponentTimer:
			if err := m.UpdateOpponentTimerDuration(msg.Seconds); err != nil {
				_ = conn.send(ServerMessage{Type: MsgError, Error: err.Error()})
			}
		default:
			_ = conn.send(ServerMessage{Type: MsgError, Error: "unknown message type " + msg.Type})
		}
	}
}
