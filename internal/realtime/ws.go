// Package realtime is the websocket delivery edge: it authenticates
// sessions, pipes participant commands into room actors and fans room
// envelopes back out.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/moxuan/werewolf-judge/internal/auth"
	"github.com/moxuan/werewolf-judge/internal/observability"
	"github.com/moxuan/werewolf-judge/internal/room"
	"github.com/moxuan/werewolf-judge/internal/types"
)

type WSMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type SubscribePayload struct {
	RoomCode string `json:"room_code"`
}

type CommandPayload struct {
	CommandID string          `json:"command_id"`
	RoomCode  string          `json:"room_code"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
}

type WSServer struct {
	upgrader websocket.Upgrader
	jwt      *auth.JWTManager
	roomMgr  *room.Manager
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewWSServer(jwt *auth.JWTManager, roomMgr *room.Manager, logger *zap.Logger, metrics *observability.Metrics, readBuf, writeBuf int) *WSServer {
	if readBuf <= 0 {
		readBuf = 4096
	}
	if writeBuf <= 0 {
		writeBuf = 4096
	}
	return &WSServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		jwt:     jwt,
		roomMgr: roomMgr,
		logger:  logger,
		metrics: metrics,
	}
}

func (ws *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := ws.jwt.Parse(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	sessionID := uuid.NewString()
	session := &Session{
		id:      sessionID,
		userID:  claims.UserID,
		conn:    conn,
		roomMgr: ws.roomMgr,
		logger:  ws.logger.With(zap.String("session_id", sessionID), zap.String("user_id", claims.UserID)),
		metrics: ws.metrics,
		send:    make(chan []byte, 64),
		limiter: NewTokenBucket(10, 2),
	}
	ws.metrics.ActiveConnections.Inc()
	go session.writePump()
	session.readPump()
	ws.metrics.ActiveConnections.Dec()
}

type Session struct {
	id      string
	userID  string
	conn    *websocket.Conn
	roomMgr *room.Manager
	logger  *zap.Logger
	metrics *observability.Metrics
	send    chan []byte
	subRoom string
	subID   string
	limiter *TokenBucket
	mu      sync.Mutex
}

func (s *Session) readPump() {
	defer func() {
		if s.subID != "" {
			if a, ok := s.roomMgr.Get(s.subRoom); ok {
				a.Unsubscribe(s.subID)
			}
		}
		s.conn.Close()
	}()
	s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			break
		}
		s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if !s.limiter.Allow() {
			s.sendError("", "rate_limited", "too many requests")
			continue
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError("", "bad_request", "invalid json")
			continue
		}
		s.handleMessage(msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case data, ok := <-s.send:
			if !ok {
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "ping":
		pongPayload := msg.Payload
		if len(pongPayload) == 0 {
			pongPayload = json.RawMessage("{}")
		}
		s.sendRaw(WSMessage{Type: "pong", RequestID: msg.RequestID, Payload: pongPayload})
	case "subscribe":
		var payload SubscribePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.sendError(msg.RequestID, "bad_request", "invalid subscribe payload")
			return
		}
		s.handleSubscribe(msg.RequestID, payload)
	case "command":
		var payload CommandPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.sendError(msg.RequestID, "bad_request", "invalid command payload")
			return
		}
		s.handleCommand(msg.RequestID, payload)
	default:
		s.sendError(msg.RequestID, "bad_request", "unknown message type")
	}
}

// handleSubscribe attaches the session to a room's fanout and replays a
// personalized snapshot, which is also the rejoin path after a dropped
// connection.
func (s *Session) handleSubscribe(reqID string, payload SubscribePayload) {
	ctx := context.Background()
	a, err := s.roomMgr.GetOrRecover(ctx, payload.RoomCode)
	if err != nil {
		s.sendError(reqID, "not_found", "cannot load room")
		return
	}
	if s.subID != "" && s.subRoom != payload.RoomCode {
		if prev, ok := s.roomMgr.Get(s.subRoom); ok {
			prev.Unsubscribe(s.subID)
		}
	}
	s.subRoom = payload.RoomCode
	s.subID = s.id
	a.Subscribe(s.subID, &room.Subscriber{
		UID: s.userID,
		Send: func(env types.Envelope) {
			b, _ := json.Marshal(WSMessage{Type: "event", Payload: types.MustMarshal(env)})
			select {
			case s.send <- b:
			default:
			}
		},
	})
	resp := a.Dispatch(types.CommandEnvelope{
		CommandID: uuid.NewString(),
		RoomCode:  payload.RoomCode,
		Type:      types.CmdHello,
		ActorUID:  s.userID,
	})
	if resp.Err != nil {
		s.logger.Warn("hello on subscribe failed", zap.Error(resp.Err))
	}
	s.sendRaw(WSMessage{Type: "subscribed", RequestID: reqID, Payload: json.RawMessage(`{"status":"ok"}`)})
}

func (s *Session) handleCommand(reqID string, payload CommandPayload) {
	commandID := payload.CommandID
	if commandID == "" {
		commandID = uuid.NewString()
	}
	cmd := types.CommandEnvelope{
		CommandID: commandID,
		RoomCode:  payload.RoomCode,
		Type:      payload.Type,
		ActorUID:  s.userID,
		Payload:   payload.Data,
	}
	resp := s.roomMgr.Dispatch(context.Background(), cmd)
	if resp.Err != nil {
		s.sendCommandResult(reqID, &types.CommandResult{CommandID: commandID, Status: "rejected", Reason: resp.Err.Error()})
		return
	}
	s.sendCommandResult(reqID, resp.Result)
}

func (s *Session) sendError(reqID, code, message string) {
	payload := map[string]string{"code": code, "message": message}
	b, _ := json.Marshal(WSMessage{Type: "error", RequestID: reqID, Payload: types.MustMarshal(payload)})
	s.send <- b
}

func (s *Session) sendCommandResult(reqID string, res *types.CommandResult) {
	b, _ := json.Marshal(WSMessage{Type: "command_result", RequestID: reqID, Payload: types.MustMarshal(res)})
	s.send <- b
}

func (s *Session) sendRaw(msg WSMessage) {
	b, _ := json.Marshal(msg)
	s.send <- b
}

type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

func NewTokenBucket(capacity, rate float64) *TokenBucket {
	return &TokenBucket{tokens: capacity, capacity: capacity, rate: rate, lastTime: time.Now()}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(tb.lastTime).Seconds()
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastTime = now
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}
