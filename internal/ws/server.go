// internal/ws/server.go
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kburley7/cribbage/internal/auth"
	"github.com/kburley7/cribbage/internal/game"
	"github.com/kburley7/cribbage/internal/models"
)

const writeTimeout = 5 * time.Second

// clientMessage is the envelope for everything a client sends.
type clientMessage struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Token     string `json:"token,omitempty"` // seat-reclaim token on rejoin
	Indices   []int  `json:"indices,omitempty"`
	CardIndex *int   `json:"card_index,omitempty"`
}

// client is one connected websocket with serialized writes.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(ctx context.Context, v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, c.conn, v)
}

// Server exposes a single table over websockets and owns the
// connection registry the table's broadcast callbacks fan out to.
type Server struct {
	Table  *game.Table
	Log    *logrus.Logger
	Secret []byte // signs seat-reclaim tokens

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

// NewServer wires a table's broadcast callbacks to the registry.
func NewServer(table *game.Table, log *logrus.Logger, secret []byte) *Server {
	s := &Server{
		Table:   table,
		Log:     log,
		Secret:  secret,
		clients: make(map[uuid.UUID]*client),
	}
	table.BroadcastFn = s.broadcast
	table.BroadcastToPlayerFn = s.broadcastToPlayer
	return s
}

// broadcast sends an event to every registered connection.
func (s *Server) broadcast(ev game.GameEvent) {
	s.mu.Lock()
	targets := make(map[uuid.UUID]*client, len(s.clients))
	for id, c := range s.clients {
		targets[id] = c
	}
	s.mu.Unlock()

	for id, c := range targets {
		if err := c.write(context.Background(), ev); err != nil {
			s.Log.WithError(err).WithFields(logrus.Fields{
				"player": id, "event": ev.Type,
			}).Warn("broadcast write failed")
		}
	}
}

// broadcastToPlayer sends an event to one player's connection.
func (s *Server) broadcastToPlayer(playerID uuid.UUID, ev game.GameEvent) {
	s.mu.Lock()
	c, ok := s.clients[playerID]
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := c.write(context.Background(), ev); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"player": playerID, "event": ev.Type,
		}).Warn("private write failed")
	}
}

func (s *Server) register(playerID uuid.UUID, c *client) {
	s.mu.Lock()
	s.clients[playerID] = c
	s.mu.Unlock()
}

func (s *Server) unregister(playerID uuid.UUID, c *client) {
	s.mu.Lock()
	// Only drop the registration if it still points at this connection;
	// a reconnect may already have replaced it.
	if cur, ok := s.clients[playerID]; ok && cur == c {
		delete(s.clients, playerID)
	}
	s.mu.Unlock()
}

// ServeHTTP upgrades the request and runs the connection's session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Origin policy is the proxy's job.
	})
	if err != nil {
		s.Log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	ctx := r.Context()
	c := &client{conn: conn}

	// The first message must be a join.
	var join clientMessage
	if err := wsjson.Read(ctx, conn, &join); err != nil {
		s.Log.WithError(err).Debug("connection closed before join")
		return
	}
	if join.Type != "join" {
		conn.Close(websocket.StatusPolicyViolation, "expected join message")
		return
	}

	playerID, seat, token, err := s.joinTable(ctx, c, join)
	if err != nil {
		s.Log.WithError(err).Info("join refused")
		_ = c.write(ctx, map[string]interface{}{
			"type":    "command_rejected",
			"payload": map[string]interface{}{"action": "join", "message": err.Error()},
		})
		conn.Close(websocket.StatusPolicyViolation, "join refused")
		return
	}

	log := s.Log.WithFields(logrus.Fields{"player": playerID, "seat": seat})
	log.Info("player joined")

	defer func() {
		s.unregister(playerID, c)
		s.Table.HandleDisconnect(playerID)
		s.broadcast(game.GameEvent{
			Type:    "player_disconnected",
			Payload: map[string]interface{}{"seat": int(seat)},
		})
		log.Info("player disconnected")
	}()

	_ = c.write(ctx, map[string]interface{}{
		"type": "welcome",
		"payload": map[string]interface{}{
			"player_id": playerID.String(),
			"seat":      int(seat),
			"token":     token,
		},
	})
	s.broadcast(game.GameEvent{
		Type:    "player_joined",
		Payload: map[string]interface{}{"seat": int(seat), "name": join.Name},
	})

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		s.dispatch(ctx, c, playerID, seat, msg)
	}
}

// joinTable resolves the player identity (fresh, or reclaimed via
// token) and seats them.
func (s *Server) joinTable(ctx context.Context, c *client, join clientMessage) (uuid.UUID, uint8, string, error) {
	playerID := uuid.New()
	if join.Token != "" {
		claims, err := auth.ParseSeatToken(s.Secret, join.Token)
		if err == nil && claims.GameID == s.Table.ID {
			playerID = claims.PlayerID
		} else if err != nil {
			s.Log.WithError(err).Debug("ignoring invalid seat token")
		}
	}

	name := join.Name
	if name == "" {
		name = "anonymous"
	}
	player := &models.Player{
		ID:   playerID,
		User: &models.User{ID: playerID, Username: name},
		Conn: c.conn,
	}

	// Register before seating so reconnect sync state has a live
	// connection to land on.
	s.register(playerID, c)
	seat, err := s.Table.AddPlayer(player)
	if err != nil {
		s.unregister(playerID, c)
		return uuid.Nil, 0, "", err
	}

	token, err := auth.CreateSeatToken(s.Secret, s.Table.ID, playerID, seat)
	if err != nil {
		// The seat works without a reclaim token; log and continue.
		s.Log.WithError(err).Error("seat token signing failed")
		token = ""
	}
	return playerID, seat, token, nil
}

// dispatch maps a wire message onto a table command.
func (s *Server) dispatch(ctx context.Context, c *client, playerID uuid.UUID, seat uint8, msg clientMessage) {
	switch msg.Type {
	case "start":
		if err := s.Table.Start(); err != nil {
			_ = c.write(ctx, game.GameEvent{
				Type:    game.EventRejected,
				Payload: map[string]interface{}{"action": "start", "message": err.Error()},
			})
		}
	case "discard":
		indices := make([]interface{}, len(msg.Indices))
		for i, v := range msg.Indices {
			indices[i] = float64(v)
		}
		s.Table.HandlePlayerAction(playerID, models.GameAction{
			ActionType: "discard",
			Payload:    map[string]interface{}{"indices": indices},
		})
	case "play":
		payload := map[string]interface{}{}
		if msg.CardIndex != nil {
			payload["card_index"] = float64(*msg.CardIndex)
		}
		s.Table.HandlePlayerAction(playerID, models.GameAction{
			ActionType: "play",
			Payload:    payload,
		})
	case "go":
		s.Table.HandlePlayerAction(playerID, models.GameAction{ActionType: "go"})
	default:
		s.Log.WithFields(logrus.Fields{"player": playerID, "seat": seat, "type": msg.Type}).
			Debug("unknown message type")
		_ = c.write(ctx, game.GameEvent{
			Type:    game.EventRejected,
			Payload: map[string]interface{}{"action": msg.Type, "message": "unknown message type"},
		})
	}
}
