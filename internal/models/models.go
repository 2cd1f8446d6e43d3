// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User carries the identity attached to a connection.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player is one seat at a table. Seat is the small wire-level id
// (0..3); ID is the stable identity a reconnecting client presents a
// token for.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	Seat      uint8           `json:"seat"`
	User      *User           `json:"user,omitempty"`
	Conn      *websocket.Conn `json:"-"`
	Connected bool            `json:"connected"`
}

// GameAction is a single player command as received off the wire.
type GameAction struct {
	ActionType string                 `json:"action"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
