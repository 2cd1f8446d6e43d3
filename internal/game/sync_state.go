// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	"github.com/kburley7/cribbage/engine"
)

// SyncState is the full per-player view of a table, sent privately on
// reconnect so a returning client can rebuild its UI from scratch. Only
// the receiving player's own hand is included.
type SyncState struct {
	Seat     int      `json:"seat"`
	Round    int      `json:"round"`
	Phase    string   `json:"phase"`
	Dealer   int      `json:"dealer"`
	Current  int      `json:"current"`
	Count    int      `json:"count"`
	Sequence []string `json:"sequence"`
	Starter  string   `json:"starter,omitempty"`
	Hand     []string `json:"hand"`
	Scores   []int    `json:"scores"`
	GameOver bool     `json:"gameOver"`
	Winner   int      `json:"winner"` // -1 while the game is open
}

// buildSyncState assembles the view for one seat.
// Assumes lock is held by caller.
func (t *Table) buildSyncState(seat uint8) SyncState {
	ps := &t.Engine.Players[seat]
	state := SyncState{
		Seat:     int(seat),
		Round:    t.Round,
		Phase:    t.Engine.Phase.String(),
		Dealer:   int(t.Engine.Dealer),
		Current:  int(t.Engine.Current),
		Count:    int(t.Engine.PegTotal),
		Sequence: cardStrings(t.Engine.PegSeq[:t.Engine.PegLen]),
		Hand:     cardStrings(ps.Hand[:ps.HandLen]),
		Scores:   t.Engine.Scores(),
		GameOver: t.GameOver,
		Winner:   int(t.Engine.Winner),
	}
	if t.Engine.Starter != engine.EmptyCard {
		state.Starter = t.Engine.Starter.String()
	}
	return state
}

// sendSyncState sends a player their full current view.
// Assumes lock is held by caller.
func (t *Table) sendSyncState(playerID uuid.UUID) {
	seat, ok := t.PlayerToSeat[playerID]
	if !ok {
		return
	}
	state := t.buildSyncState(seat)
	t.fireEventToPlayer(playerID, GameEvent{
		Type: EventPrivateSync,
		Seat: seatRef(seat),
		Payload: map[string]interface{}{
			"state": state,
		},
	})
}
