// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kburley7/cribbage/engine"
	"github.com/kburley7/cribbage/internal/cache"
	"github.com/kburley7/cribbage/internal/database"
	"github.com/kburley7/cribbage/internal/models"
)

// OnGameEndFunc is the callback executed when a game ends. It receives
// the table ID, the winning seat, and the final scores by seat.
type OnGameEndFunc func(tableID uuid.UUID, winner int, scores []int)

// GameEventType represents the type of a game event broadcast to clients.
type GameEventType string

// Public events go to every connected player; private events go only to
// the seat they concern.
const (
	EventRoundStarted    GameEventType = "round_started"     // Public: new round dealt, discard phase open.
	EventTurn            GameEventType = "turn"              // Public: whose pegging turn it is and the count.
	EventPlayed          GameEventType = "played"            // Public: a card entered the pegging sequence.
	EventGo              GameEventType = "go"                // Public: a seat passed (voluntary or forced).
	EventPeggingRoundEnd GameEventType = "pegging_round_end" // Public: sub-round ended, count reset.
	EventShowResults     GameEventType = "show_results"      // Public: show settlement, all hands revealed.
	EventScores          GameEventType = "scores"            // Public: score table, sent only when it changed.
	EventGameOver        GameEventType = "game_over"         // Public: winner and final scores.
	EventRejected        GameEventType = "command_rejected"  // Private: a command was refused.
	EventPrivateDeal     GameEventType = "private_deal"      // Private: your dealt hand.
	EventPrivateHand     GameEventType = "private_hand_update"
	EventPrivateSync     GameEventType = "private_sync_state"
)

// GameEvent is the standard structure for broadcasting game state
// changes and actions.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Seat    *int                   `json:"seat,omitempty"` // The seat the event concerns, if any.
	Payload map[string]interface{} `json:"payload,omitempty"`
}

func seatRef(seat uint8) *int {
	s := int(seat)
	return &s
}

// Table represents one cribbage game: the authoritative engine state
// plus the player roster and communication callbacks. All commands are
// serialized through Mu; the engine itself holds no locks.
type Table struct {
	ID uuid.UUID

	Players  []*models.Player // Seat order = slice order.
	NumSeats uint8            // Seats required before the game can start.

	// Engine integration — authoritative game state.
	Engine       engine.GameState
	PlayerToSeat map[uuid.UUID]uint8
	SeatToPlayer [engine.MaxPlayers]uuid.UUID

	Started  bool
	GameOver bool
	Round    int // Increments each round, starting at 1.

	lastScores  []int // Last broadcast score table, for diffing.
	actionIndex int   // Sequential index for the action history.
	lastSeen    map[uuid.UUID]time.Time

	Mu sync.Mutex

	// Communication callbacks.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
}

// NewTable creates a table waiting for numSeats players.
func NewTable(numSeats uint8) *Table {
	if numSeats < 2 {
		numSeats = 2
	}
	if numSeats > engine.MaxPlayers {
		numSeats = engine.MaxPlayers
	}
	id, _ := uuid.NewRandom()
	return &Table{
		ID:           id,
		NumSeats:     numSeats,
		PlayerToSeat: make(map[uuid.UUID]uint8),
		lastSeen:     make(map[uuid.UUID]time.Time),
	}
}

// AddPlayer seats a new player or marks a returning one as reconnected.
// Returns the player's seat.
func (t *Table) AddPlayer(p *models.Player) (uint8, error) {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	if seat, ok := t.PlayerToSeat[p.ID]; ok {
		// Returning player reclaiming their seat.
		pl := t.Players[seat]
		pl.Conn = p.Conn
		pl.Connected = true
		pl.User = p.User
		t.lastSeen[p.ID] = time.Now()
		log.Printf("Table %s: player %s reconnected to seat %d.", t.ID, p.ID, seat)
		t.logAction(int(seat), "player_reconnect", nil)
		t.sendSyncState(p.ID)
		return seat, nil
	}

	if t.Started {
		return 0, fmt.Errorf("game already in progress")
	}
	if len(t.Players) >= int(t.NumSeats) {
		return 0, fmt.Errorf("table is full")
	}

	seat := uint8(len(t.Players))
	p.Seat = seat
	p.Connected = true
	t.Players = append(t.Players, p)
	t.PlayerToSeat[p.ID] = seat
	t.SeatToPlayer[seat] = p.ID
	t.lastSeen[p.ID] = time.Now()
	log.Printf("Table %s: player %s seated at %d (%d/%d).", t.ID, p.ID, seat, len(t.Players), t.NumSeats)
	t.logAction(int(seat), "player_join", nil)
	return seat, nil
}

// IsFull reports whether every seat is taken.
func (t *Table) IsFull() bool {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return len(t.Players) == int(t.NumSeats)
}

// Start initializes the engine and deals the first round. Any seated
// player may start a full table.
func (t *Table) Start() error {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	if t.Started {
		return fmt.Errorf("game already started")
	}
	if len(t.Players) != int(t.NumSeats) {
		return fmt.Errorf("need %d players, have %d", t.NumSeats, len(t.Players))
	}

	seed := uint64(time.Now().UnixNano())
	t.Engine = engine.NewGame(seed, t.NumSeats)
	if err := t.Engine.BeginRound(0); err != nil {
		return fmt.Errorf("deal first round: %w", err)
	}
	t.Started = true
	t.Round = 1
	log.Printf("Table %s: started with %d players.", t.ID, t.NumSeats)
	t.logAction(-1, "game_start", nil)

	t.announceRound()
	t.broadcastScores()
	return nil
}

// HandlePlayerAction routes an incoming player command (discard, play,
// go). Rejections are sent only to the originating player and leave the
// table unchanged.
func (t *Table) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	if t.GameOver {
		t.reject(playerID, action.ActionType, engine.ErrGameAlreadyOver)
		return
	}
	seat, ok := t.PlayerToSeat[playerID]
	if !ok {
		log.Printf("Table %s: action %s from unseated player %s ignored.", t.ID, action.ActionType, playerID)
		return
	}
	player := t.Players[seat]
	if !player.Connected {
		log.Printf("Table %s: action %s from disconnected seat %d ignored.", t.ID, action.ActionType, seat)
		return
	}
	if !t.Started {
		t.reject(playerID, action.ActionType, engine.ErrGameNotStarted)
		return
	}
	t.lastSeen[playerID] = time.Now()

	switch action.ActionType {
	case "discard":
		t.handleDiscard(playerID, seat, action.Payload)
	case "play":
		t.handlePlay(playerID, seat, action.Payload)
	case "go":
		t.handleGo(playerID, seat)
	default:
		log.Printf("Table %s: unknown action type %q from seat %d.", t.ID, action.ActionType, seat)
		t.reject(playerID, action.ActionType, fmt.Errorf("unknown action type %q", action.ActionType))
	}
}

// handleDiscard applies a two-card crib discard.
// Assumes lock is held by caller.
func (t *Table) handleDiscard(playerID uuid.UUID, seat uint8, payload map[string]interface{}) {
	idxA, idxB, err := parseDiscardIndices(payload)
	if err != nil {
		t.reject(playerID, "discard", err)
		return
	}
	if err := t.Engine.CollectDiscard(seat, idxA, idxB); err != nil {
		t.reject(playerID, "discard", err)
		return
	}
	t.logAction(int(seat), "discard", map[string]interface{}{"indices": []uint8{idxA, idxB}})
	t.sendHandUpdate(playerID, seat)

	// The last discard reveals the starter and opens pegging. The lead
	// actor always has a legal play at count 0, so no forced-go pass is
	// needed here.
	if t.Engine.Phase == engine.PhasePlay {
		t.logAction(-1, "starter_revealed", map[string]interface{}{"starter": t.Engine.Starter.String()})
		t.broadcastTurn()
	}
}

// handlePlay applies a pegging play for the current actor.
// Assumes lock is held by caller.
func (t *Table) handlePlay(playerID uuid.UUID, seat uint8, payload map[string]interface{}) {
	idx, err := parseCardIndex(payload)
	if err != nil {
		t.reject(playerID, "play", err)
		return
	}
	card, points, err := t.Engine.PlayCard(seat, idx)
	if err != nil {
		t.reject(playerID, "play", err)
		return
	}

	t.logAction(int(seat), "play", map[string]interface{}{
		"card": card.String(), "points": points, "count": int(t.Engine.PegTotal),
	})
	t.fireEvent(GameEvent{
		Type: EventPlayed,
		Seat: seatRef(seat),
		Payload: map[string]interface{}{
			"card":     card.String(),
			"points":   points,
			"count":    int(t.Engine.PegTotal),
			"sequence": cardStrings(t.Engine.PegSeq[:t.Engine.PegLen]),
		},
	})
	t.sendHandUpdate(playerID, seat)
	t.broadcastScores()

	if t.afterPeggingStep() {
		return
	}
	t.resolveForcedGoes()
	if t.afterPeggingStep() {
		return
	}
	t.broadcastTurn()
}

// handleGo applies a voluntary pass. A pass while holding a playable
// card is refused.
// Assumes lock is held by caller.
func (t *Table) handleGo(playerID uuid.UUID, seat uint8) {
	if t.Engine.Phase == engine.PhasePlay && t.Engine.HasPlayableCard(seat) {
		t.reject(playerID, "go", fmt.Errorf("%w: you hold a playable card", engine.ErrIllegalPlay))
		return
	}
	res, err := t.Engine.Go(seat)
	if err != nil {
		t.reject(playerID, "go", err)
		return
	}
	t.logAction(int(seat), "go", nil)
	t.fireEvent(GameEvent{
		Type:    EventGo,
		Seat:    seatRef(seat),
		Payload: map[string]interface{}{"reason": "voluntary"},
	})
	t.handleGoResult(res)

	if t.afterPeggingStep() {
		return
	}
	t.resolveForcedGoes()
	if t.afterPeggingStep() {
		return
	}
	t.broadcastTurn()
}

// handleGoResult broadcasts the sub-round boundary produced by a pass.
// Assumes lock is held by caller.
func (t *Table) handleGoResult(res engine.GoResult) {
	if !res.SubRoundEnded {
		return
	}
	payload := map[string]interface{}{"points": res.Points}
	if res.Scorer >= 0 {
		payload["scorer"] = int(res.Scorer)
	}
	t.fireEvent(GameEvent{Type: EventPeggingRoundEnd, Payload: payload})
	t.logAction(-1, string(EventPeggingRoundEnd), payload)
	t.broadcastScores()
}

// resolveForcedGoes passes on behalf of every actor that has no legal
// play, synchronously, under the same lock as the command that created
// the situation. A player is never asked to act on a turn they cannot
// take.
// Assumes lock is held by caller.
func (t *Table) resolveForcedGoes() {
	for t.Started && !t.GameOver && !t.Engine.IsGameOver() && t.Engine.Phase == engine.PhasePlay {
		cur := t.Engine.Current
		if t.Engine.HasPlayableCard(cur) {
			return
		}
		res, err := t.Engine.Go(cur)
		if err != nil {
			log.Printf("Table %s: forced go for seat %d failed: %v", t.ID, cur, err)
			return
		}
		t.logAction(int(cur), "go_forced", nil)
		t.fireEvent(GameEvent{
			Type:    EventGo,
			Seat:    seatRef(cur),
			Payload: map[string]interface{}{"reason": "no_playable_card"},
		})
		t.handleGoResult(res)
	}
}

// afterPeggingStep handles the two pegging exits: game over and the
// show phase. Returns true when the round (or game) moved on and no
// turn event should follow.
// Assumes lock is held by caller.
func (t *Table) afterPeggingStep() bool {
	if t.Engine.IsGameOver() {
		t.endGame()
		return true
	}
	if t.Engine.Phase == engine.PhaseShow {
		t.settleShow()
		return true
	}
	return false
}

// settleShow reveals all hands, settles the show in order, and either
// ends the game or rotates the deal into the next round.
// Assumes lock is held by caller.
func (t *Table) settleShow() {
	starter := t.Engine.Starter

	// Build the reveal payload before settlement consumes the snapshots.
	hands := make([]map[string]interface{}, 0, t.NumSeats)
	for p := uint8(0); p < t.NumSeats; p++ {
		ps := &t.Engine.Players[p]
		withStarter := append(append([]engine.Card{}, ps.Snapshot[:ps.SnapLen]...), starter)
		hands = append(hands, map[string]interface{}{
			"seat":   int(p),
			"cards":  cardStrings(ps.Snapshot[:ps.SnapLen]),
			"points": engine.ScoreShowCards(withStarter),
		})
	}
	cribCards := cardStrings(t.Engine.Crib[:t.Engine.CribLen])
	cribWithStarter := append(append([]engine.Card{}, t.Engine.Crib[:t.Engine.CribLen]...), starter)
	crib := map[string]interface{}{
		"seat":   int(t.Engine.Dealer),
		"cards":  cribCards,
		"points": engine.ScoreShowCards(cribWithStarter),
	}

	deltas := t.Engine.ScoreShowRound()

	payload := map[string]interface{}{
		"starter": starter.String(),
		"dealer":  int(t.Engine.Dealer),
		"hands":   hands,
		"crib":    crib,
	}
	t.fireEvent(GameEvent{Type: EventShowResults, Payload: payload})
	t.logAction(-1, string(EventShowResults), map[string]interface{}{"deltas": deltas})
	t.broadcastScores()

	if t.Engine.IsGameOver() {
		t.endGame()
		return
	}
	if !t.Engine.AdvanceDealerAndRestart() {
		t.endGame()
		return
	}
	t.Round++
	t.announceRound()
}

// announceRound broadcasts the new round and deals each player their
// hand privately.
// Assumes lock is held by caller.
func (t *Table) announceRound() {
	t.fireEvent(GameEvent{
		Type: EventRoundStarted,
		Payload: map[string]interface{}{
			"round":  t.Round,
			"dealer": int(t.Engine.Dealer),
		},
	})
	t.logAction(-1, string(EventRoundStarted), map[string]interface{}{"round": t.Round, "dealer": int(t.Engine.Dealer)})

	for _, p := range t.Players {
		seat := t.PlayerToSeat[p.ID]
		ps := &t.Engine.Players[seat]
		t.fireEventToPlayer(p.ID, GameEvent{
			Type: EventPrivateDeal,
			Seat: seatRef(seat),
			Payload: map[string]interface{}{
				"hand": cardStrings(ps.Hand[:ps.HandLen]),
			},
		})
	}
	t.persistInitialGameState()
}

// endGame finalizes the game: winner, final scores, persistence, and
// the external callback.
// Assumes lock is held by caller.
func (t *Table) endGame() {
	if t.GameOver {
		return
	}
	t.GameOver = true

	winner := -1
	if w, ok := t.Engine.GetWinner(); ok {
		winner = int(w)
	}
	scores := t.Engine.Scores()
	log.Printf("Table %s: game over, winner seat %d, scores %v.", t.ID, winner, scores)

	t.fireEvent(GameEvent{
		Type: EventGameOver,
		Payload: map[string]interface{}{
			"winner": winner,
			"scores": scores,
			"reason": "score_threshold",
		},
	})
	t.logAction(-1, string(EventGameOver), map[string]interface{}{"winner": winner, "scores": scores})
	t.persistFinalGameState(winner, scores)

	if t.OnGameEnd != nil {
		t.OnGameEnd(t.ID, winner, scores)
	}
}

// HandleDisconnect marks a player as away. The seat stays in rotation;
// the game waits for them rather than skipping their turns.
func (t *Table) HandleDisconnect(playerID uuid.UUID) {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	seat, ok := t.PlayerToSeat[playerID]
	if !ok {
		return
	}
	player := t.Players[seat]
	if !player.Connected {
		return
	}
	player.Connected = false
	player.Conn = nil
	log.Printf("Table %s: seat %d (%s) disconnected.", t.ID, seat, playerID)
	t.logAction(int(seat), "player_disconnect", nil)
}

// broadcastScores sends the score table, but only when it differs from
// the last broadcast.
// Assumes lock is held by caller.
func (t *Table) broadcastScores() {
	cur := t.Engine.Scores()
	if scoresEqual(cur, t.lastScores) {
		return
	}
	t.lastScores = append([]int(nil), cur...)
	t.fireEvent(GameEvent{
		Type:    EventScores,
		Payload: map[string]interface{}{"scores": cur},
	})
}

func scoresEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// broadcastTurn announces the current pegging actor and count.
// Assumes lock is held by caller.
func (t *Table) broadcastTurn() {
	if t.Engine.Phase != engine.PhasePlay {
		return
	}
	t.fireEvent(GameEvent{
		Type: EventTurn,
		Seat: seatRef(t.Engine.Current),
		Payload: map[string]interface{}{
			"phase":   t.Engine.Phase.String(),
			"count":   int(t.Engine.PegTotal),
			"starter": t.Engine.Starter.String(),
		},
	})
}

// sendHandUpdate sends a player their current hand privately.
// Assumes lock is held by caller.
func (t *Table) sendHandUpdate(playerID uuid.UUID, seat uint8) {
	ps := &t.Engine.Players[seat]
	t.fireEventToPlayer(playerID, GameEvent{
		Type: EventPrivateHand,
		Seat: seatRef(seat),
		Payload: map[string]interface{}{
			"hand": cardStrings(ps.Hand[:ps.HandLen]),
		},
	})
}

// reject sends a command rejection to the originating player only.
// Assumes lock is held by caller.
func (t *Table) reject(playerID uuid.UUID, actionType string, err error) {
	t.fireEventToPlayer(playerID, GameEvent{
		Type: EventRejected,
		Payload: map[string]interface{}{
			"action":  actionType,
			"message": err.Error(),
		},
	})
}

// fireEvent broadcasts an event to all connected players.
// Assumes lock is held by caller.
func (t *Table) fireEvent(ev GameEvent) {
	if t.BroadcastFn != nil {
		t.BroadcastFn(ev)
	} else {
		log.Printf("Warning: table %s: BroadcastFn is nil, dropping event %s.", t.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to a single connected player.
// Assumes lock is held by caller.
func (t *Table) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if t.BroadcastToPlayerFn == nil {
		log.Printf("Warning: table %s: BroadcastToPlayerFn is nil, dropping event %s.", t.ID, ev.Type)
		return
	}
	if seat, ok := t.PlayerToSeat[playerID]; ok && t.Players[seat].Connected {
		t.BroadcastToPlayerFn(playerID, ev)
	}
}

// persistInitialGameState saves the deal snapshot for replay/audit.
// Assumes lock is held by caller.
func (t *Table) persistInitialGameState() {
	type dealtHand struct {
		Seat int      `json:"seat"`
		Hand []string `json:"hand"`
	}
	snap := struct {
		Round  int         `json:"round"`
		Dealer int         `json:"dealer"`
		Hands  []dealtHand `json:"hands"`
	}{
		Round:  t.Round,
		Dealer: int(t.Engine.Dealer),
	}
	for p := uint8(0); p < t.NumSeats; p++ {
		ps := &t.Engine.Players[p]
		snap.Hands = append(snap.Hands, dealtHand{Seat: int(p), Hand: cardStrings(ps.Hand[:ps.HandLen])})
	}

	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.UpsertInitialGameState(ctx, t.ID, snap); err != nil {
				log.Printf("Error: table %s: persisting initial state: %v", t.ID, err)
			}
		}()
	}
}

// persistFinalGameState saves the final scores and winner.
// Assumes lock is held by caller.
func (t *Table) persistFinalGameState(winner int, scores []int) {
	snap := struct {
		Winner int   `json:"winner"`
		Scores []int `json:"scores"`
		Rounds int   `json:"rounds"`
	}{Winner: winner, Scores: scores, Rounds: t.Round}

	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.StoreFinalGameState(ctx, t.ID, snap); err != nil {
				log.Printf("Error: table %s: persisting final state: %v", t.ID, err)
			}
		}()
	}
}

// logAction appends to the game's action history via Redis.
// Assumes lock is held by caller.
func (t *Table) logAction(actorSeat int, actionType string, payload map[string]interface{}) {
	t.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        t.ID,
		ActionIndex:   t.actionIndex,
		ActorSeat:     actorSeat,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	// Asynchronous publish; history must never block a command.
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Error: table %s: publishing action %d (%s): %v", t.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}
