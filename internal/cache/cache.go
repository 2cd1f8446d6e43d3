// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil until InitRedis succeeds; callers
// must check before publishing.
var Rdb *redis.Client

// actionStreamKey is the Redis stream game actions are appended to,
// one stream per game.
func actionStreamKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game:%s:actions", gameID)
}

// InitRedis connects the shared client and verifies the connection.
func InitRedis(ctx context.Context, addr, password string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	return nil
}

// GameActionRecord is one entry of a game's action history: applied
// commands and emitted transitions, ordered by ActionIndex.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorSeat     int                    `json:"actorSeat"` // -1 for table-level events
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"payload,omitempty"`
	Timestamp     int64                  `json:"timestamp"`
}

// PublishGameAction appends the record to the game's action stream.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	return Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: actionStreamKey(rec.GameID),
		Values: map[string]interface{}{
			"idx":  rec.ActionIndex,
			"body": body,
		},
	}).Err()
}

// GameActionHistory reads back the full action stream for a game, in
// order. Used by replay/audit tooling.
func GameActionHistory(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	entries, err := Rdb.XRange(ctx, actionStreamKey(gameID), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("read action stream: %w", err)
	}
	out := make([]GameActionRecord, 0, len(entries))
	for _, e := range entries {
		body, ok := e.Values["body"].(string)
		if !ok {
			continue
		}
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decode action record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
