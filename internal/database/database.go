// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared connection pool. Nil when persistence is not
// configured; callers must check before writing.
var DB *pgxpool.Pool

// Connect opens the pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pgx ping: %w", err)
	}
	DB = pool
	return nil
}

// Migrate creates the game state tables when they do not exist.
func Migrate(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `
CREATE TABLE IF NOT EXISTS game_initial_states (
    game_id    UUID PRIMARY KEY,
    state      JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS game_final_states (
    game_id    UUID PRIMARY KEY,
    state      JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("migrate game state tables: %w", err)
	}
	return nil
}

// UpsertInitialGameState stores the deal snapshot taken when a round is
// dealt, for replay and audit.
func UpsertInitialGameState(ctx context.Context, gameID uuid.UUID, state interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal initial state: %w", err)
	}
	_, err = DB.Exec(ctx, `
INSERT INTO game_initial_states (game_id, state) VALUES ($1, $2)
ON CONFLICT (game_id) DO UPDATE SET state = EXCLUDED.state`, gameID, body)
	if err != nil {
		return fmt.Errorf("upsert initial state: %w", err)
	}
	return nil
}

// StoreFinalGameState stores the end-of-game snapshot: final scores and
// the winning seat.
func StoreFinalGameState(ctx context.Context, gameID uuid.UUID, state interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal final state: %w", err)
	}
	_, err = DB.Exec(ctx, `
INSERT INTO game_final_states (game_id, state) VALUES ($1, $2)
ON CONFLICT (game_id) DO UPDATE SET state = EXCLUDED.state`, gameID, body)
	if err != nil {
		return fmt.Errorf("store final state: %w", err)
	}
	return nil
}
