// Package database is the historian's Postgres layer. It stores finished
// games and their rankings for long-term history; the game server itself
// never opens a database connection.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database: create pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the history tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS games (
    id          BIGSERIAL PRIMARY KEY,
    room_id     TEXT        NOT NULL,
    room_name   TEXT        NOT NULL,
    mode        TEXT        NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS game_rankings (
    game_id  BIGINT  NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    rank     INT     NOT NULL,
    name     TEXT    NOT NULL,
    points   INT     NOT NULL,
    PRIMARY KEY (game_id, rank)
);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("database: ensure schema: %w", err)
	}
	return nil
}
