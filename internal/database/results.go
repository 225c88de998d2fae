package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ranking is one row of a game's final standing as persisted.
type Ranking struct {
	Name   string
	Points int
}

// InsertResult stores one finished game and its rankings in a single
// transaction.
func InsertResult(ctx context.Context, pool *pgxpool.Pool, roomID, roomName, mode string, finishedAt time.Time, rankings []Ranking) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var gameID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO games (room_id, room_name, mode, finished_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		roomID, roomName, mode, finishedAt,
	).Scan(&gameID)
	if err != nil {
		return fmt.Errorf("database: insert game: %w", err)
	}

	for i, rk := range rankings {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_rankings (game_id, rank, name, points)
			 VALUES ($1, $2, $3, $4)`,
			gameID, i+1, rk.Name, rk.Points,
		); err != nil {
			return fmt.Errorf("database: insert ranking %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}
