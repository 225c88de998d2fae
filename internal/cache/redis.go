// Package cache publishes finished-game results onto a Redis queue. The
// historian drains the queue into Postgres; the game server never talks to
// the database directly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultRecord is one finished game as queued for the historian.
type ResultRecord struct {
	RoomID     string       `json:"room_id"`
	RoomName   string       `json:"room_name"`
	Mode       string       `json:"mode"`
	FinishedAt int64        `json:"finished_at"` // unix millis
	Rankings   []ResultLine `json:"rankings"`
}

// ResultLine is one row of a game's final ranking.
type ResultLine struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Publisher pushes result records onto a Redis list. A nil Publisher is
// valid and drops everything, so the server runs fine without Redis.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(ctx context.Context, addr, queue string) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue}, nil
}

// Publish serializes the record and appends it to the queue.
func (p *Publisher) Publish(ctx context.Context, record ResultRecord) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("cache: marshal result record: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("cache: rpush to %q: %w", p.queue, err)
	}
	return nil
}

// Consume blocks until a record is available, pops it and decodes it.
// Intended for the historian's drain loop.
func (p *Publisher) Consume(ctx context.Context) (ResultRecord, error) {
	var record ResultRecord
	res, err := p.rdb.BLPop(ctx, 0, p.queue).Result()
	if err != nil {
		return record, fmt.Errorf("cache: blpop %q: %w", p.queue, err)
	}
	// BLPop returns [queue, payload].
	if len(res) != 2 {
		return record, fmt.Errorf("cache: unexpected blpop reply of length %d", len(res))
	}
	if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
		return record, fmt.Errorf("cache: decode result record: %w", err)
	}
	return record, nil
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
