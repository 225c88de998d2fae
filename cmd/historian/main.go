// cmd/historian/main.go drains finished-game records from the Redis queue
// and persists them to Postgres. It runs as a separate process so the game
// server itself never blocks on the database.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/pkreuzt/jamb/internal/cache"
	"github.com/pkreuzt/jamb/internal/config"
	"github.com/pkreuzt/jamb/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required for the historian")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("ensure schema: %v", err)
	}

	queue, err := cache.NewPublisher(ctx, cfg.RedisAddr, cfg.ResultsQueueName)
	if err != nil {
		logger.Fatalf("connect redis: %v", err)
	}
	defer queue.Close()

	logger.WithField("queue", cfg.ResultsQueueName).Info("historian draining")
	for {
		record, err := queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("historian shutting down")
				return
			}
			logger.WithError(err).Warn("consume failed, retrying")
			time.Sleep(time.Second)
			continue
		}

		rankings := make([]database.Ranking, 0, len(record.Rankings))
		for _, r := range record.Rankings {
			rankings = append(rankings, database.Ranking{Name: r.Name, Points: r.Points})
		}
		finishedAt := time.UnixMilli(record.FinishedAt)
		if err := database.InsertResult(ctx, pool, record.RoomID, record.RoomName, record.Mode, finishedAt, rankings); err != nil {
			logger.WithError(err).WithField("room", record.RoomID).Error("persist result")
			continue
		}
		logger.WithField("room", record.RoomID).Debug("result persisted")
	}
}
