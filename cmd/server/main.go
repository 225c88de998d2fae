// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/pkreuzt/jamb/internal/auth"
	"github.com/pkreuzt/jamb/internal/cache"
	"github.com/pkreuzt/jamb/internal/config"
	"github.com/pkreuzt/jamb/internal/game"
	"github.com/pkreuzt/jamb/internal/handlers"
	"github.com/pkreuzt/jamb/internal/leaderboard"
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

	if err := auth.Init(); err != nil {
		logger.Fatalf("init auth keys: %v", err)
	}

	lb, err := leaderboard.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatalf("open leaderboard store: %v", err)
	}

	var publisher *cache.Publisher
	if cfg.RedisAddr != "" {
		publisher, err = cache.NewPublisher(context.Background(), cfg.RedisAddr, cfg.ResultsQueueName)
		if err != nil {
			logger.Fatalf("connect redis: %v", err)
		}
		defer publisher.Close()
		logger.WithField("addr", cfg.RedisAddr).Info("result publishing enabled")
	} else {
		logger.Info("REDIS_ADDR not set, result publishing disabled")
	}

	srv := handlers.NewServer(logger, cfg, game.NewRoomStore(), lb, publisher)

	logger.WithField("addr", cfg.Addr).Info("listening")
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
