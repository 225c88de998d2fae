// Package handlers exposes the HTTP API and the per-room websocket
// endpoint. All game state changes flow through the websocket; the REST
// surface only creates, lists and inspects rooms and serves the leaderboard.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/pkreuzt/jamb/internal/cache"
	"github.com/pkreuzt/jamb/internal/config"
	"github.com/pkreuzt/jamb/internal/game"
	"github.com/pkreuzt/jamb/internal/leaderboard"
	"github.com/pkreuzt/jamb/internal/middleware"
)

// Server bundles the shared dependencies of every handler.
type Server struct {
	Logger      *logrus.Logger
	Config      config.Config
	Rooms       *game.RoomStore
	Leaderboard *leaderboard.Store
	Publisher   *cache.Publisher // nil when Redis is not configured
}

// NewServer wires a handler set around its dependencies.
func NewServer(logger *logrus.Logger, cfg config.Config, rooms *game.RoomStore, lb *leaderboard.Store, pub *cache.Publisher) *Server {
	return &Server{
		Logger:      logger,
		Config:      cfg,
		Rooms:       rooms,
		Leaderboard: lb,
		Publisher:   pub,
	}
}

// Routes builds the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.CreateRoomHandler)
	mux.HandleFunc("GET /api/rooms", s.ListRoomsHandler)
	mux.HandleFunc("GET /api/rooms/{id}", s.RoomInfoHandler)
	mux.HandleFunc("GET /api/leaderboard", s.LeaderboardHandler)
	mux.HandleFunc("/ws/{id}", s.RoomWSHandler)
	return middleware.RequestLogger(s.Logger)(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
