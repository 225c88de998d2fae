package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkreuzt/jamb/internal/auth"
	"github.com/pkreuzt/jamb/internal/game"
)

// createRoomRequest is the POST /api/rooms payload.
type createRoomRequest struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	Passphrase string `json:"passphrase,omitempty"`
}

// roomSummary is one row of the public room list.
type roomSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Mode          string  `json:"mode"`
	PlayersJoined int     `json:"players_joined"`
	Expected      int     `json:"expected"`
	Started       bool    `json:"started"`
	Finished      bool    `json:"finished"`
	Aborted       bool    `json:"aborted"`
	Locked        bool    `json:"locked"`
	Progress      float64 `json:"progress"` // filled cells / total cells
}

// CreateRoomHandler creates a room and returns its summary. An optional
// passphrase locks the room; only its argon2 hash is kept.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "room name is required")
		return
	}

	room := game.NewRoom(req.Name, mode)
	room.Timeout = s.Config.RoomTimeout
	room.RollCooldown = s.Config.RollCooldown
	if req.Passphrase != "" {
		hash, err := auth.HashPassphrase(req.Passphrase)
		if err != nil {
			s.Logger.WithError(err).Error("hash room passphrase")
			writeError(w, http.StatusInternalServerError, "could not create room")
			return
		}
		room.PassphraseHash = hash
	}
	s.Rooms.Add(room)

	s.Logger.WithFields(map[string]interface{}{
		"room": room.ID,
		"mode": string(mode),
	}).Info("room created")
	writeJSON(w, http.StatusCreated, summarize(room))
}

// ListRoomsHandler returns every known room, most recently active first.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms := s.Rooms.List()
	out := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, summarize(room))
	}
	writeJSON(w, http.StatusOK, out)
}

// RoomInfoHandler returns one room's summary. With ?check=1 it additionally
// verifies the supplied passphrase so clients can validate before opening
// the websocket; a mismatch is a 403.
func (s *Server) RoomInfoHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.Rooms.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	if r.URL.Query().Get("check") == "1" {
		room.Mu.Lock()
		hash := room.PassphraseHash
		room.Mu.Unlock()
		if hash != "" {
			ok, err := auth.VerifyPassphrase(r.URL.Query().Get("passphrase"), hash)
			if err != nil || !ok {
				writeError(w, http.StatusForbidden, "wrong passphrase")
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, summarize(room))
}

// LeaderboardHandler serves the recent and all-time boards plus counters.
func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.Leaderboard.View()
	if err != nil {
		s.Logger.WithError(err).Error("load leaderboard")
		writeError(w, http.StatusInternalServerError, "could not load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func summarize(room *game.Room) roomSummary {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	room.CheckTimeout()

	filled, total := 0, 0
	for _, b := range room.Boards {
		filled += len(b)
		total += game.CellsPerBoard
	}
	progress := 0.0
	if total > 0 {
		progress = float64(filled) / float64(total)
	}

	return roomSummary{
		ID:            room.ID,
		Name:          room.Name,
		Mode:          string(room.Mode),
		PlayersJoined: len(room.Players),
		Expected:      room.Expected,
		Started:       room.Started,
		Finished:      room.Finished,
		Aborted:       room.Aborted,
		Locked:        room.PassphraseHash != "",
		Progress:      progress,
	}
}
