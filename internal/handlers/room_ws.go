package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pkreuzt/jamb/internal/auth"
	"github.com/pkreuzt/jamb/internal/cache"
	"github.com/pkreuzt/jamb/internal/game"
	"github.com/pkreuzt/jamb/internal/leaderboard"
	"github.com/pkreuzt/jamb/internal/scoring"
)

const (
	wsWriteTimeout = 3 * time.Second
	maxChatLen     = 500
	maxEmojiLen    = 16
)

// wsMessage is the single inbound envelope; Action selects which fields
// apply.
type wsMessage struct {
	Action     string `json:"action"`
	Name       string `json:"name,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
	Token      string `json:"token,omitempty"`
	Holds      []bool `json:"holds,omitempty"`
	Category   string `json:"category,omitempty"`
	Column     string `json:"column,omitempty"`
	Strike     bool   `json:"strike,omitempty"`
	Text       string `json:"text,omitempty"`
	Emoji      string `json:"emoji,omitempty"`
}

// RoomWSHandler upgrades the connection and runs the per-participant read
// loop. The first message must seat the participant (join, spectate or
// rejoin); every later message is an in-game action.
func (s *Server) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	room, ok := s.Rooms.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	room.Mu.Lock()
	room.CheckTimeout()
	room.Mu.Unlock()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.WithError(err).Warn("websocket accept failed")
		return
	}
	defer c.Close(websocket.StatusInternalError, "server error")

	log := s.Logger.WithFields(logrus.Fields{"room": room.ID, "remote": r.RemoteAddr})
	log.Info("websocket connected")

	ctx := r.Context()
	participant, err := s.seatParticipant(ctx, c, room)
	if err != nil {
		log.WithError(err).Info("seat handshake failed")
		c.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	log = log.WithField("player", participant.ID)
	s.broadcastRoom(room)

	s.readActions(ctx, c, room, participant, log)

	room.Mu.Lock()
	room.Disconnect(participant, c)
	room.Mu.Unlock()
	log.Info("websocket disconnected")
	c.Close(websocket.StatusNormalClosure, "bye")
}

// seatParticipant handles the first message of a connection and returns the
// seated participant.
func (s *Server) seatParticipant(ctx context.Context, c *websocket.Conn, room *game.Room) (*game.Participant, error) {
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, data, err := c.Read(readCtx)
	if err != nil {
		return nil, err
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.New("invalid JSON")
	}

	switch msg.Action {
	case "join", "spectate":
		room.Mu.Lock()
		hash := room.PassphraseHash
		room.Mu.Unlock()
		if hash != "" {
			ok, err := auth.VerifyPassphrase(msg.Passphrase, hash)
			if err != nil || !ok {
				return nil, errors.New("wrong passphrase")
			}
		}

		if msg.Action == "spectate" {
			room.Mu.Lock()
			p := room.AddSpectator(msg.Name, c)
			room.Mu.Unlock()
			s.sendMessage(c, map[string]any{"spectator_id": p.ID, "spectator": true})
			return p, nil
		}

		room.Mu.Lock()
		p, err := room.AddPlayer(msg.Name, c)
		room.Mu.Unlock()
		if err != nil {
			return nil, err
		}
		token, err := auth.CreateSeatToken(room.ID, p.ID)
		if err != nil {
			return nil, err
		}
		s.sendMessage(c, map[string]string{"player_id": p.ID, "token": token})
		return p, nil

	case "rejoin":
		playerID, err := auth.VerifySeatToken(msg.Token, room.ID)
		if err != nil {
			return nil, err
		}
		room.Mu.Lock()
		p, err := room.Rejoin(playerID, c)
		room.Mu.Unlock()
		if err != nil {
			return nil, err
		}
		s.sendMessage(c, map[string]string{"player_id": p.ID})
		return p, nil
	}
	return nil, errors.New("first message must join, spectate or rejoin")
}

// readActions processes in-game messages until the connection drops.
func (s *Server) readActions(ctx context.Context, c *websocket.Conn, room *game.Room, p *game.Participant, log *logrus.Entry) {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				log.WithError(err).Warn("websocket read error")
			}
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(c, "invalid JSON")
			continue
		}

		switch msg.Action {
		case "chat":
			if msg.Text == "" || len(msg.Text) > maxChatLen {
				s.sendError(c, "chat message must be 1-500 characters")
				continue
			}
			s.broadcastEvent(room, map[string]any{
				"chat": map[string]string{"from": p.Name, "text": msg.Text},
			})
			continue
		case "emoji":
			if msg.Emoji == "" || len(msg.Emoji) > maxEmojiLen {
				s.sendError(c, "invalid emoji")
				continue
			}
			s.broadcastEvent(room, map[string]any{
				"emoji": map[string]string{"from": p.Name, "emoji": msg.Emoji},
			})
			continue
		}

		if p.Spectator {
			s.sendError(c, "spectators can only chat")
			continue
		}

		timedOut, actErr := s.applyAction(room, p, msg)
		if timedOut {
			// Lifecycle change, not an error: everyone learns the room
			// aborted even though the triggering action was rejected.
			s.broadcastRoom(room)
		}
		if errors.Is(actErr, game.ErrRollThrottled) {
			// Rapid-fire rolls are dropped without feedback.
			continue
		}
		if actErr != nil {
			s.sendError(c, actErr.Error())
			continue
		}
		s.broadcastRoom(room)
		s.maybeRecordResults(room)
	}
}

// applyAction routes one mutation into the engine under the room lock.
// timedOut reports whether this access tripped the inactivity abort.
func (s *Server) applyAction(room *game.Room, p *game.Participant, msg wsMessage) (timedOut bool, err error) {
	cat := scoring.Category(msg.Category)
	col := game.Column(msg.Column)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	timedOut = room.CheckTimeout()

	switch msg.Action {
	case "set_hold":
		var holds [5]bool
		if len(msg.Holds) != len(holds) {
			return timedOut, errors.New("holds must list all five dice")
		}
		copy(holds[:], msg.Holds)
		return timedOut, room.SetHold(p.ID, holds)
	case "roll":
		return timedOut, room.Roll(p.ID)
	case "announce":
		return timedOut, room.Announce(p.ID, cat)
	case "un_announce":
		return timedOut, room.Unannounce(p.ID)
	case "write":
		return timedOut, room.Write(p.ID, cat, col, msg.Strike)
	case "request_correction":
		return timedOut, room.RequestCorrection(p.ID)
	case "cancel_correction":
		return timedOut, room.CancelCorrection()
	case "write_correction":
		return timedOut, room.WriteCorrection(p.ID, cat, col, msg.Strike)
	case "end_game":
		room.EndGame()
		return timedOut, nil
	}
	return timedOut, errors.New("unknown action: " + msg.Action)
}

// broadcastRoom fans the current snapshot out to every connected
// participant.
func (s *Server) broadcastRoom(room *game.Room) {
	room.Mu.Lock()
	snap := room.Snapshot()
	room.Mu.Unlock()
	s.broadcastEvent(room, map[string]any{"room": snap})
}

// broadcastEvent sends one payload to all connections. The lock is released
// before any network write; each write gets its own timeout so one slow
// client cannot stall the rest.
func (s *Server) broadcastEvent(room *game.Room, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.Logger.WithError(err).Error("marshal broadcast payload")
		return
	}

	room.Mu.Lock()
	conns := make([]*websocket.Conn, 0, len(room.Players)+len(room.Spectators))
	for _, p := range room.Players {
		if p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	for _, sp := range room.Spectators {
		if sp.Conn != nil {
			conns = append(conns, sp.Conn)
		}
	}
	room.Mu.Unlock()

	for _, conn := range conns {
		go func(conn *websocket.Conn) {
			ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
			defer cancel()
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				s.Logger.WithError(err).Debug("broadcast write failed")
			}
		}(conn)
	}
}

// maybeRecordResults persists a freshly finished game exactly once: one
// leaderboard entry for the winner and one queued record for the historian.
func (s *Server) maybeRecordResults(room *game.Room) {
	room.Mu.Lock()
	if !room.Finished || room.Aborted || room.ResultsLogged || len(room.Results) == 0 {
		room.Mu.Unlock()
		return
	}
	room.ResultsLogged = true
	results := append([]game.Result(nil), room.Results...)
	roomID, roomName, mode := room.ID, room.Name, string(room.Mode)
	room.Mu.Unlock()

	entry := leaderboard.Entry{
		Timestamp: time.Now(),
		Points:    results[0].Total,
		Name:      results[0].Name,
		RoomName:  roomName,
		Mode:      mode,
		RoomID:    roomID,
	}
	if len(results) > 1 {
		entry.Opponent = results[1].Name
		entry.OppPoints = results[1].Total
		entry.Diff = results[0].Total - results[1].Total
	}
	if err := s.Leaderboard.Record(entry); err != nil {
		s.Logger.WithError(err).Error("record leaderboard entry")
	}

	record := cache.ResultRecord{
		RoomID:     roomID,
		RoomName:   roomName,
		Mode:       mode,
		FinishedAt: time.Now().UnixMilli(),
	}
	for _, res := range results {
		record.Rankings = append(record.Rankings, cache.ResultLine{Name: res.Name, Points: res.Total})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Publisher.Publish(ctx, record); err != nil {
		s.Logger.WithError(err).Error("publish result record")
	}

	s.Logger.WithFields(logrus.Fields{
		"room":   roomID,
		"winner": results[0].Name,
		"points": results[0].Total,
	}).Info("game finished")
}

// sendMessage writes one JSON payload to a single connection.
func (s *Server) sendMessage(c *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.Logger.WithError(err).Error("marshal ws payload")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		s.Logger.WithError(err).Debug("ws write failed")
	}
}

func (s *Server) sendError(c *websocket.Conn, reason string) {
	s.sendMessage(c, map[string]string{"error": reason})
}
