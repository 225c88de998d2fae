package game

import (
	"sort"
	"sync"
	"time"
)

// RoomStore is an in-memory, concurrency-safe registry of rooms keyed by
// room id. Rooms are never removed; finished games stay reachable for
// inspection and reconnects until the process exits.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRoomStore initializes an empty store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room)}
}

// Add registers a room instance.
func (s *RoomStore) Add(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

// Get retrieves a room by id.
func (s *RoomStore) Get(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// List returns all rooms sorted by creation recency (most recent activity
// first), applying the inactivity check to each as a side effect so stale
// rooms show up aborted.
func (s *RoomStore) List() []*Room {
	s.mu.RLock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	s.mu.RUnlock()

	last := make(map[string]time.Time, len(out))
	for _, r := range out {
		r.Mu.Lock()
		r.CheckTimeout()
		last[r.ID] = r.LastActivity
		r.Mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return last[out[i].ID].After(last[out[j].ID])
	})
	return out
}
