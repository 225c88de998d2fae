// Package leaderboard persists finished-game results to small JSON files on
// disk and serves the three public views: the last week's best scores, the
// all-time best scores, and aggregate counters.
package leaderboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Entry is one finished-game result line.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Points    int       `json:"points"`
	Name      string    `json:"name"`
	RoomName  string    `json:"gamename"`
	Opponent  string    `json:"opponent,omitempty"`
	OppPoints int       `json:"opp_points,omitempty"`
	Diff      int       `json:"diff"`
	Mode      string    `json:"mode"`
	RoomID    string    `json:"room"`
}

// Stats holds the aggregate counters shown next to the boards.
type Stats struct {
	GamesPlayed int `json:"games_played"`
}

// View is the composite payload served to clients.
type View struct {
	Recent  []Entry `json:"recent"`
	Alltime []Entry `json:"alltime"`
	Stats   Stats   `json:"stats"`
}

const (
	recentWindow = 7 * 24 * time.Hour
	boardSize    = 10

	recentFile  = "leaderboard_recent.json"
	alltimeFile = "leaderboard_alltime.json"
	statsFile   = "leaderboard_stats.json"
)

// Store reads and writes the leaderboard files under a single data
// directory. All operations serialize on one mutex; the files are tiny and
// contention is negligible.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore opens a leaderboard store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("leaderboard: create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Record appends a finished game's entries and bumps the games counter.
// Called exactly once per finished room; aborted rooms are never recorded.
func (s *Store) Record(entries ...Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent, err := s.loadEntries(recentFile)
	if err != nil {
		return err
	}
	recent = append(recent, entries...)
	recent = pruneOlderThan(recent, time.Now().Add(-recentWindow))
	if err := s.saveJSON(recentFile, recent); err != nil {
		return err
	}

	alltime, err := s.loadEntries(alltimeFile)
	if err != nil {
		return err
	}
	alltime = topByPoints(append(alltime, entries...), boardSize)
	if err := s.saveJSON(alltimeFile, alltime); err != nil {
		return err
	}

	var stats Stats
	if err := s.loadJSON(statsFile, &stats); err != nil {
		return err
	}
	stats.GamesPlayed++
	return s.saveJSON(statsFile, stats)
}

// View assembles the client payload: recent is re-filtered to the window at
// read time so entries age out without writes.
func (s *Store) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent, err := s.loadEntries(recentFile)
	if err != nil {
		return View{}, err
	}
	alltime, err := s.loadEntries(alltimeFile)
	if err != nil {
		return View{}, err
	}
	var stats Stats
	if err := s.loadJSON(statsFile, &stats); err != nil {
		return View{}, err
	}

	recent = pruneOlderThan(recent, time.Now().Add(-recentWindow))
	return View{
		Recent:  topByPoints(recent, boardSize),
		Alltime: topByPoints(alltime, boardSize),
		Stats:   stats,
	}, nil
}

func (s *Store) loadEntries(name string) ([]Entry, error) {
	var out []Entry
	if err := s.loadJSON(name, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) loadJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("leaderboard: read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("leaderboard: parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) saveJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("leaderboard: encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("leaderboard: write %s: %w", name, err)
	}
	return nil
}

func pruneOlderThan(entries []Entry, cutoff time.Time) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Timestamp.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

func topByPoints(entries []Entry, n int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
