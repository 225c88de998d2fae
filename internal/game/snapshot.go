package game

import (
	"maps"
	"time"

	"github.com/pkreuzt/jamb/internal/scoring"
)

// PlayerView is the public identity of a seat.
type PlayerView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamView describes one team in 2v2 snapshots.
type TeamView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// CorrectionView is the client-facing correction status.
type CorrectionView struct {
	Active   bool   `json:"active"`
	PlayerID string `json:"player_id,omitempty"`
	Dice     []int  `json:"dice,omitempty"`
}

// LastWriteView names a player's most recent cell, shown so clients can
// offer the correction button.
type LastWriteView struct {
	Category string `json:"category"`
	Column   string `json:"column"`
}

// Snapshot is the full client-facing projection of a room, broadcast to all
// participants after every successful mutation.
type Snapshot struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Mode          Mode         `json:"mode"`
	Expected      int          `json:"expected"`
	Players       []PlayerView `json:"players"`
	PlayersJoined int          `json:"players_joined"`
	Started       bool         `json:"started"`
	Finished      bool         `json:"finished"`
	Aborted       bool         `json:"aborted"`
	Locked        bool         `json:"locked"`

	Turn      *TurnContext `json:"turn"`
	Dice      []int        `json:"dice"`
	Holds     []bool       `json:"holds"`
	RollsUsed int          `json:"rolls_used"`
	RollsMax  int          `json:"rolls_max"`

	Scoreboards     map[string]Board `json:"scoreboards,omitempty"`
	Teams           []TeamView       `json:"teams,omitempty"`
	TeamScoreboards map[string]Board `json:"team_scoreboards,omitempty"`

	Announced      scoring.Category `json:"announced,omitempty"`
	AnnouncedBy    string           `json:"announced_by,omitempty"`
	AnnouncedBoard string           `json:"announced_board,omitempty"`

	Correction CorrectionView           `json:"correction"`
	LastWrite  map[string]LastWriteView `json:"last_write,omitempty"`
	HasLast    map[string]bool          `json:"has_last"`

	Results     []Result     `json:"results,omitempty"`
	AutoRoll    bool         `json:"auto_roll"`
	Suggestions []Suggestion `json:"suggestions"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Snapshot projects the room's internal state into the client view. The
// projection shares no mutable state with the room: boards, turn context and
// results are copied, so callers may hold and marshal it after the room lock
// is released. Assumes lock is held.
func (r *Room) Snapshot() Snapshot {
	snap := Snapshot{
		ID:            r.ID,
		Name:          r.Name,
		Mode:          r.Mode,
		Expected:      r.Expected,
		PlayersJoined: len(r.Players),
		Started:       r.Started,
		Finished:      r.Finished,
		Aborted:       r.Aborted,
		Locked:        r.PassphraseHash != "",
		Dice:          append([]int(nil), r.Dice[:]...),
		Holds:         append([]bool(nil), r.Holds[:]...),
		RollsUsed:     r.RollsUsed,
		RollsMax:      r.RollsMax,
		Announced:     r.Announced,
		AnnouncedBy:   r.AnnouncedBy,
		HasLast:       make(map[string]bool, len(r.Players)),
		Results:       append([]Result(nil), r.Results...),
		AutoRoll:      r.AutoRoll,
		Suggestions:   r.Suggestions(),
		UpdatedAt:     r.LastActivity,
	}
	if r.Turn != nil {
		turn := *r.Turn
		if turn.First4OAK != nil {
			n := *turn.First4OAK
			turn.First4OAK = &n
		}
		snap.Turn = &turn
	}
	if !r.StartedAt.IsZero() {
		t := r.StartedAt
		snap.StartedAt = &t
	}
	if r.Announced != "" {
		snap.AnnouncedBoard = r.boardKeyFor(r.AnnouncedBy)
	}

	for _, p := range r.Players {
		snap.Players = append(snap.Players, PlayerView{ID: p.ID, Name: p.Name})
		snap.HasLast[p.ID] = r.lastWrites[p.ID] != nil
	}

	snap.LastWrite = make(map[string]LastWriteView, len(r.lastWrites))
	for pid, lw := range r.lastWrites {
		snap.LastWrite[pid] = LastWriteView{Category: string(lw.Cat), Column: string(lw.Col)}
	}

	if r.Mode.Team() {
		snap.TeamScoreboards = make(map[string]Board, 2)
		for _, t := range []TeamID{TeamA, TeamB} {
			snap.Teams = append(snap.Teams, TeamView{
				ID:      string(t),
				Name:    TeamName(t),
				Members: r.TeamMembers(t),
			})
			if b, ok := r.Boards[string(t)]; ok {
				snap.TeamScoreboards[string(t)] = maps.Clone(b)
			}
		}
	} else {
		snap.Scoreboards = make(map[string]Board, len(r.Players))
		for _, p := range r.Players {
			if b, ok := r.Boards[p.ID]; ok {
				snap.Scoreboards[p.ID] = maps.Clone(b)
			}
		}
	}

	if r.Correction != nil {
		snap.Correction = CorrectionView{
			Active:   true,
			PlayerID: r.Correction.PlayerID,
			Dice:     append([]int(nil), r.Correction.Dice[:]...),
		}
	}
	return snap
}

// Suggestion is an advisory candidate button for the current dice, never
// authoritative: the write path re-validates everything.
type Suggestion struct {
	Type   string `json:"type"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Suggestion thresholds for the max/min cells.
const (
	maxSuggestionFloor = 25
	minSuggestionCeil  = 9
)

var suggestionOrder = []struct {
	Type  string
	Cat   scoring.Category
	Label string
}{
	{"POKER", scoring.CatPoker, "Poker"},
	{"SIXTY", scoring.CatSixty, "Sixty"},
	{"FULL", scoring.CatFull, "Full House"},
	{"KENTER", scoring.CatKenter, "Kenter"},
	{"MAX", scoring.CatMax, "Strong Max"},
	{"MIN", scoring.CatMin, "Strong Min"},
}

// Suggestions computes the candidate buttons for the current turn by
// composing the same legality predicate the write path uses, so the two can
// never drift apart. Assumes lock is held.
func (r *Room) Suggestions() []Suggestion {
	out := []Suggestion{}
	pid := r.currentPlayerID()
	if pid == "" || r.RollsUsed == 0 || r.Finished || r.Correction != nil {
		return out
	}
	board := r.boardFor(pid)

	for _, s := range suggestionOrder {
		points := scoring.Score(s.Cat, r.Dice[:])
		switch s.Cat {
		case scoring.CatMax:
			if points < maxSuggestionFloor {
				continue
			}
		case scoring.CatMin:
			if points > minSuggestionCeil {
				continue
			}
		default:
			if points <= 0 {
				continue
			}
		}
		if r.anyColumnEligible(pid, board, s.Cat, points) {
			out = append(out, Suggestion{Type: s.Type, Label: s.Label, Points: points})
		}
	}
	return out
}

// anyColumnEligible reports whether at least one column is empty and legal
// for the category right now, honoring the poker timing rule.
func (r *Room) anyColumnEligible(pid string, board Board, cat scoring.Category, points int) bool {
	for _, col := range Columns {
		if board.Filled(cat, col) {
			continue
		}
		if ok, _ := r.CanWriteNow(pid, cat, col); !ok {
			continue
		}
		if cat == scoring.CatPoker && points > 0 &&
			!pokerPointsAllowed(r.Dice[:], col, r.Announced, r.Turn.RollIndex, r.Turn.First4OAK) {
			continue
		}
		return true
	}
	return false
}
