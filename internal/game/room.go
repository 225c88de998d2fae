// Package game implements the per-room turn engine: move legality, dice
// state, announcements, poker timing, the one-shot correction flow, team
// scoring targets and room lifecycle. All state of a Room is guarded by its
// mutex; handlers lock around each inbound action so mutations apply
// serially per room.
package game

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/pkreuzt/jamb/internal/scoring"
)

// Mode is the room's player configuration, immutable after creation.
type Mode string

const (
	ModeSolo  Mode = "1" // practice mode, correction disabled
	ModeDuel  Mode = "2"
	ModeTrio  Mode = "3"
	ModeTeams Mode = "2v2"
)

// ParseMode validates a client-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSolo, ModeDuel, ModeTrio, ModeTeams:
		return Mode(s), nil
	}
	return "", errors.New("unknown game mode")
}

// ExpectedPlayers returns the participant count the mode requires.
func (m Mode) ExpectedPlayers() int {
	switch m {
	case ModeSolo:
		return 1
	case ModeTrio:
		return 3
	case ModeTeams:
		return 4
	default:
		return 2
	}
}

// Team reports whether the mode scores onto shared team boards.
func (m Mode) Team() bool { return m == ModeTeams }

// Engine rejections reported verbatim to the requester. State is unchanged
// whenever one of these is returned.
var (
	ErrRoomFull            = errors.New("room is full or already started")
	ErrNotStarted          = errors.New("room has not started yet")
	ErrRoomFinished        = errors.New("room is finished")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCorrectionActive    = errors.New("not allowed while a correction is active")
	ErrNoRollsLeft         = errors.New("no rolls left this turn")
	ErrRollThrottled       = errors.New("roll throttled")
	ErrRollFirst           = errors.New("roll the dice first")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidColumn       = errors.New("invalid column")
	ErrCellOccupied        = errors.New("cell is already filled")
	ErrAnnounceWindow      = errors.New("announcing is only possible directly after the first roll")
	ErrAnnouncedCellFilled = errors.New("announced-column cell for that category is already filled")
	ErrNoAnnouncement      = errors.New("no announcement active")
	ErrCorrectionSolo      = errors.New("correction is disabled in solo rooms")
	ErrNoPriorWrite        = errors.New("no previous entry to correct")
	ErrAnnouncedWriteFinal = errors.New("announced entries are final and cannot be corrected")
	ErrCorrectionOwnTurn   = errors.New("correction is only possible right after your turn")
	ErrNotLatestWriter     = errors.New("only the most recent entry in the room can be corrected")
	ErrCorrectionAfterRoll = errors.New("correction not possible: the next player already rolled")
	ErrNoCorrection        = errors.New("no correction active")
	ErrUnknownPlayer       = errors.New("unknown player")
)

// Participant is a player or spectator seat in a room. Conn is nil while the
// seat is disconnected; a rejoin replaces it.
type Participant struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Conn      *websocket.Conn `json:"-"`
	Spectator bool            `json:"-"`
}

// TurnContext tracks the per-turn hidden state the poker-timing rule and the
// correction flow depend on.
type TurnContext struct {
	PlayerID string `json:"player_id"`
	// RollIndex counts rolls within this turn, starting at 1 for the first.
	RollIndex int `json:"roll_index"`
	// First4OAK is the roll index at which four of a kind first appeared
	// this turn, set once per turn, nil if it never did.
	First4OAK *int `json:"first4oak_roll"`
}

// lastWrite remembers everything needed to retroactively validate and
// re-score a player's most recent entry.
type lastWrite struct {
	Cat       scoring.Category
	Col       Column
	Dice      [5]int
	Announced scoring.Category
	RollIndex int
	First4OAK *int
}

// Correction freezes the dice and poker metadata of the move being
// corrected. At most one exists per room at a time.
type Correction struct {
	PlayerID  string
	Dice      [5]int
	RollIndex int
	First4OAK *int
}

// Result is one line of the final ranking, player or team.
type Result struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// Default lifecycle parameters; overridable per room via config.
const (
	DefaultTimeout      = 10 * time.Minute
	DefaultRollCooldown = 450 * time.Millisecond
)

const (
	baseRollCap     = 3
	lastCellRollCap = 5
)

// Room holds the entire state of a single game instance in memory. Rooms are
// volatile: they live for the process lifetime and are never persisted.
type Room struct {
	ID             string
	Name           string
	Mode           Mode
	Expected       int
	PassphraseHash string // empty for open rooms; argon2 encoding otherwise

	Started  bool
	Finished bool
	Aborted  bool

	StartedAt    time.Time
	LastActivity time.Time

	Players    []*Participant // join order defines turn order and teams
	Spectators []*Participant

	Turn        *TurnContext
	Dice        [5]int
	Holds       [5]bool
	RollsUsed   int
	RollsMax    int
	Announced   scoring.Category // "" while no announcement is active
	AnnouncedBy string

	Boards map[string]Board // player id, or team id in 2v2
	teamOf map[string]TeamID

	Correction *Correction // nil while inactive
	lastWrites map[string]*lastWrite
	// lastWriterID names the player who made the room's most recent write,
	// the only write the correction flow may target.
	lastWriterID string

	Results []Result // nil until finished (and kept nil on abort)

	// ResultsLogged is set by the transport once the finished game has been
	// recorded, so reconnect races cannot double-count a game.
	ResultsLogged bool

	// AutoRoll signals the solo client that a fresh turn began and it may
	// trigger the first roll itself. Explicit so that a correction
	// resetting the dice to zero can never be mistaken for a new turn.
	AutoRoll bool

	Timeout      time.Duration
	RollCooldown time.Duration
	lastRoll     map[string]time.Time

	rng *rand.Rand
	Mu  sync.Mutex
}

// NewRoom builds an empty room for the given mode.
func NewRoom(name string, mode Mode) *Room {
	return &Room{
		ID:           uuid.New().String()[:8],
		Name:         name,
		Mode:         mode,
		Expected:     mode.ExpectedPlayers(),
		RollsMax:     baseRollCap,
		Boards:       make(map[string]Board),
		teamOf:       make(map[string]TeamID),
		lastWrites:   make(map[string]*lastWrite),
		lastRoll:     make(map[string]time.Time),
		Timeout:      DefaultTimeout,
		RollCooldown: DefaultRollCooldown,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		LastActivity: time.Now(),
	}
}

// touch records a room-affecting action for the inactivity monitor.
// Assumes lock is held.
func (r *Room) touch() {
	r.LastActivity = time.Now()
}

// CheckTimeout aborts the room when it has seen no qualifying action for the
// timeout window. Swept opportunistically on access; this is the only state
// transition not driven by a participant. Returns true when the room was
// aborted just now. Assumes lock is held.
func (r *Room) CheckTimeout() bool {
	if r.Finished || r.LastActivity.IsZero() {
		return false
	}
	if time.Since(r.LastActivity) <= r.Timeout {
		return false
	}
	r.Aborted = true
	r.Started = false
	r.Finished = true
	r.Results = nil
	return true
}

// AddPlayer seats a new player. The room starts as soon as the expected
// count is reached. Assumes lock is held.
func (r *Room) AddPlayer(name string, conn *websocket.Conn) (*Participant, error) {
	if r.Started || r.Finished || len(r.Players) >= r.Expected {
		return nil, ErrRoomFull
	}
	if name == "" {
		name = "Guest"
	}
	p := &Participant{ID: uuid.New().String()[:6], Name: name, Conn: conn}
	r.Players = append(r.Players, p)
	if r.Mode.Team() {
		r.assignTeam(p.ID)
	} else {
		r.Boards[p.ID] = make(Board)
	}
	if len(r.Players) == r.Expected {
		r.start()
	}
	r.touch()
	return p, nil
}

// AddSpectator registers a watch-only participant. Assumes lock is held.
func (r *Room) AddSpectator(name string, conn *websocket.Conn) *Participant {
	if name == "" {
		name = "Guest"
	}
	s := &Participant{ID: uuid.New().String()[:6], Name: name, Conn: conn, Spectator: true}
	r.Spectators = append(r.Spectators, s)
	r.touch()
	return s
}

// Rejoin re-attaches a live connection to an existing seat. Game state is
// untouched; a disconnect never cancels or alters a turn. Assumes lock held.
func (r *Room) Rejoin(playerID string, conn *websocket.Conn) (*Participant, error) {
	for _, p := range r.Players {
		if p.ID == playerID {
			p.Conn = conn
			r.touch()
			return p, nil
		}
	}
	return nil, ErrUnknownPlayer
}

// Disconnect nulls a player's delivery handle or drops a spectator. conn is
// the handle the closing reader owned; a seat already rejoined on a fresh
// connection is left untouched. Assumes lock is held.
func (r *Room) Disconnect(participant *Participant, conn *websocket.Conn) {
	if participant == nil {
		return
	}
	if !participant.Spectator {
		for _, p := range r.Players {
			if p.ID == participant.ID {
				if p.Conn == conn {
					p.Conn = nil
				}
				return
			}
		}
		return
	}
	for i, s := range r.Spectators {
		if s.ID == participant.ID {
			r.Spectators = append(r.Spectators[:i], r.Spectators[i+1:]...)
			return
		}
	}
}

// start initializes turn state once the seat count is complete.
// Assumes lock is held.
func (r *Room) start() {
	r.Started = true
	r.StartedAt = time.Now()
	r.Turn = &TurnContext{PlayerID: r.Players[0].ID}
	r.setRollCapForCurrentTurn()
	r.AutoRoll = r.Mode == ModeSolo
}

func (r *Room) currentPlayerID() string {
	if r.Turn == nil {
		return ""
	}
	return r.Turn.PlayerID
}

// guardAction bundles the checks shared by every in-turn mutation.
func (r *Room) guardAction(playerID string) error {
	if !r.Started {
		if r.Finished {
			return ErrRoomFinished
		}
		return ErrNotStarted
	}
	if r.Correction != nil {
		return ErrCorrectionActive
	}
	if r.currentPlayerID() != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// SetHold sets the hold flags for the five dice. Assumes lock is held.
func (r *Room) SetHold(playerID string, holds [5]bool) error {
	if err := r.guardAction(playerID); err != nil {
		return err
	}
	r.Holds = holds
	r.touch()
	return nil
}

// Roll re-rolls all dice not held. The first roll of a turn that shows four
// or more matching dice pins the turn's First4OAK roll index; see the poker
// timing rule. Over-frequent rolls trip ErrRollThrottled, which callers drop
// silently. Assumes lock is held.
func (r *Room) Roll(playerID string) error {
	if err := r.guardAction(playerID); err != nil {
		return err
	}
	if r.RollsUsed >= r.RollsMax {
		return ErrNoRollsLeft
	}
	now := time.Now()
	if last, ok := r.lastRoll[playerID]; ok && now.Sub(last) < r.RollCooldown {
		return ErrRollThrottled
	}
	r.lastRoll[playerID] = now

	for i := range r.Dice {
		if !r.Holds[i] {
			r.Dice[i] = r.rng.Intn(6) + 1
		}
	}
	r.RollsUsed++
	r.Turn.RollIndex++
	if r.Turn.First4OAK == nil && scoring.HasNOfAKind(r.Dice[:], 4) {
		idx := r.Turn.RollIndex
		r.Turn.First4OAK = &idx
	}
	r.AutoRoll = false
	r.touch()
	return nil
}

// Announce pre-commits the turn's announced-column write to one category.
// Only possible directly after the first roll; re-announcing within the same
// window replaces the prior announcement. Assumes lock is held.
func (r *Room) Announce(playerID string, cat scoring.Category) error {
	if err := r.guardAction(playerID); err != nil {
		return err
	}
	if r.RollsUsed != 1 {
		return ErrAnnounceWindow
	}
	if !scoring.Valid(cat) {
		return ErrInvalidCategory
	}
	if r.boardFor(playerID).Filled(cat, ColumnAnnounced) {
		return ErrAnnouncedCellFilled
	}
	r.Announced = cat
	r.AnnouncedBy = playerID
	r.touch()
	return nil
}

// Unannounce withdraws an announcement within the same one-roll window.
// Assumes lock is held.
func (r *Room) Unannounce(playerID string) error {
	if err := r.guardAction(playerID); err != nil {
		return err
	}
	if r.RollsUsed != 1 {
		return ErrAnnounceWindow
	}
	if r.Announced == "" {
		return ErrNoAnnouncement
	}
	r.Announced = ""
	r.AnnouncedBy = ""
	r.touch()
	return nil
}

// pokerPointsAllowed applies the poker timing rule to live turn state:
// four of a kind scores in the announced column under a poker announcement
// in any roll, elsewhere only in the exact roll where it first appeared this
// turn. Five of a kind always qualifies.
func pokerPointsAllowed(dice []int, col Column, announced scoring.Category, rollIdx int, first4 *int) bool {
	has4 := scoring.HasNOfAKind(dice, 4)
	has5 := scoring.HasNOfAKind(dice, 5)
	eff := first4
	if has4 && !has5 && eff == nil {
		// Tracking gap fallback: treat the current roll as the first
		// appearance rather than zeroing a legitimate write.
		v := rollIdx
		eff = &v
	}
	if col == ColumnAnnounced && announced == scoring.CatPoker {
		return has4 || has5
	}
	return has5 || (has4 && eff != nil && rollIdx == *eff)
}

// Write commits a value (or a zero strike) into the given cell, ends the
// turn and advances to the next player. A poker write whose timing check
// fails is silently downgraded to a strike instead of rejected.
// Assumes lock is held.
func (r *Room) Write(playerID string, cat scoring.Category, col Column, strike bool) error {
	if err := r.guardAction(playerID); err != nil {
		return err
	}
	if r.RollsUsed == 0 {
		return ErrRollFirst
	}
	if ok, reason := r.CanWriteNow(playerID, cat, col); !ok {
		return errors.New(reason)
	}

	board := r.boardFor(playerID)
	key := CellKey(cat, col)
	if _, occupied := board[key]; occupied {
		return ErrCellOccupied
	}

	if cat == scoring.CatPoker && !strike {
		if scoring.Score(scoring.CatPoker, r.Dice[:]) > 0 &&
			!pokerPointsAllowed(r.Dice[:], col, r.Announced, r.Turn.RollIndex, r.Turn.First4OAK) {
			// Legal-but-late poker attempt: write the cell as a strike.
			strike = true
		}
	}

	value := 0
	if !strike {
		value = scoring.Score(cat, r.Dice[:])
	}
	board[key] = value

	first4 := r.Turn.First4OAK
	r.lastWrites[playerID] = &lastWrite{
		Cat:       cat,
		Col:       col,
		Dice:      r.Dice,
		Announced: r.Announced,
		RollIndex: r.Turn.RollIndex,
		First4OAK: first4,
	}
	r.lastWriterID = playerID

	r.advanceTurn(playerID)
	if r.boardsComplete() {
		r.finish()
	}
	r.touch()
	return nil
}

// advanceTurn resets the per-turn state and hands the dice to the next
// player in join order. Assumes lock is held.
func (r *Room) advanceTurn(currentID string) {
	r.Dice = [5]int{}
	r.Holds = [5]bool{}
	r.RollsUsed = 0
	r.Announced = ""
	r.AnnouncedBy = ""

	next := r.nextPlayerID(currentID)
	r.Turn = &TurnContext{PlayerID: next}
	r.setRollCapForCurrentTurn()
	r.AutoRoll = r.Mode == ModeSolo
}

func (r *Room) nextPlayerID(currentID string) string {
	if len(r.Players) == 0 {
		return ""
	}
	for i, p := range r.Players {
		if p.ID == currentID {
			return r.Players[(i+1)%len(r.Players)].ID
		}
	}
	return r.Players[0].ID
}

// setRollCapForCurrentTurn grants the extended five-roll cap when the acting
// board has exactly one empty cell left. Assumes lock is held.
func (r *Room) setRollCapForCurrentTurn() {
	r.RollsMax = baseRollCap
	if pid := r.currentPlayerID(); pid != "" && r.boardFor(pid).Remaining() == 1 {
		r.RollsMax = lastCellRollCap
	}
}

// boardsComplete reports game completion: every player board full, or both
// team boards full in 2v2. Assumes lock is held.
func (r *Room) boardsComplete() bool {
	if len(r.Players) == 0 {
		return false
	}
	if r.Mode.Team() {
		for _, t := range []TeamID{TeamA, TeamB} {
			if b, ok := r.Boards[string(t)]; !ok || b.Remaining() != 0 {
				return false
			}
		}
		return true
	}
	for _, p := range r.Players {
		if b, ok := r.Boards[p.ID]; !ok || b.Remaining() != 0 {
			return false
		}
	}
	return true
}

// finish computes final totals exactly once and seals the room.
// Assumes lock is held.
func (r *Room) finish() {
	r.Started = false
	r.Finished = true
	r.Results = r.computeResults()
}

// computeResults ranks players (or teams) by grand total, descending.
// Assumes lock is held.
func (r *Room) computeResults() []Result {
	var out []Result
	if r.Mode.Team() {
		for _, t := range []TeamID{TeamA, TeamB} {
			out = append(out, Result{Name: TeamName(t), Total: r.Boards[string(t)].Total()})
		}
	} else {
		for _, p := range r.Players {
			out = append(out, Result{Name: p.Name, Total: r.Boards[p.ID].Total()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// EndGame aborts a running room. No results are computed or logged; a room
// that already finished keeps its results. Assumes lock is held.
func (r *Room) EndGame() {
	if r.Finished {
		return
	}
	r.Aborted = true
	r.Started = false
	r.Finished = true
	r.Results = nil
	r.touch()
}

// TeamMembers lists the player ids of a team in join order.
func (r *Room) TeamMembers(t TeamID) []string {
	var out []string
	for _, p := range r.Players {
		if r.teamOf[p.ID] == t {
			out = append(out, p.ID)
		}
	}
	return out
}
