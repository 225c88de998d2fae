package game

// TeamID identifies one of the two fixed teams in 2v2 mode.
type TeamID string

const (
	TeamA TeamID = "A"
	TeamB TeamID = "B"
)

// TeamName returns the display name of a team.
func TeamName(t TeamID) string {
	return "Team " + string(t)
}

// teamForJoinIndex maps join order to a team: 1st and 3rd joiner play for
// Team A, 2nd and 4th for Team B.
func teamForJoinIndex(idx int) TeamID {
	if idx%2 == 0 {
		return TeamA
	}
	return TeamB
}

// assignTeam records the joining player's team and ensures the shared team
// board exists. Only meaningful in team mode. Assumes lock is held.
func (r *Room) assignTeam(playerID string) {
	idx := len(r.Players) - 1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	team := teamForJoinIndex(idx)
	r.teamOf[playerID] = team
	if _, ok := r.Boards[string(team)]; !ok {
		r.Boards[string(team)] = make(Board)
	}
}

// TeamOf returns the team of a player in team mode, defaulting to Team A for
// unknown ids so board lookups never dereference a missing key.
func (r *Room) TeamOf(playerID string) TeamID {
	if t, ok := r.teamOf[playerID]; ok {
		return t
	}
	return TeamA
}

// boardKeyFor resolves the scoring target of an actor: the shared team board
// in 2v2, the personal board otherwise.
func (r *Room) boardKeyFor(playerID string) string {
	if r.Mode.Team() {
		return string(r.TeamOf(playerID))
	}
	return playerID
}

// boardFor returns the actor's target board, creating it if absent.
func (r *Room) boardFor(playerID string) Board {
	key := r.boardKeyFor(playerID)
	b, ok := r.Boards[key]
	if !ok {
		b = make(Board)
		r.Boards[key] = b
	}
	return b
}
