package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestRecordAndView(t *testing.T) {
	s := newTestStore(t)

	err := s.Record(Entry{
		Timestamp: time.Now(),
		Points:    412,
		Name:      "alice",
		RoomName:  "friday night",
		Opponent:  "bob",
		OppPoints: 390,
		Diff:      22,
		Mode:      "2",
		RoomID:    "abcd1234",
	})
	require.NoError(t, err)

	v, err := s.View()
	require.NoError(t, err)
	require.Len(t, v.Recent, 1)
	assert.Equal(t, "alice", v.Recent[0].Name)
	require.Len(t, v.Alltime, 1)
	assert.Equal(t, 412, v.Alltime[0].Points)
	assert.Equal(t, 1, v.Stats.GamesPlayed)
}

func TestRecentWindowAgesOut(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Record(Entry{
		Timestamp: time.Now().Add(-8 * 24 * time.Hour),
		Points:    300, Name: "old",
	}))
	require.NoError(t, s.Record(Entry{
		Timestamp: time.Now(),
		Points:    200, Name: "new",
	}))

	v, err := s.View()
	require.NoError(t, err)
	require.Len(t, v.Recent, 1)
	assert.Equal(t, "new", v.Recent[0].Name)
	// The all-time board keeps the aged-out score.
	assert.Len(t, v.Alltime, 2)
	assert.Equal(t, "old", v.Alltime[0].Name)
	assert.Equal(t, 2, v.Stats.GamesPlayed)
}

func TestBoardsCapAtTen(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 15; i++ {
		require.NoError(t, s.Record(Entry{
			Timestamp: time.Now(),
			Points:    100 + i,
			Name:      fmt.Sprintf("p%d", i),
		}))
	}

	v, err := s.View()
	require.NoError(t, err)
	assert.Len(t, v.Recent, 10)
	assert.Len(t, v.Alltime, 10)
	// Highest score first, lowest scores dropped.
	assert.Equal(t, 114, v.Alltime[0].Points)
	assert.Equal(t, 105, v.Alltime[9].Points)
	assert.Equal(t, 15, v.Stats.GamesPlayed)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Record(Entry{Timestamp: time.Now(), Points: 250, Name: "carol"}))

	s2, err := NewStore(dir)
	require.NoError(t, err)
	v, err := s2.View()
	require.NoError(t, err)
	require.Len(t, v.Alltime, 1)
	assert.Equal(t, "carol", v.Alltime[0].Name)
	assert.Equal(t, 1, v.Stats.GamesPlayed)
}

func TestEmptyStoreViews(t *testing.T) {
	s := newTestStore(t)
	v, err := s.View()
	require.NoError(t, err)
	assert.Empty(t, v.Recent)
	assert.Empty(t, v.Alltime)
	assert.Equal(t, 0, v.Stats.GamesPlayed)
}
