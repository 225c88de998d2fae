package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkreuzt/jamb/internal/config"
	"github.com/pkreuzt/jamb/internal/game"
	"github.com/pkreuzt/jamb/internal/leaderboard"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	lb, err := leaderboard.NewStore(t.TempDir())
	require.NoError(t, err)
	cfg, err := config.Load()
	require.NoError(t, err)
	return NewServer(logger, cfg, game.NewRoomStore(), lb, nil)
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoom(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	rec := doJSON(t, h, http.MethodPost, "/api/rooms", `{"name":"friday","mode":"2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got roomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "friday", got.Name)
	assert.Equal(t, "2", got.Mode)
	assert.Equal(t, 2, got.Expected)
	assert.False(t, got.Started)
	assert.False(t, got.Locked)
	assert.NotEmpty(t, got.ID)
}

func TestCreateRoomValidation(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	rec := doJSON(t, h, http.MethodPost, "/api/rooms", `{"name":"x","mode":"5"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/rooms", `{"mode":"2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/rooms", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRooms(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	require.Equal(t, http.StatusCreated, doJSON(t, h, http.MethodPost, "/api/rooms", `{"name":"a","mode":"1"}`).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, h, http.MethodPost, "/api/rooms", `{"name":"b","mode":"2v2"}`).Code)

	rec := doJSON(t, h, http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []roomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	// Most recently active first.
	assert.Equal(t, "b", got[0].Name)
}

func TestRoomInfoPassphraseCheck(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	rec := doJSON(t, h, http.MethodPost, "/api/rooms", `{"name":"secret","mode":"2","passphrase":"hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created roomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Locked)

	// Plain info never requires the passphrase.
	rec = doJSON(t, h, http.MethodGet, "/api/rooms/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/rooms/"+created.ID+"?check=1&passphrase=wrong", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/rooms/"+created.ID+"?check=1&passphrase=hunter2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/rooms/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Leaderboard.Record(leaderboard.Entry{Points: 333, Name: "dana"}))

	rec := doJSON(t, s.Routes(), http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view leaderboard.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Alltime, 1)
	assert.Equal(t, "dana", view.Alltime[0].Name)
	assert.Equal(t, 1, view.Stats.GamesPlayed)
}
