package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/lotus-events/internal/session"
	"github.com/jwebster45206/lotus-events/internal/stats"
	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/handcrafted"
	"github.com/jwebster45206/lotus-events/pkg/player"
	"github.com/jwebster45206/lotus-events/pkg/procedural"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testServer struct {
	mux      *http.ServeMux
	recorder *stats.MemoryRecorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()

	lib, err := procedural.NewLibrary([]procedural.SituationTemplate{
		{
			ID:           "queue",
			Domain:       event.DomainPublic,
			TierMin:      0,
			TierMax:      4,
			LifeStageMin: 1,
			LifeStageMax: 1,
			Severity:     procedural.SeverityLow,
			Fragments: procedural.NarrativeFragments{
				Openings:  []string{"You wait at the counter."},
				Conflicts: []string{"Someone pushes in."},
				Stakes:    []string{"A camera watches."},
			},
			Choices: []procedural.ChoiceArchetype{
				{
					Archetype:     procedural.ArchetypeConform,
					TextFragments: []string{"Let it go."},
					BaseStats:     procedural.StatProfile{SCSChange: 10},
				},
			},
		},
	}, procedural.VariableLibraries{})
	require.NoError(t, err)

	fallback := handcrafted.NewResolver([]event.EventData{
		{
			Title:     "Sports Day",
			LifeStage: 1,
			MinTier:   0,
			MaxTier:   4,
			IsGeneric: true,
			Options:   []event.EventOption{{Text: "Run.", SuccessOutcome: event.EventOutcome{SCSChange: 1}}},
		},
	}, logger)

	eng := engine.New(procedural.NewGenerator(lib, logger, procedural.WithWildcardChance(0)), fallback, logger)
	recorder := stats.NewMemoryRecorder()
	sessions := NewSessionHandler(eng, session.NewStore(player.DefaultHistorySize, 5), recorder, logger)

	mux := http.NewServeMux()
	mux.Handle("/v1/sessions", sessions)
	mux.Handle("/v1/sessions/", sessions)
	mux.Handle("/v1/stats", NewStatsHandler(recorder, logger))
	return &testServer{mux: mux, recorder: recorder}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func (s *testServer) createSession(t *testing.T) session.View {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[session.View](t, rr)
}

func TestSessionHandler_Create(t *testing.T) {
	s := newTestServer(t)

	view := s.createSession(t)
	assert.NotEqual(t, uuid.Nil, view.ID)
	assert.Equal(t, player.Default(), view.Player)
	assert.Equal(t, uint64(5), view.Seed)

	rr := s.do(t, http.MethodPost, "/v1/sessions", `{"player": {"tier": 4, "life_stage": 2, "guanxi_party": 3}}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	custom := decode[session.View](t, rr)
	assert.Equal(t, 4, custom.Player.Tier)
	assert.Equal(t, 3, custom.Player.GuanxiParty)
	assert.Equal(t, "A+ (Exemplary)", custom.TierName)
}

func TestSessionHandler_CreateErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "bad json", method: http.MethodPost, body: `{"player":`, want: http.StatusBadRequest},
		{name: "tier out of range", method: http.MethodPost, body: `{"player": {"tier": 7, "life_stage": 1}}`, want: http.StatusBadRequest},
		{name: "life stage zero", method: http.MethodPost, body: `{"player": {"tier": 2, "life_stage": 0}}`, want: http.StatusBadRequest},
		{name: "list not supported", method: http.MethodGet, want: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, tt.method, "/v1/sessions", tt.body)
			assert.Equal(t, tt.want, rr.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rr).Error)
		})
	}
}

func TestSessionHandler_Routing(t *testing.T) {
	s := newTestServer(t)
	view := s.createSession(t)
	base := "/v1/sessions/" + view.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "read", method: http.MethodGet, path: base, want: http.StatusOK},
		{name: "invalid id", method: http.MethodGet, path: "/v1/sessions/not-a-uuid", want: http.StatusBadRequest},
		{name: "unknown id", method: http.MethodGet, path: "/v1/sessions/" + uuid.NewString(), want: http.StatusNotFound},
		{name: "event wrong method", method: http.MethodGet, path: base + "/event", want: http.StatusMethodNotAllowed},
		{name: "session wrong method", method: http.MethodPut, path: base, want: http.StatusMethodNotAllowed},
		{name: "unknown action", method: http.MethodPost, path: base + "/dance", want: http.StatusNotFound},
		{name: "event unknown id", method: http.MethodPost, path: "/v1/sessions/" + uuid.NewString() + "/event", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, tt.method, tt.path, "")
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestSessionHandler_PlayTurn(t *testing.T) {
	s := newTestServer(t)
	view := s.createSession(t)
	base := "/v1/sessions/" + view.ID.String()

	// choosing before an event exists
	rr := s.do(t, http.MethodPost, base+"/choice", `{"option": 0}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodPost, base+"/event", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	issued := decode[EventResponse](t, rr)
	assert.Equal(t, engine.OriginProcedural, issued.Origin)
	assert.Equal(t, "Public - Low Severity", issued.Event.Title)
	require.Len(t, issued.Event.Options, 1)
	require.NotNil(t, issued.Session.Current)
	assert.Equal(t, []event.Domain{event.DomainPublic}, issued.Session.RecentDomains)

	rr = s.do(t, http.MethodPost, base+"/choice", `{"option": 3}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = s.do(t, http.MethodPost, base+"/choice", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, base+"/choice", `{"option": 0}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	chosen := decode[ChoiceResponse](t, rr)
	assert.False(t, chosen.Resolution.Failed)
	assert.Positive(t, chosen.Resolution.Outcome.SCSChange)
	assert.Equal(t, player.Default().SocialCredit+chosen.Resolution.Outcome.SCSChange, chosen.Session.Player.SocialCredit)
	assert.Equal(t, 1, chosen.Session.Turns)
	assert.Nil(t, chosen.Session.Current)

	// the only situation is used up, so the handcrafted event follows
	rr = s.do(t, http.MethodPost, base+"/event", "")
	require.Equal(t, http.StatusOK, rr.Code)
	next := decode[EventResponse](t, rr)
	assert.Equal(t, engine.OriginHandcrafted, next.Origin)
	assert.Equal(t, "Sports Day", next.Event.Title)

	rr = s.do(t, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decode[stats.Snapshot](t, rr)
	assert.Equal(t, int64(1), snap.Origins["procedural"])
	assert.Equal(t, int64(1), snap.Origins["handcrafted"])
	assert.Equal(t, int64(1), snap.Domains["public"])
	assert.Equal(t, int64(2), snap.Tiers["2"])
	assert.Equal(t, int64(1), snap.Choices["success"])
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestServer(t)
	view := s.createSession(t)
	base := "/v1/sessions/" + view.ID.String()

	rr := s.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = s.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type failingRecorder struct {
	stats.Recorder
}

func (failingRecorder) Snapshot(context.Context) (*stats.Snapshot, error) {
	return nil, errors.New("redis down")
}

func TestStatsHandler(t *testing.T) {
	h := NewStatsHandler(stats.NewMemoryRecorder(), testLogger())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/stats", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	h = NewStatsHandler(failingRecorder{}, testLogger())
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

type mockPinger struct {
	err error
}

func (m mockPinger) Ping(context.Context) error { return m.err }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		stats          Pinger
		expectedStatus int
		expectedHealth string
		expectedStats  string
	}{
		{name: "stats disabled", stats: nil, expectedStatus: http.StatusOK, expectedHealth: "healthy", expectedStats: "disabled"},
		{name: "all healthy", stats: mockPinger{}, expectedStatus: http.StatusOK, expectedHealth: "healthy", expectedStats: "healthy"},
		{
			name:           "unhealthy stats",
			stats:          mockPinger{err: errors.New("connection failed")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedStats:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.stats, ContentInfo{Situations: 12, HandcraftedEvents: 9}, testLogger())

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			resp := decode[HealthResponse](t, rr)
			assert.Equal(t, tt.expectedHealth, resp.Status)
			assert.Equal(t, "lotus-events", resp.Service)
			assert.Equal(t, tt.expectedStats, resp.Components["stats"])
			content, ok := resp.Components["content"].(map[string]any)
			require.True(t, ok)
			assert.EqualValues(t, 12, content["situations"])
		})
	}
}
