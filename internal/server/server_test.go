package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unneeks/stewardagent/internal/model"
	"github.com/unneeks/stewardagent/internal/store"
)

func newTestServer(t *testing.T, events []model.Event) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	for _, ev := range events {
		require.NoError(t, st.AppendEvent(context.Background(), ev))
	}
	srv := New(st, Options{
		Addr:    ":0",
		RepoURL: "https://github.com/acme/loans",
	})
	return srv, st
}

func get(t *testing.T, srv *Server, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func sampleEvents() []model.Event {
	return []model.Event{
		{
			EventID:   "e1",
			Timestamp: "2026-01-02T10:00:00",
			EventType: "focus_selected",
			EntityID:  "BT_001",
			Context:   map[string]any{"term": "BT_001"},
		},
		{
			EventID:   "e2",
			Timestamp: "2026-01-02T10:00:05",
			EventType: "risk_assessed",
			EntityID:  "BT_001",
			Metrics:   map[string]float64{"risk_score": 0.47},
		},
		{
			EventID:   "e3",
			Timestamp: "2026-01-02T10:00:10",
			EventType: "outcome_measured",
			EntityID:  "TDE_002",
			Metrics:   map[string]float64{"score": 0.97},
		},
	}
}

func TestEventsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, sampleEvents())
	var events []model.Event
	rec := get(t, srv, "/events", &events)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, events, 3)
	assert.Equal(t, "e1", events[0].EventID)
}

func TestInvestigationsEndpointGroups(t *testing.T) {
	srv, _ := newTestServer(t, sampleEvents())
	var invs []model.Investigation
	rec := get(t, srv, "/investigations", &invs)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, invs, 1)
	assert.Equal(t, "BT_001", invs[0].FocusTerm)
}

func TestLatestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, sampleEvents())
	var state model.LatestState
	rec := get(t, srv, "/latest_state", &state)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok := state.Get("BT_001")
	require.True(t, ok)
}

func TestLatestStateKeyOrderFollowsLog(t *testing.T) {
	srv, _ := newTestServer(t, []model.Event{
		{EventID: "e1", Timestamp: "2026-01-02T10:00:00", EventType: "risk_assessed",
			EntityID: "BT_003", Metrics: map[string]float64{"risk_score": 0.3}},
		{EventID: "e2", Timestamp: "2026-01-02T10:00:05", EventType: "risk_assessed",
			EntityID: "BT_001", Metrics: map[string]float64{"risk_score": 0.2}},
	})
	var state model.LatestState
	rec := get(t, srv, "/latest_state", &state)
	assert.Equal(t, http.StatusOK, rec.Code)
	// The response object's keys follow first appearance in the log, not
	// alphabetical order, and the decode preserves them.
	assert.Equal(t, []string{"BT_003", "BT_001"}, state.Terms())
}

func TestLearningSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, sampleEvents())
	var ls model.LearningSummary
	rec := get(t, srv, "/learning_summary", &ls)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ls.Improvements, 1)
	assert.Equal(t, "TDE_002", ls.Improvements[0].TDE)
}

func TestEmptyLogServesEmptyCollections(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var events []model.Event
	get(t, srv, "/events", &events)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	var state model.LatestState
	get(t, srv, "/latest_state", &state)
	assert.Zero(t, state.Len())
}

func TestConfigEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var cfg model.RemoteConfig
	rec := get(t, srv, "/config", &cfg)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://github.com/acme/loans", cfg.GithubRepoURL)
}

func TestApprovePRRecords(t *testing.T) {
	srv, st := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/approve_pr/pr-007", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	approvals, err := st.Approvals(context.Background())
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, "pr-007", approvals[0].PRID)
	assert.WithinDuration(t, time.Now(), approvals[0].ApprovedAt, time.Minute)
}

func TestApproveRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/approve_pr/pr-007", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(t, srv, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
