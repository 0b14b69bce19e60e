package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/unneeks/stewardagent/internal/derive"
	"github.com/unneeks/stewardagent/internal/model"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) loadEvents(w http.ResponseWriter, r *http.Request) ([]model.Event, bool) {
	events, err := s.st.Events(r.Context())
	if err != nil {
		s.log.Error("read event log", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to read event log")
		return nil, false
	}
	eventLogSize.Set(float64(len(events)))
	return events, true
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, ok := s.loadEvents(w, r)
	if !ok {
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleInvestigations(w http.ResponseWriter, r *http.Request) {
	events, ok := s.loadEvents(w, r)
	if !ok {
		return
	}
	invs := derive.GroupInvestigations(events)
	if invs == nil {
		invs = []model.Investigation{}
	}
	s.writeJSON(w, http.StatusOK, invs)
}

func (s *Server) handleLatestState(w http.ResponseWriter, r *http.Request) {
	events, ok := s.loadEvents(w, r)
	if !ok {
		return
	}
	// The zero LatestState marshals as {}, the explicit empty state.
	s.writeJSON(w, http.StatusOK, derive.ReduceLatestState(events))
}

func (s *Server) handleLearningSummary(w http.ResponseWriter, r *http.Request) {
	events, ok := s.loadEvents(w, r)
	if !ok {
		return
	}
	improvements := derive.CollectImprovements(events)
	if improvements == nil {
		improvements = []model.Improvement{}
	}
	s.writeJSON(w, http.StatusOK, model.LearningSummary{Improvements: improvements})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, model.RemoteConfig{GithubRepoURL: s.opts.RepoURL})
}

func (s *Server) handleApprovePR(w http.ResponseWriter, r *http.Request) {
	prID := strings.TrimSpace(mux.Vars(r)["pr_id"])
	if prID == "" {
		s.writeError(w, http.StatusBadRequest, "pr_id is required")
		return
	}
	if err := s.st.RecordApproval(r.Context(), prID, time.Now()); err != nil {
		s.log.Error("record approval", zap.String("pr_id", prID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to record approval")
		return
	}
	approvalsTotal.Inc()
	s.log.Info("pr approved", zap.String("pr_id", prID))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "approved", "pr_id": prID})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.st.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
