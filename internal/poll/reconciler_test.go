package poll

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unneeks/stewardagent/internal/model"
)

type fakeFetcher struct {
	invs     []model.Investigation
	invErr   error
	state    model.LatestState
	stateErr error
	learning model.LearningSummary
	learnErr error
	cfg      model.RemoteConfig
	cfgErr   error
	cfgCalls int
}

func (f *fakeFetcher) Investigations(context.Context) ([]model.Investigation, error) {
	return f.invs, f.invErr
}
func (f *fakeFetcher) LatestState(context.Context) (model.LatestState, error) {
	return f.state, f.stateErr
}

func stateOf(term, status string) model.LatestState {
	var s model.LatestState
	s.Set(term, model.TermStatus{Status: status})
	return s
}
func (f *fakeFetcher) LearningSummary(context.Context) (model.LearningSummary, error) {
	return f.learning, f.learnErr
}
func (f *fakeFetcher) RemoteConfig(context.Context) (model.RemoteConfig, error) {
	f.cfgCalls++
	return f.cfg, f.cfgErr
}

func inv(id string) model.Investigation {
	return model.Investigation{ID: id, Events: []model.Event{{EventType: "focus_selected", EntityID: "BT_001"}}}
}

func tick(r *Reconciler) {
	r.Apply(r.Fetch(context.Background(), !r.ConfigLoaded()))
}

func TestTickReplacesCollectionsWholesale(t *testing.T) {
	f := &fakeFetcher{
		invs:     []model.Investigation{inv("I1"), inv("I2")},
		state:    stateOf("Applicant Income", "stable"),
		learning: model.LearningSummary{Improvements: []model.Improvement{{TDE: "A.x", ScoreAfter: 0.5}}},
		cfg:      model.RemoteConfig{GithubRepoURL: "https://github.com/unneeks/loans"},
	}
	r := New(f, nil)
	tick(r)

	require.Len(t, r.Investigations(), 2)
	st, _ := r.LatestState().Get("Applicant Income")
	require.Equal(t, "stable", st.Status)
	require.Len(t, r.Learning().Improvements, 1)
	require.Equal(t, "https://github.com/unneeks/loans", r.RepoURL())

	f.invs = []model.Investigation{inv("I1"), inv("I2"), inv("I3")}
	f.state = model.LatestState{}
	tick(r)
	require.Len(t, r.Investigations(), 3)
	require.Zero(t, r.LatestState().Len())
}

func TestAutoSelectLastOnlyWhenUnselected(t *testing.T) {
	f := &fakeFetcher{invs: []model.Investigation{inv("I1"), inv("I2")}}
	r := New(f, nil)
	tick(r)
	require.Equal(t, "I2", r.SelectedID())

	// A new investigation arrives: the user's position is left untouched.
	f.invs = []model.Investigation{inv("I1"), inv("I2"), inv("I3")}
	tick(r)
	require.Equal(t, "I2", r.SelectedID())

	r.Select("I1")
	tick(r)
	require.Equal(t, "I1", r.SelectedID())
}

func TestSelectedResolvesAgainstFreshSnapshot(t *testing.T) {
	f := &fakeFetcher{invs: []model.Investigation{inv("I1")}}
	r := New(f, nil)
	tick(r)

	fresh := inv("I1")
	fresh.Events = append(fresh.Events, model.Event{EventType: "recommendation_created", EntityID: "TDE_002"})
	f.invs = []model.Investigation{fresh}
	tick(r)

	got, ok := r.Selected()
	require.True(t, ok)
	require.Len(t, got.Events, 2, "consumer must see the refreshed investigation, not a stale cache")
}

func TestSingleFetchFailureRetainsOnlyThatCollection(t *testing.T) {
	f := &fakeFetcher{
		invs:  []model.Investigation{inv("I1")},
		state: stateOf("Applicant Income", "breached"),
		cfg:   model.RemoteConfig{GithubRepoURL: "https://github.com/unneeks/loans"},
	}
	r := New(f, nil)
	tick(r)

	f.stateErr = errors.New("latest_state: 502")
	f.invs = []model.Investigation{inv("I1"), inv("I2")}
	tick(r)

	require.Len(t, r.Investigations(), 2, "healthy fetches must still apply")
	st, _ := r.LatestState().Get("Applicant Income")
	require.Equal(t, "breached", st.Status, "failed fetch keeps previous value")
}

func TestConfigFetchedLazilyOnce(t *testing.T) {
	f := &fakeFetcher{cfgErr: errors.New("config: down")}
	r := New(f, nil)
	tick(r)
	require.Equal(t, FallbackRepoURL, r.RepoURL())
	require.Equal(t, 1, f.cfgCalls)

	// Failure retries on the next tick; success stops further fetches.
	f.cfgErr = nil
	f.cfg = model.RemoteConfig{GithubRepoURL: "https://github.com/unneeks/loans"}
	tick(r)
	require.Equal(t, "https://github.com/unneeks/loans", r.RepoURL())
	require.Equal(t, 2, f.cfgCalls)

	tick(r)
	require.Equal(t, 2, f.cfgCalls)
}

func TestApplyAfterCloseDiscarded(t *testing.T) {
	f := &fakeFetcher{invs: []model.Investigation{inv("I1")}}
	r := New(f, nil)

	res := r.Fetch(context.Background(), true)
	r.Close()
	r.Apply(res)

	require.Empty(t, r.Investigations())
	require.Empty(t, r.SelectedID())
	require.True(t, r.Closed())
}
