// Package poll owns the raw collection snapshots and the reconciliation
// policy for the periodic refetch loop. The split mirrors how the TUI event
// loop works: Fetch runs off-thread and only reads the remote service; Apply
// runs on the single control thread and is the only mutator of the
// snapshots. The reconciler is parameterized by nothing but its fetcher —
// in particular not by the current selection, so a selection change can
// never re-trigger a refetch.
package poll

import (
	"context"

	"go.uber.org/zap"

	"github.com/unneeks/stewardagent/internal/model"
)

// FallbackRepoURL is shown until the remote config blob has been fetched.
const FallbackRepoURL = "https://github.com/unknown/repository"

// Fetcher is the read side of the remote playback service.
type Fetcher interface {
	Investigations(ctx context.Context) ([]model.Investigation, error)
	LatestState(ctx context.Context) (model.LatestState, error)
	LearningSummary(ctx context.Context) (model.LearningSummary, error)
	RemoteConfig(ctx context.Context) (model.RemoteConfig, error)
}

// Result carries one tick's four independent fetch outcomes. Each collection
// has its own error; one failed read never blanks the other three.
type Result struct {
	Investigations []model.Investigation
	InvErr         error

	LatestState model.LatestState
	StateErr    error

	Learning model.LearningSummary
	LearnErr error

	ConfigTried bool
	RepoURL     string
	ConfigErr   error
}

// Reconciler holds the read-only snapshots the derivation layer consumes.
type Reconciler struct {
	fetcher Fetcher
	log     *zap.Logger

	investigations []model.Investigation
	latestState    model.LatestState
	learning       model.LearningSummary
	repoURL        string
	configLoaded   bool

	selected string
	closed   bool
}

func New(fetcher Fetcher, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		fetcher: fetcher,
		log:     log,
		repoURL: FallbackRepoURL,
	}
}

// Fetch performs one tick's reads. It touches nothing but the fetcher, so
// it is safe to run concurrently with the control thread. withConfig asks it
// to also read the config blob; the caller decides that from ConfigLoaded
// ON the control thread, keeping the lazy-once state out of off-thread
// reads.
func (r *Reconciler) Fetch(ctx context.Context, withConfig bool) Result {
	var res Result
	res.Investigations, res.InvErr = r.fetcher.Investigations(ctx)
	res.LatestState, res.StateErr = r.fetcher.LatestState(ctx)
	res.Learning, res.LearnErr = r.fetcher.LearningSummary(ctx)
	if withConfig {
		res.ConfigTried = true
		var cfg model.RemoteConfig
		cfg, res.ConfigErr = r.fetcher.RemoteConfig(ctx)
		res.RepoURL = cfg.GithubRepoURL
	}
	return res
}

// ConfigLoaded reports whether the config blob has loaded. The blob is
// fetched lazily: callers pass !ConfigLoaded() as Fetch's withConfig.
func (r *Reconciler) ConfigLoaded() bool { return r.configLoaded }

// Apply merges one tick's result into the snapshots. Successful collections
// replace their snapshot wholesale; failed ones are logged and keep the
// previous value (stale-read fallback). A result arriving after Close is
// discarded wholesale. An existing selection is never touched; with none, the
// most-recent (last) investigation is auto-selected.
func (r *Reconciler) Apply(res Result) {
	if r.closed {
		return
	}
	if res.InvErr != nil {
		r.log.Warn("investigations fetch failed; keeping previous snapshot", zap.Error(res.InvErr))
	} else {
		r.investigations = res.Investigations
	}
	if res.StateErr != nil {
		r.log.Warn("latest_state fetch failed; keeping previous snapshot", zap.Error(res.StateErr))
	} else {
		r.latestState = res.LatestState
	}
	if res.LearnErr != nil {
		r.log.Warn("learning_summary fetch failed; keeping previous snapshot", zap.Error(res.LearnErr))
	} else {
		r.learning = res.Learning
	}
	if res.ConfigTried {
		if res.ConfigErr != nil {
			r.log.Warn("config fetch failed; will retry next tick", zap.Error(res.ConfigErr))
		} else {
			if res.RepoURL != "" {
				r.repoURL = res.RepoURL
			}
			r.configLoaded = true
		}
	}
	if r.selected == "" && len(r.investigations) > 0 {
		r.selected = r.investigations[len(r.investigations)-1].ID
	}
}

// Close tears the reconciler down. Any tick already in flight will have its
// Apply discarded rather than written after teardown.
func (r *Reconciler) Close() {
	r.closed = true
}

func (r *Reconciler) Closed() bool { return r.closed }

// Investigations is the current snapshot in list order.
func (r *Reconciler) Investigations() []model.Investigation { return r.investigations }

// LatestState is the current heatmap snapshot.
func (r *Reconciler) LatestState() model.LatestState { return r.latestState }

// Learning is the current learning-summary snapshot.
func (r *Reconciler) Learning() model.LearningSummary { return r.learning }

// RepoURL is the configured repository URL, or the fallback until the config
// blob loads.
func (r *Reconciler) RepoURL() string { return r.repoURL }

// Select records a selection by id. Consumers re-derive views against the
// fresh investigation with that id, never against a cached object.
func (r *Reconciler) Select(id string) { r.selected = id }

// SelectedID is the id of the current selection, "" when none.
func (r *Reconciler) SelectedID() string { return r.selected }

// Selected resolves the selection against the CURRENT snapshot. ok is false
// when nothing is selected or the id is no longer present.
func (r *Reconciler) Selected() (model.Investigation, bool) {
	if r.selected == "" {
		return model.Investigation{}, false
	}
	for _, inv := range r.investigations {
		if inv.ID == r.selected {
			return inv, true
		}
	}
	return model.Investigation{}, false
}

// Order lists investigation ids in snapshot order, for the playback
// controller.
func (r *Reconciler) Order() []string {
	out := make([]string, 0, len(r.investigations))
	for _, inv := range r.investigations {
		out = append(out, inv.ID)
	}
	return out
}
