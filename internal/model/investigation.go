package model

import "time"

// Investigation is one end-to-end case of the agent detecting and reacting
// to a business rule breach. Events are chronological and append-only from
// the source; Outcomes is a subsequence of post-decision events.
type Investigation struct {
	ID             string  `json:"id"`
	FocusTerm      string  `json:"focus_term"`
	StartTime      string  `json:"start_time"`
	Events         []Event `json:"events"`
	Recommendation *Event  `json:"recommendation,omitempty"`
	Outcomes       []Event `json:"outcomes"`
}

// StartedAt parses the investigation start time; ok is false when absent or
// unparseable.
func (inv Investigation) StartedAt() (time.Time, bool) {
	return parseTimestamp(inv.StartTime)
}

// TermStatus is the latest status for one business term in the heatmap.
type TermStatus struct {
	Status     string `json:"status"`
	LastUpdate string `json:"last_update,omitempty"`
}

// Improvement is one re-measurement of a traced data element after a fix.
// ScoreAfter is in [0,1].
type Improvement struct {
	TDE        string  `json:"tde"`
	ScoreAfter float64 `json:"score_after"`
	Timestamp  string  `json:"timestamp,omitempty"`
}

// LearningSummary is the service's aggregated learning effectiveness view.
type LearningSummary struct {
	Improvements []Improvement `json:"improvements"`
}

// RemoteConfig is the service configuration blob. Only github_repo_url is
// consumed; unknown fields are ignored.
type RemoteConfig struct {
	GithubRepoURL string `json:"github_repo_url"`
}
