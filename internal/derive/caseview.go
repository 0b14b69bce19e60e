// Package derive holds the pure derivation functions of the playback engine:
// case-view projection, telemetry reduction, lineage chains, and event-log
// grouping. Nothing here mutates its input or keeps state between calls; the
// polling layer recomputes every view from fresh snapshots.
package derive

import "github.com/unneeks/stewardagent/internal/model"

const unknownRule = "Unknown Rule"

// CaseView is the derived problem/reasoning/decision structure for one
// investigation. Every slot is independently optional; a nil slot means no
// matching event exists.
type CaseView struct {
	Problem  *model.Event
	Lineage  *model.Event
	Analysis *model.Event
	Gaps     *model.Event
	Decision *model.Event
}

// ProjectCase folds an investigation's ordered event list into a CaseView in
// a single linear pass. Each tracked slot records its FIRST matching event;
// later duplicates never overwrite. Malformed events are skipped.
func ProjectCase(inv model.Investigation) CaseView {
	var view CaseView
	for i := range inv.Events {
		ev := &inv.Events[i]
		if ev.Validate() != nil {
			continue
		}
		switch ev.Kind() {
		case model.KindRuleBreached:
			if view.Problem == nil {
				view.Problem = ev
			}
		case model.KindLineageTraced:
			if view.Lineage == nil {
				view.Lineage = ev
			}
		case model.KindSQLAnalysisCompleted:
			if view.Analysis == nil {
				view.Analysis = ev
			}
		case model.KindPolicyGapDetected:
			if view.Gaps == nil {
				view.Gaps = ev
			}
		case model.KindRecommendationCreated:
			if view.Decision == nil {
				view.Decision = ev
			}
		}
	}
	return view
}

// Summary carries the two scalars the timeline list renders per card.
type Summary struct {
	RiskScore    float64
	RuleBreached string
}

// Summarize extracts the timeline card scalars. RiskScore comes from the
// LAST risk_assessed event's metrics.risk_score — note this is the opposite
// policy from the first-write-wins slots in ProjectCase, preserved from the
// source system. RuleBreached comes from the problem slot (first
// rule_breached), defaulting to a sentinel.
func Summarize(inv model.Investigation) Summary {
	s := Summary{RuleBreached: unknownRule}
	for i := range inv.Events {
		ev := &inv.Events[i]
		if ev.Validate() != nil {
			continue
		}
		switch ev.Kind() {
		case model.KindRiskAssessed:
			if v, ok := ev.Metric("risk_score"); ok {
				s.RiskScore = v
			}
		case model.KindRuleBreached:
			if s.RuleBreached == unknownRule && ev.EntityName != "" {
				s.RuleBreached = ev.EntityName
			}
		}
	}
	return s
}
