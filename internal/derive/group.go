package derive

import "github.com/unneeks/stewardagent/internal/model"

// GroupInvestigations folds a flat, chronologically ordered event log into
// discrete investigations. A focus_selected event opens a new investigation
// (its id and entity_id become the investigation id and focus term); every
// later event is appended to the open one until the next focus_selected.
// Events before the first focus_selected belong to no investigation and are
// dropped. Malformed events are skipped.
func GroupInvestigations(events []model.Event) []model.Investigation {
	var out []model.Investigation
	var current *model.Investigation
	for _, ev := range events {
		if ev.Validate() != nil {
			continue
		}
		if ev.Kind() == model.KindFocusSelected {
			if current != nil {
				out = append(out, *current)
			}
			current = &model.Investigation{
				ID:        groupID(ev),
				FocusTerm: ev.EntityID,
				StartTime: ev.Timestamp,
				Events:    []model.Event{ev},
				Outcomes:  []model.Event{},
			}
			continue
		}
		if current == nil {
			continue
		}
		current.Events = append(current.Events, ev)
		switch ev.Kind() {
		case model.KindRecommendationCreated:
			rec := ev
			current.Recommendation = &rec
		case model.KindOutcomeMeasured:
			current.Outcomes = append(current.Outcomes, ev)
		}
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

func groupID(ev model.Event) string {
	if ev.EventID != "" {
		return ev.EventID
	}
	// Event ids are assigned by the log; a focus event without one still has
	// to anchor an investigation deterministically.
	return ev.EntityID + "@" + ev.Timestamp
}

const (
	statusStable             = "stable"
	statusDeclining          = "declining"
	statusBreached           = "breached"
	statusUnderInvestigation = "under_investigation"
)

// ReduceLatestState aggregates the latest status per business term from the
// flat event log. risk_assessed sets breached/declining/stable from the risk
// score and delta; focus_selected marks the term under investigation. Later
// events overwrite earlier status for the same term; term order is the order
// each term first appears in the log.
func ReduceLatestState(events []model.Event) model.LatestState {
	var states model.LatestState
	for _, ev := range events {
		if ev.Validate() != nil {
			continue
		}
		switch ev.Kind() {
		case model.KindRiskAssessed:
			status := statusStable
			risk, _ := ev.Metric("risk_score")
			delta, _ := ev.ContextFloat("delta")
			if risk > 0.1 {
				status = statusBreached
			} else if delta > 0 {
				status = statusDeclining
			}
			states.Set(ev.EntityID, model.TermStatus{Status: status, LastUpdate: ev.Timestamp})
		case model.KindFocusSelected:
			states.Set(ev.EntityID, model.TermStatus{Status: statusUnderInvestigation, LastUpdate: ev.Timestamp})
		}
	}
	return states
}

// CollectImprovements extracts the learning-summary improvements from the
// flat event log: one entry per outcome_measured event, in log order.
func CollectImprovements(events []model.Event) []model.Improvement {
	var out []model.Improvement
	for _, ev := range events {
		if ev.Validate() != nil || ev.Kind() != model.KindOutcomeMeasured {
			continue
		}
		score, _ := ev.Metric("score")
		out = append(out, model.Improvement{
			TDE:        ev.EntityID,
			ScoreAfter: score,
			Timestamp:  ev.Timestamp,
		})
	}
	return out
}
