package derive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unneeks/stewardagent/internal/model"
)

func ev(eventType, entityID, entityName string) model.Event {
	return model.Event{EventType: eventType, EntityID: entityID, EntityName: entityName}
}

func TestProjectCaseFirstOccurrenceWins(t *testing.T) {
	inv := model.Investigation{Events: []model.Event{
		ev("rule_breached", "R_001", "Income must be numeric"),
		ev("lineage_traced", "TDE_002", "silver_stg_loans"),
		ev("sql_analysis_completed", "silver_stg_loans", "silver_stg_loans"),
		ev("policy_gap_detected", "R_001", "Income must be numeric"),
		ev("recommendation_created", "TDE_002", "stg_loan_applications.verified_income"),
		// later duplicates must never overwrite
		ev("rule_breached", "R_999", "Duplicate rule"),
		ev("lineage_traced", "TDE_999", "other_model"),
		ev("recommendation_created", "TDE_999", "other.tde"),
	}}

	view := ProjectCase(inv)
	require.NotNil(t, view.Problem)
	require.Equal(t, "R_001", view.Problem.EntityID)
	require.NotNil(t, view.Lineage)
	require.Equal(t, "TDE_002", view.Lineage.EntityID)
	require.NotNil(t, view.Analysis)
	require.NotNil(t, view.Gaps)
	require.NotNil(t, view.Decision)
	require.Equal(t, "TDE_002", view.Decision.EntityID)
}

func TestProjectCaseSlotsIndependentlyOptional(t *testing.T) {
	view := ProjectCase(model.Investigation{Events: []model.Event{
		ev("focus_selected", "BT_001", "BT_001"),
		ev("rule_breached", "R_001", "Income rule"),
	}})
	require.NotNil(t, view.Problem)
	require.Nil(t, view.Lineage)
	require.Nil(t, view.Analysis)
	require.Nil(t, view.Gaps)
	require.Nil(t, view.Decision)
}

func TestProjectCaseIgnoresUnknownAndMalformed(t *testing.T) {
	view := ProjectCase(model.Investigation{Events: []model.Event{
		{EventType: "rule_breached"}, // missing entity_id: skipped
		ev("some_future_event", "X", "X"),
		ev("rule_breached", "R_002", "Kept rule"),
	}})
	require.NotNil(t, view.Problem)
	require.Equal(t, "R_002", view.Problem.EntityID)
}

func TestSummarizeRiskScoreLastWins(t *testing.T) {
	inv := model.Investigation{Events: []model.Event{
		{EventType: "risk_assessed", EntityID: "BT_001", Metrics: map[string]float64{"risk_score": 0.12}},
		ev("rule_breached", "R_001", "Income must be numeric"),
		{EventType: "risk_assessed", EntityID: "BT_001", Metrics: map[string]float64{"risk_score": 0.47}},
	}}
	s := Summarize(inv)
	require.InDelta(t, 0.47, s.RiskScore, 1e-9)
	require.Equal(t, "Income must be numeric", s.RuleBreached)
}

func TestSummarizeDefaults(t *testing.T) {
	s := Summarize(model.Investigation{Events: []model.Event{
		ev("focus_selected", "BT_001", "BT_001"),
	}})
	require.Zero(t, s.RiskScore)
	require.Equal(t, "Unknown Rule", s.RuleBreached)

	// risk_assessed without the metric keeps the default
	s = Summarize(model.Investigation{Events: []model.Event{
		{EventType: "risk_assessed", EntityID: "BT_001"},
	}})
	require.Zero(t, s.RiskScore)
}
