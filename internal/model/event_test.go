package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEventRequiresIdentityFields(t *testing.T) {
	_, err := ParseEvent([]byte(`{"entity_id":"BT_001","timestamp":"2026-09-01T10:00:00"}`))
	var malformed *MalformedEventError
	require.True(t, errors.As(err, &malformed))
	require.Equal(t, []string{"event_type"}, malformed.Missing)

	_, err = ParseEvent([]byte(`{"event_type":"rule_breached"}`))
	require.True(t, errors.As(err, &malformed))
	require.Equal(t, []string{"entity_id"}, malformed.Missing)

	_, err = ParseEvent([]byte(`{}`))
	require.True(t, errors.As(err, &malformed))
	require.Len(t, malformed.Missing, 2)
}

func TestParseEventOptionalFieldsDefaultAbsent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"event_type":"rule_breached","entity_id":"R_001"}`))
	require.NoError(t, err)
	require.Nil(t, ev.Metrics)
	require.Nil(t, ev.Context)
	require.Empty(t, ev.Explanation)

	_, ok := ev.Metric("score")
	require.False(t, ok)
	require.Empty(t, ev.ContextString("threshold"))
	require.Nil(t, ev.ContextStrings("gaps"))
}

func TestKindOfToleratesUnknownTypes(t *testing.T) {
	require.Equal(t, KindRuleBreached, KindOf("rule_breached"))
	require.Equal(t, KindOutcomeMeasured, KindOf("outcome_measured"))
	require.Equal(t, KindUnknown, KindOf("some_future_event"))
	require.Equal(t, KindUnknown, KindOf(""))
}

func TestContextAccessors(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"event_type": "sql_analysis_completed",
		"entity_id": "silver_stg_loans",
		"context": {
			"inferred_semantic_type": "amount",
			"threshold": 0.95,
			"detected_risks": ["CAST detected", "COALESCE detected", 7]
		},
		"metrics": {"risk_count": 2}
	}`))
	require.NoError(t, err)

	require.Equal(t, "amount", ev.ContextString("inferred_semantic_type"))
	th, ok := ev.ContextFloat("threshold")
	require.True(t, ok)
	require.InDelta(t, 0.95, th, 1e-9)
	require.Equal(t, []string{"CAST detected", "COALESCE detected"}, ev.ContextStrings("detected_risks"))

	n, ok := ev.Metric("risk_count")
	require.True(t, ok)
	require.Equal(t, 2.0, n)
}

func TestWhenToleratesZonelessTimestamps(t *testing.T) {
	ev := Event{Timestamp: "2026-09-01T10:15:00.123456"}
	ts, ok := ev.When()
	require.True(t, ok)
	require.Equal(t, 10, ts.Hour())

	ev = Event{Timestamp: "2026-09-01T10:15:00Z"}
	_, ok = ev.When()
	require.True(t, ok)

	ev = Event{Timestamp: "not a time"}
	_, ok = ev.When()
	require.False(t, ok)

	ev = Event{}
	_, ok = ev.When()
	require.False(t, ok)
}
