package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind is the tagged variant over the recognized event vocabulary. Unknown
// event types map to KindUnknown and are ignored by derivation, never an
// error.
type Kind int

const (
	KindUnknown Kind = iota
	KindRuleBreached
	KindRiskAssessed
	KindFocusSelected
	KindInvestigationStarted
	KindLineageTraced
	KindSQLAnalysisCompleted
	KindPolicyGapDetected
	KindRecommendationCreated
	KindOutcomeMeasured
	KindLearningUpdated
)

var kindNames = map[string]Kind{
	"rule_breached":            KindRuleBreached,
	"risk_assessed":            KindRiskAssessed,
	"focus_selected":           KindFocusSelected,
	"investigation_started":    KindInvestigationStarted,
	"lineage_traced":           KindLineageTraced,
	"sql_analysis_completed":   KindSQLAnalysisCompleted,
	"policy_gap_detected":      KindPolicyGapDetected,
	"recommendation_created":   KindRecommendationCreated,
	"outcome_measured":         KindOutcomeMeasured,
	"learning_updated":         KindLearningUpdated,
}

// KindOf maps an event_type string to its variant tag.
func KindOf(eventType string) Kind {
	if k, ok := kindNames[strings.TrimSpace(eventType)]; ok {
		return k
	}
	return KindUnknown
}

func (k Kind) String() string {
	for name, kk := range kindNames {
		if kk == k {
			return name
		}
	}
	return "unknown"
}

// Event is one immutable agent-cognition record. Metrics and Context
// sub-fields are optional; callers must treat them as possibly absent.
type Event struct {
	EventID     string             `json:"event_id,omitempty"`
	Timestamp   string             `json:"timestamp"`
	EventType   string             `json:"event_type"`
	EntityType  string             `json:"entity_type,omitempty"`
	EntityID    string             `json:"entity_id"`
	EntityName  string             `json:"entity_name,omitempty"`
	Context     map[string]any     `json:"context,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Explanation string             `json:"explanation,omitempty"`
}

// MalformedEventError reports an event missing its identity fields. Such an
// event is skipped from derivation, not fatal to the investigation.
type MalformedEventError struct {
	Missing []string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event: missing %s", strings.Join(e.Missing, ", "))
}

// ParseEvent decodes a raw JSON payload into an Event and validates its
// identity fields. All other fields default to absent.
func ParseEvent(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Validate returns a *MalformedEventError when event_type or entity_id is
// missing. No further validation is performed.
func (e Event) Validate() error {
	var missing []string
	if strings.TrimSpace(e.EventType) == "" {
		missing = append(missing, "event_type")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		missing = append(missing, "entity_id")
	}
	if len(missing) > 0 {
		return &MalformedEventError{Missing: missing}
	}
	return nil
}

// Kind returns the variant tag for this event's type.
func (e Event) Kind() Kind {
	return KindOf(e.EventType)
}

// Metric looks up a named metric.
func (e Event) Metric(name string) (float64, bool) {
	if e.Metrics == nil {
		return 0, false
	}
	v, ok := e.Metrics[name]
	return v, ok
}

// ContextString returns the named context value when it is a string.
func (e Event) ContextString(key string) string {
	if e.Context == nil {
		return ""
	}
	if s, ok := e.Context[key].(string); ok {
		return s
	}
	return ""
}

// ContextFloat returns the named context value when it is numeric. JSON
// numbers decode as float64; integer-typed values are tolerated.
func (e Event) ContextFloat(key string) (float64, bool) {
	if e.Context == nil {
		return 0, false
	}
	switch v := e.Context[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// ContextStrings returns the named context value when it is a list of
// strings. Non-string members are dropped.
func (e Event) ContextStrings(key string) []string {
	if e.Context == nil {
		return nil
	}
	raw, ok := e.Context[key].([]any)
	if !ok {
		if ss, ok := e.Context[key].([]string); ok {
			return ss
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// timestampLayouts covers RFC3339 plus the zone-less ISO form the agent
// emits (datetime.isoformat).
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// When parses the event timestamp; ok is false when the field is absent or
// in none of the tolerated layouts.
func (e Event) When() (time.Time, bool) {
	return parseTimestamp(e.Timestamp)
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
