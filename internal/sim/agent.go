// Package sim generates a deterministic governance-agent run over a small
// home-loan medallion catalog. The demo server seeds its event log from
// here so the dashboard has a believable stream to replay.
package sim

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unneeks/stewardagent/internal/model"
)

const timestampLayout = "2006-01-02T15:04:05.000000"

type businessTerm struct {
	ID          string
	Name        string
	Criticality float64
}

type rule struct {
	ID          string
	TermID      string
	Description string
	Threshold   float64
}

type tde struct {
	ID     string
	Name   string
	TermID string
}

type columnMapping struct {
	Model  string
	Column string
	TDEID  string
}

// Catalog is the fixed home-loan lineage the agent investigates.
type Catalog struct {
	Terms    []businessTerm
	Rules    []rule
	TDEs     []tde
	Mappings []columnMapping
	SQL      map[string]string
}

func DefaultCatalog() Catalog {
	return Catalog{
		Terms: []businessTerm{
			{ID: "BT_001", Name: "Applicant Income", Criticality: 0.95},
			{ID: "BT_002", Name: "Requested Loan Amount", Criticality: 0.98},
			{ID: "BT_003", Name: "Application Status", Criticality: 0.9},
		},
		Rules: []rule{
			{ID: "R_001", TermID: "BT_001", Description: "Applicant income must be positive and explicitly numeric", Threshold: 0.99},
			{ID: "R_002", TermID: "BT_002", Description: "Loan amount strictly numeric within approved range", Threshold: 0.995},
			{ID: "R_003", TermID: "BT_003", Description: "Application status must be one of allowed values and not null", Threshold: 1.0},
		},
		TDEs: []tde{
			{ID: "TDE_001", Name: "raw_loan_applications.income_str", TermID: "BT_001"},
			{ID: "TDE_002", Name: "stg_loan_applications.verified_income", TermID: "BT_001"},
			{ID: "TDE_003", Name: "fct_loan_approvals.loan_amount", TermID: "BT_002"},
			{ID: "TDE_004", Name: "fct_loan_approvals.final_status", TermID: "BT_003"},
		},
		Mappings: []columnMapping{
			{Model: "bronze_raw_loans", Column: "income_str", TDEID: "TDE_001"},
			{Model: "silver_stg_loans", Column: "verified_income", TDEID: "TDE_002"},
			{Model: "gold_fct_approvals", Column: "loan_amount", TDEID: "TDE_003"},
			{Model: "gold_fct_approvals", Column: "final_status", TDEID: "TDE_004"},
		},
		SQL: map[string]string{
			"bronze_raw_loans":   "SELECT application_id, coalesce(income_reported, '0') as income_str FROM ext_application_source",
			"silver_stg_loans":   "SELECT id, cast(income_str as decimal(18,2)) as verified_income FROM bronze_raw_loans",
			"gold_fct_approvals": "SELECT a.id, a.loan_amount, b.status as final_status FROM silver_stg_loans a LEFT JOIN reference_decisions b ON a.id = b.app_id",
		},
	}
}

// requiredValidations maps inferred semantic types to the validations a
// governing rule must mention. Gaps are whatever the rule text leaves out.
var requiredValidations = map[string][]string{
	"income":      {"positive", "numeric", "outlier check"},
	"loan_amount": {"numeric", "range"},
	"status":      {"allowed values", "not null"},
	"id":          {"unique", "not null"},
}

type fixRecord struct {
	Day        int
	Suggestion string
}

// Simulator replays the agent's daily investigation cycle.
type Simulator struct {
	catalog Catalog
	rng     *rand.Rand
	fixes   map[string]fixRecord
	scores  map[string]float64
	events  []model.Event
	clock   time.Time
}

func New(seed int64) *Simulator {
	return &Simulator{
		catalog: DefaultCatalog(),
		rng:     rand.New(rand.NewSource(seed)),
		fixes:   map[string]fixRecord{},
	}
}

// Run executes the daily cycle for the given number of days and returns
// every emitted event in chronological order.
func (s *Simulator) Run(start time.Time, days int) []model.Event {
	s.events = nil
	for day := 1; day <= days; day++ {
		s.clock = start.AddDate(0, 0, day)
		s.generateDailyScores(day)
		s.runDailyCycle(day)
	}
	return s.events
}

func (s *Simulator) generateDailyScores(day int) {
	s.scores = map[string]float64{}
	for _, t := range s.catalog.TDEs {
		base := 0.85
		if fix, ok := s.fixes[t.ID]; ok && day > fix.Day {
			s.scores[t.ID] = min(1.0, base+0.12+s.uniform(0.01, 0.05))
			continue
		}
		s.scores[t.ID] = max(0.0, min(1.0, base+s.uniform(-0.1, 0.1)))
	}
}

type breach struct {
	Rule        rule
	Term        businessTerm
	TDE         tde
	Score       float64
	Delta       float64
	RiskScore   float64
}

func (s *Simulator) runDailyCycle(day int) {
	var breaches []breach
	for _, r := range s.catalog.Rules {
		term := s.termByID(r.TermID)
		for _, t := range s.catalog.TDEs {
			if t.TermID != r.TermID {
				continue
			}
			score := s.scores[t.ID]
			if score >= r.Threshold {
				continue
			}
			b := breach{Rule: r, Term: term, TDE: t, Score: score, Delta: r.Threshold - score}
			breaches = append(breaches, b)
			s.emit("rule_breached", "rule", r.ID, r.Description,
				map[string]any{"threshold": r.Threshold},
				map[string]float64{"score": score, "delta": b.Delta},
				fmt.Sprintf("DQ rule breached on %s (Score: %.3f < %g)", t.Name, score, r.Threshold))
		}
	}
	if len(breaches) == 0 {
		return
	}

	// Risk per breach, declining-trend factor fixed at 1.1.
	for i := range breaches {
		b := &breaches[i]
		b.RiskScore = b.Term.Criticality * b.Delta * 1.1
		s.emit("risk_assessed", "business_term", b.Term.ID, b.Term.Name,
			map[string]any{"criticality": b.Term.Criticality, "delta": b.Delta},
			map[string]float64{"risk_score": b.RiskScore},
			fmt.Sprintf("Assessed risk score of %.3f for term %s", b.RiskScore, b.Term.ID))
	}

	sort.SliceStable(breaches, func(i, j int) bool {
		return breaches[i].RiskScore > breaches[j].RiskScore
	})
	focus := breaches[0]

	s.emit("focus_selected", "business_term", focus.Term.ID, focus.Term.Name,
		map[string]any{"highest_risk_score": focus.RiskScore, "term": focus.Term.ID},
		nil,
		fmt.Sprintf("Agent selected %s as primary investigation focus based on risk.", focus.Term.ID))

	s.emit("investigation_started", "tde", focus.TDE.ID, focus.TDE.Name,
		map[string]any{"rule_id": focus.Rule.ID},
		nil,
		fmt.Sprintf("Started investigation targeting TDE %s", focus.TDE.Name))

	mapping, ok := s.mappingByTDE(focus.TDE.ID)
	if !ok {
		return
	}
	s.emit("lineage_traced", "dbt_model", mapping.Model, mapping.Model,
		map[string]any{"column": mapping.Column},
		nil,
		fmt.Sprintf("Traced lineage to DBT model %s, column %s", mapping.Model, mapping.Column))

	semanticType := inferSemanticType(mapping.Column, focus.Rule.Description)
	sqlRisks := analyzeSQLRisks(s.catalog.SQL[mapping.Model])
	s.emit("sql_analysis_completed", "dbt_model", mapping.Model, mapping.Model,
		map[string]any{"inferred_semantic_type": semanticType, "detected_risks": toAnySlice(sqlRisks)},
		map[string]float64{"risk_count": float64(len(sqlRisks))},
		fmt.Sprintf("Scanned SQL: interpreted as %q semantic type, %d risks found", semanticType, len(sqlRisks)))

	gaps := policyGaps(semanticType, focus.Rule.Description)
	if len(gaps) > 0 {
		s.emit("policy_gap_detected", "rule", focus.Rule.ID, focus.Rule.Description,
			map[string]any{"semantic_type": semanticType, "gaps": toAnySlice(gaps)},
			map[string]float64{"gap_count": float64(len(gaps))},
			fmt.Sprintf("Detected policy gaps for %q: %s", semanticType, strings.Join(gaps, "; ")))
	}

	if len(gaps) > 0 || len(sqlRisks) > 0 {
		suggestion := "Add rigorous validation upstream."
		for _, r := range sqlRisks {
			if strings.Contains(r, "CAST detected") {
				suggestion = "Perform validation before CAST transformation."
				break
			}
		}
		s.emit("recommendation_created", "tde", focus.TDE.ID, focus.TDE.Name,
			map[string]any{"suggestion": suggestion, "pr_id": fmt.Sprintf("pr-%03d", day)},
			nil,
			fmt.Sprintf("Generated recommendation: %s", suggestion))
		s.fixes[focus.TDE.ID] = fixRecord{Day: day, Suggestion: suggestion}
	}

	// Measure prior interventions against today's scores.
	for _, t := range s.catalog.TDEs {
		fix, ok := s.fixes[t.ID]
		if !ok || day <= fix.Day {
			continue
		}
		current := s.scores[t.ID]
		if current < 0.9 && current < focus.Rule.Threshold {
			continue
		}
		s.emit("outcome_measured", "tde", t.ID, t.Name,
			map[string]any{"score_after_fix": current, "fix_day": fix.Day},
			map[string]float64{"score": current},
			fmt.Sprintf("Measured positive outcome on %s post-intervention (Score: %.2f).", t.ID, current))
		s.emit("learning_updated", "agent_memory", "core", "heuristics",
			map[string]any{"reinforced_tde": t.ID},
			nil,
			"Updated learning heuristics: interventions on this pattern succeed.")
		delete(s.fixes, t.ID)
	}
}

func (s *Simulator) emit(eventType, entityType, entityID, entityName string,
	context map[string]any, metrics map[string]float64, explanation string) {
	s.clock = s.clock.Add(time.Duration(1+s.rng.Intn(40)) * time.Second)
	s.events = append(s.events, model.Event{
		EventID:     uuid.NewString(),
		Timestamp:   s.clock.Format(timestampLayout),
		EventType:   eventType,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityName:  entityName,
		Context:     context,
		Metrics:     metrics,
		Explanation: explanation,
	})
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Simulator) termByID(id string) businessTerm {
	for _, t := range s.catalog.Terms {
		if t.ID == id {
			return t
		}
	}
	return businessTerm{ID: id, Name: id}
}

func (s *Simulator) mappingByTDE(tdeID string) (columnMapping, bool) {
	for _, m := range s.catalog.Mappings {
		if m.TDEID == tdeID {
			return m, true
		}
	}
	return columnMapping{}, false
}

func inferSemanticType(column, ruleDescription string) string {
	text := strings.ToLower(column + " " + ruleDescription)
	switch {
	case strings.Contains(text, "income"):
		return "income"
	case strings.Contains(text, "amount"), strings.Contains(text, "loan"):
		return "loan_amount"
	case strings.Contains(text, "status"):
		return "status"
	case strings.Contains(text, "id"), strings.Contains(text, "identifier"):
		return "id"
	}
	return "unknown"
}

func analyzeSQLRisks(sqlText string) []string {
	var risks []string
	lower := strings.ToLower(sqlText)
	if strings.Contains(lower, "cast(") {
		risks = append(risks, "CAST detected: Potential precision loss or type mismatch.")
	}
	if strings.Contains(lower, "coalesce(") || strings.Contains(lower, "ifnull(") {
		risks = append(risks, "COALESCE detected: Potential obfuscation of null values.")
	}
	if strings.Contains(lower, " join ") {
		risks = append(risks, "JOIN detected: Potential fan-out or row loss risk.")
	}
	return risks
}

func policyGaps(semanticType, ruleDescription string) []string {
	required, ok := requiredValidations[semanticType]
	if !ok {
		return nil
	}
	desc := strings.ToLower(ruleDescription)
	var gaps []string
	for _, req := range required {
		if !strings.Contains(desc, req) {
			gaps = append(gaps, "Missing required validation: "+req)
		}
	}
	return gaps
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
