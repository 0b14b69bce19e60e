package derive

import (
	"math"
	"strings"

	"github.com/unneeks/stewardagent/internal/model"
)

// HeatmapCell is one term in the status heatmap, ready to render.
type HeatmapCell struct {
	Term   string
	Status string
}

// ReduceHeatmap is an identity pass over the service-provided term→status
// mapping, in the mapping's own key order. An empty mapping yields nil —
// the explicit "awaiting telemetry" state, never an error.
func ReduceHeatmap(states model.LatestState) []HeatmapCell {
	if states.Len() == 0 {
		return nil
	}
	cells := make([]HeatmapCell, 0, states.Len())
	for _, term := range states.Terms() {
		st, _ := states.Get(term)
		cells = append(cells, HeatmapCell{Term: term, Status: st.Status})
	}
	return cells
}

// LearningPoint is one chart-ready bar of the learning curve. Score is in
// percent, rounded to one decimal.
type LearningPoint struct {
	DisplayName string
	Score       float64
}

// ReduceLearning builds the learning curve from the improvements sequence.
// Output order is the order of FIRST appearance of each tde key; the value
// shown is from the LAST occurrence of that key. The ordered-keys list and
// the value map are maintained independently — collapsing them into one
// structure loses one half of the invariant.
func ReduceLearning(improvements []model.Improvement) []LearningPoint {
	if len(improvements) == 0 {
		return nil
	}
	order := make([]string, 0, len(improvements))
	latest := make(map[string]float64, len(improvements))
	for _, imp := range improvements {
		if _, seen := latest[imp.TDE]; !seen {
			order = append(order, imp.TDE)
		}
		latest[imp.TDE] = imp.ScoreAfter
	}
	points := make([]LearningPoint, 0, len(order))
	for _, tde := range order {
		points = append(points, LearningPoint{
			DisplayName: displayName(tde),
			Score:       math.Round(latest[tde]*100*10) / 10,
		})
	}
	return points
}

// displayName truncates a tde identifier to the part after its first
// delimiter, or the raw identifier when none is present.
func displayName(tde string) string {
	if _, rest, ok := strings.Cut(tde, "."); ok && rest != "" {
		return rest
	}
	return tde
}
