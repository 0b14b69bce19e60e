package derive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unneeks/stewardagent/internal/model"
)

func TestLineageChainFixedShape(t *testing.T) {
	lineage := &model.Event{
		EventType:  "lineage_traced",
		EntityID:   "TDE_002",
		EntityName: "silver_stg_loans",
		Context:    map[string]any{"column": "verified_income"},
	}
	chain, ok := LineageChain(lineage, "Applicant Income")
	require.True(t, ok)
	require.Len(t, chain.Nodes, 4)
	require.Len(t, chain.Edges, 3)

	require.Equal(t, LineageNode{ID: "term", Label: "Applicant Income"}, chain.Nodes[0])
	require.Equal(t, LineageNode{ID: "tde", Label: "TDE_002"}, chain.Nodes[1])
	require.Equal(t, LineageNode{ID: "model", Label: "silver_stg_loans"}, chain.Nodes[2])
	require.Equal(t, LineageNode{ID: "column", Label: "verified_income"}, chain.Nodes[3])

	require.Equal(t, LineageEdge{From: "term", To: "tde"}, chain.Edges[0])
	require.Equal(t, LineageEdge{From: "tde", To: "model"}, chain.Edges[1])
	require.Equal(t, LineageEdge{From: "model", To: "column"}, chain.Edges[2])
}

func TestLineageChainColumnSentinel(t *testing.T) {
	lineage := &model.Event{EventType: "lineage_traced", EntityID: "TDE_001", EntityName: "bronze_raw_loans"}
	chain, ok := LineageChain(lineage, "Applicant Income")
	require.True(t, ok)
	require.Equal(t, "unknown_col", chain.Nodes[3].Label)
}

func TestLineageChainAbsentEventUnavailable(t *testing.T) {
	chain, ok := LineageChain(nil, "Applicant Income")
	require.False(t, ok)
	// never a partial chain
	require.Empty(t, chain.Nodes)
	require.Empty(t, chain.Edges)
}
