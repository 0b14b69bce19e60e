package derive

import "github.com/unneeks/stewardagent/internal/model"

const unknownColumn = "unknown_col"

// LineageNode is one node of the derived lineage chain.
type LineageNode struct {
	ID    string
	Label string
}

// LineageEdge is a directed edge between two chain nodes.
type LineageEdge struct {
	From string
	To   string
}

// LineageChainView is the fixed 4-node chain
// term → tde → model → column. Node and edge order never vary.
type LineageChainView struct {
	Nodes []LineageNode
	Edges []LineageEdge
}

// LineageChain maps a lineage_traced event and the owning investigation's
// focus term into the fixed chain. ok is false when the event is absent —
// the "unavailable" state; a partial chain is never produced.
func LineageChain(lineage *model.Event, focusTerm string) (LineageChainView, bool) {
	if lineage == nil {
		return LineageChainView{}, false
	}
	column := lineage.ContextString("column")
	if column == "" {
		column = unknownColumn
	}
	return LineageChainView{
		Nodes: []LineageNode{
			{ID: "term", Label: focusTerm},
			{ID: "tde", Label: lineage.EntityID},
			{ID: "model", Label: lineage.EntityName},
			{ID: "column", Label: column},
		},
		Edges: []LineageEdge{
			{From: "term", To: "tde"},
			{From: "tde", To: "model"},
			{From: "model", To: "column"},
		},
	}, true
}
