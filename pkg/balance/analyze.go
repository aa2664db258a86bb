// Package balance computes per-node flow conservation reports for a
// diagram. Analysis is pure: it never mutates its input, and it runs in
// time linear in the number of links so it can follow every keystroke.
package balance

import (
	"fmt"
	"math"

	"github.com/aretw0/flume/pkg/domain"
)

// Epsilon absorbs floating-point noise when comparing inflow and
// outflow. It is a numeric tolerance, not a semantic one.
const Epsilon = 0.001

// NodeFlow aggregates one node's totals.
type NodeFlow struct {
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Balance float64 `json:"balance"` // inflow - outflow
}

// IsSource reports a node with no inflow and some outflow. Sources are
// structurally expected and never flagged as imbalanced.
func (f NodeFlow) IsSource() bool { return f.Inflow == 0 && f.Outflow > 0 }

// IsSink reports a node with no outflow and some inflow.
func (f NodeFlow) IsSink() bool { return f.Outflow == 0 && f.Inflow > 0 }

// ImbalancedNode flags an intermediate node whose totals differ beyond
// Epsilon, with a human-readable correction suggestion.
type ImbalancedNode struct {
	NodeID     string  `json:"node_id"`
	Balance    float64 `json:"balance"`
	Suggestion string  `json:"suggestion"`
}

// Report is the full analysis of one diagram.
type Report struct {
	PerNode    map[string]NodeFlow `json:"per_node"`
	Imbalanced []ImbalancedNode    `json:"imbalanced"`
}

// Balanced reports whether no node was flagged.
func (r Report) Balanced() bool { return len(r.Imbalanced) == 0 }

// Analyze computes inflow, outflow and balance for every node. A node
// is imbalanced only when it has both inflow and outflow and the two
// differ by more than Epsilon.
func Analyze(data domain.SankeyData) Report {
	per := make(map[string]NodeFlow, len(data.Nodes))
	for _, n := range data.Nodes {
		per[n.ID] = NodeFlow{}
	}
	for _, l := range data.Links {
		out := per[l.Source]
		out.Outflow += l.Value
		per[l.Source] = out

		in := per[l.Target]
		in.Inflow += l.Value
		per[l.Target] = in
	}

	var imbalanced []ImbalancedNode
	// Iterate nodes, not the map, so the report order is stable.
	for _, n := range data.Nodes {
		f := per[n.ID]
		f.Balance = f.Inflow - f.Outflow
		per[n.ID] = f

		if f.IsSource() || f.IsSink() || (f.Inflow == 0 && f.Outflow == 0) {
			continue
		}
		if math.Abs(f.Balance) <= Epsilon {
			continue
		}
		imbalanced = append(imbalanced, ImbalancedNode{
			NodeID:     n.ID,
			Balance:    f.Balance,
			Suggestion: suggestion(f.Balance),
		})
	}

	return Report{PerNode: per, Imbalanced: imbalanced}
}

func suggestion(balance float64) string {
	if balance > 0 {
		return fmt.Sprintf("add outflow of %.2f", balance)
	}
	return fmt.Sprintf("add inflow of %.2f", -balance)
}
