package ports

import "context"

// Proposal is the structured payload an external collaborator (for
// example an assistant) produces. Any subset of the fields may be set;
// the engine treats it purely as Change Applicator input and has no
// opinion on how it was produced.
type Proposal struct {
	Flows    []map[string]any          `json:"flows,omitempty"`
	Nodes    map[string]map[string]any `json:"nodes,omitempty"`
	Settings map[string]any            `json:"settings,omitempty"`
}

// Proposer produces change proposals for a diagram, typically by
// calling a completion service. Fetching is asynchronous and caller
// cancelable; nothing touches engine state until the caller applies
// the result explicitly.
type Proposer interface {
	Propose(ctx context.Context, instruction string, dslText string) (Proposal, error)
}
