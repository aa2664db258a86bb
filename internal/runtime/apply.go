package runtime

import (
	"github.com/aretw0/flume/pkg/changes"
	"github.com/aretw0/flume/pkg/domain"
)

// ApplyChanges validates and merges an externally proposed change set.
// On success the merged state lands as a single undo step with the
// text view re-serialized, exactly like a structural command. On
// failure the present snapshot is untouched.
func (e *Engine) ApplyChanges(cs changes.ChangeSet) (*domain.DiagramState, error) {
	if cs.Empty() {
		return e.present, nil
	}
	next, err := changes.Apply(e.present, cs)
	if err != nil {
		return e.present, e.reject("applyChanges", err)
	}
	return e.commitStructural("applyChanges", next), nil
}

// AutoBalance synthesizes the missing inflow or outflow for one node
// via the balance analyzer and applies it as a normal change set.
func (e *Engine) AutoBalance(nodeID string) (*domain.DiagramState, error) {
	cs, err := changes.BalanceCorrection(e.present, nodeID)
	if err != nil {
		return e.present, e.reject("autoBalance", err)
	}
	if cs.Empty() {
		return e.present, nil
	}
	return e.ApplyChanges(cs)
}
