package runtime

import (
	"log/slog"

	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/internal/metrics"
	"github.com/aretw0/flume/pkg/balance"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/dsl"
)

// DefaultHistoryCap bounds the undo stack. When the cap is reached the
// oldest entries are dropped silently: very old actions become
// non-undoable. This trades memory for history length and is a policy
// choice, not a correctness requirement.
const DefaultHistoryCap = 50

// Engine owns the canonical in-memory DiagramState and applies
// commands to it. It is single-threaded and synchronous: every command
// runs to completion before control returns, and the caller serializes
// dispatches. Snapshots are immutable, so concurrent readers may hold
// a reference to one while the next command is prepared.
type Engine struct {
	present *domain.DiagramState
	past    []*domain.DiagramState
	future  []*domain.DiagramState

	historyCap int
	logger     *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHistoryCap overrides the undo stack bound. Values below 1 keep
// the default.
func WithHistoryCap(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.historyCap = n
		}
	}
}

// WithInitialState starts the engine from a restored snapshot instead
// of the built-in sample (for example after loading from a store).
func WithInitialState(state *domain.DiagramState) Option {
	return func(e *Engine) {
		if state != nil {
			e.present = state
		}
	}
}

// New creates an engine positioned at the built-in sample diagram.
func New(opts ...Option) *Engine {
	e := &Engine{
		historyCap: DefaultHistoryCap,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.present == nil {
		e.present = domain.SampleState()
	}
	e.present.Settings = e.present.Settings.Normalize()
	return e
}

// Snapshot returns the current state. Callers must treat it as
// immutable; every mutation path goes through a command.
func (e *Engine) Snapshot() *domain.DiagramState {
	return e.present
}

// Balance analyzes the current data. Pure and cheap enough to refresh
// a status indicator after every mutation.
func (e *Engine) Balance() balance.Report {
	return balance.Analyze(e.present.Data)
}

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool { return len(e.past) > 0 }

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool { return len(e.future) > 0 }

// Undo moves one step back. It is a non-erroring no-op when the past
// stack is empty.
func (e *Engine) Undo() *domain.DiagramState {
	if len(e.past) == 0 {
		return e.present
	}
	e.future = append(e.future, e.present)
	e.present = e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	metrics.HistoryDepth.Set(float64(len(e.past)))
	return e.present
}

// Redo mirrors Undo. No-op when the future stack is empty.
func (e *Engine) Redo() *domain.DiagramState {
	if len(e.future) == 0 {
		return e.present
	}
	e.past = append(e.past, e.present)
	e.present = e.future[len(e.future)-1]
	e.future = e.future[:len(e.future)-1]
	metrics.HistoryDepth.Set(float64(len(e.past)))
	return e.present
}

// Reset clears all three stacks and restores the initial sample state.
// Callers owning a SnapshotStore also delete the persisted snapshot
// and its auxiliary keys; the engine itself never touches I/O.
func (e *Engine) Reset() *domain.DiagramState {
	e.past = nil
	e.future = nil
	e.present = domain.SampleState()
	metrics.HistoryDepth.Set(0)
	return e.present
}

// commit installs next as the new present, pushing the old present on
// the past stack and clearing the future. Exactly one commit happens
// per structural command.
func (e *Engine) commit(next *domain.DiagramState) *domain.DiagramState {
	e.past = append(e.past, e.present)
	if len(e.past) > e.historyCap {
		drop := len(e.past) - e.historyCap
		e.past = append([]*domain.DiagramState(nil), e.past[drop:]...)
		metrics.HistoryEvictionsTotal.Add(float64(drop))
	}
	e.future = nil
	e.present = next
	metrics.HistoryDepth.Set(float64(len(e.past)))
	return e.present
}

// syncText re-serializes the DSL view from structured data so both
// representations stay consistent after a structural edit.
func (e *Engine) syncText(next *domain.DiagramState) {
	if len(next.Layout.Labels) > 0 {
		next.Data.LabelOffsets = make(map[string]domain.Point, len(next.Layout.Labels))
		for id, p := range next.Layout.Labels {
			next.Data.LabelOffsets[id] = p
		}
	} else {
		next.Data.LabelOffsets = nil
	}
	next.DSLText = dsl.Serialize(next.Data)
}

// commitStructural finalizes a structural command: heal any orphaned
// references, refresh the text view, record metrics, and commit.
func (e *Engine) commitStructural(command string, next *domain.DiagramState) *domain.DiagramState {
	e.healOrphans(next)
	e.syncText(next)
	metrics.ObserveCommand(command, nil)
	return e.commit(next)
}
