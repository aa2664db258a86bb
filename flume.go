package flume

import (
	"log/slog"

	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/internal/runtime"
	"github.com/aretw0/flume/pkg/balance"
	"github.com/aretw0/flume/pkg/changes"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/dsl"
	"github.com/aretw0/flume/pkg/tabular"
)

// DefaultHistoryCap is the bound on undo history depth.
const DefaultHistoryCap = runtime.DefaultHistoryCap

// Partial-update payloads for the structural commands. Nil fields are
// left untouched.
type (
	NodeUpdate  = runtime.NodeUpdate
	LinkUpdate  = runtime.LinkUpdate
	LabelUpdate = runtime.LabelUpdate
)

// Engine is the high-level entry point for the Flume library.
// It wraps the internal runtime and provides the full editing API:
// structural commands, text replacement, change sets, undo/redo and
// balance analysis. An Engine is not safe for concurrent use; callers
// that share one across goroutines serialize access (see
// session.Manager).
type Engine struct {
	runtime *runtime.Engine
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine, *[]runtime.Option)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine, opts *[]runtime.Option) {
		e.logger = logger
		*opts = append(*opts, runtime.WithLogger(logger))
	}
}

// WithHistoryCap overrides the undo history bound.
func WithHistoryCap(n int) Option {
	return func(e *Engine, opts *[]runtime.Option) {
		*opts = append(*opts, runtime.WithHistoryCap(n))
	}
}

// WithInitialState starts the engine from a restored snapshot instead
// of the sample diagram.
func WithInitialState(state *domain.DiagramState) Option {
	return func(e *Engine, opts *[]runtime.Option) {
		*opts = append(*opts, runtime.WithInitialState(state))
	}
}

// WithText starts the engine from DSL source instead of the sample
// diagram. Diagnostics from the initial parse are discarded; lines
// that fail to parse are preserved verbatim.
func WithText(text string) Option {
	return func(e *Engine, opts *[]runtime.Option) {
		data, _ := dsl.Parse(text)
		state := domain.NewDiagramState()
		state.DSLText = text
		state.Data = data
		// Layout carries the authoritative label offsets; structural
		// commands rebuild the text view from it.
		for id, p := range data.LabelOffsets {
			state.Layout.Labels[id] = p
		}
		*opts = append(*opts, runtime.WithInitialState(state))
	}
}

// New initializes a new Flume Engine. Without options it starts from
// the built-in sample diagram with an empty history.
func New(opts ...Option) *Engine {
	eng := &Engine{logger: logging.NewNop()}

	var runtimeOpts []runtime.Option
	for _, opt := range opts {
		opt(eng, &runtimeOpts)
	}

	eng.runtime = runtime.New(runtimeOpts...)
	return eng
}

// Snapshot returns the current diagram state. The caller must not
// mutate it.
func (e *Engine) Snapshot() *domain.DiagramState { return e.runtime.Snapshot() }

// Text returns the current DSL source.
func (e *Engine) Text() string { return e.runtime.Snapshot().DSLText }

// Balance analyzes flow conservation for the current state.
func (e *Engine) Balance() balance.Report { return e.runtime.Balance() }

// Rows returns the current flows as editable grid rows.
func (e *Engine) Rows() []tabular.Row { return tabular.Rows(e.runtime.Snapshot().Data) }

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool { return e.runtime.CanUndo() }

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool { return e.runtime.CanRedo() }

// Undo steps back one history entry. With empty history it is a no-op.
func (e *Engine) Undo() *domain.DiagramState { return e.runtime.Undo() }

// Redo reapplies the most recently undone entry. With an empty redo
// stack it is a no-op.
func (e *Engine) Redo() *domain.DiagramState { return e.runtime.Redo() }

// Reset discards all history and restores the sample diagram.
func (e *Engine) Reset() *domain.DiagramState { return e.runtime.Reset() }

// AddNode creates a node with no flows. The ID is derived from the name.
func (e *Engine) AddNode(name string) (*domain.DiagramState, error) {
	return e.runtime.AddNode(name)
}

// UpdateNode applies a partial update. Renames cascade through links,
// customizations, layout and DSL text.
func (e *Engine) UpdateNode(id string, upd NodeUpdate) (*domain.DiagramState, error) {
	return e.runtime.UpdateNode(id, upd)
}

// DeleteNode removes a node and everything that references it.
func (e *Engine) DeleteNode(id string) (*domain.DiagramState, error) {
	return e.runtime.DeleteNode(id)
}

// AddLink appends a flow.
func (e *Engine) AddLink(link domain.Link) (*domain.DiagramState, error) {
	return e.runtime.AddLink(link)
}

// UpdateLink applies a partial update to the flow at index.
func (e *Engine) UpdateLink(index int, upd LinkUpdate) (*domain.DiagramState, error) {
	return e.runtime.UpdateLink(index, upd)
}

// DeleteLink removes the flow at index. Nodes left without flows are
// dropped unless styled or explicitly declared.
func (e *Engine) DeleteLink(index int) (*domain.DiagramState, error) {
	return e.runtime.DeleteLink(index)
}

// SetCustomization merges per-node styling. A merge resulting in an
// all-default customization removes the entry.
func (e *Engine) SetCustomization(id string, c domain.NodeCustomization) (*domain.DiagramState, error) {
	return e.runtime.SetCustomization(id, c)
}

// MoveNode pins a node at a manual position.
func (e *Engine) MoveNode(id string, p domain.Point) (*domain.DiagramState, error) {
	return e.runtime.MoveNode(id, p)
}

// MoveLabel offsets a node label from its automatic position.
func (e *Engine) MoveLabel(id string, offset domain.Point) (*domain.DiagramState, error) {
	return e.runtime.MoveLabel(id, offset)
}

// ResetNodePositions returns every node to automatic layout.
func (e *Engine) ResetNodePositions() (*domain.DiagramState, error) {
	return e.runtime.ResetNodePositions()
}

// ResetLabelPositions clears every label offset.
func (e *Engine) ResetLabelPositions() (*domain.DiagramState, error) {
	return e.runtime.ResetLabelPositions()
}

// AddIndependentLabel places a free-floating annotation.
func (e *Engine) AddIndependentLabel(label domain.IndependentLabel) (*domain.DiagramState, error) {
	return e.runtime.AddIndependentLabel(label)
}

// UpdateIndependentLabel applies a partial update to an annotation.
func (e *Engine) UpdateIndependentLabel(id string, upd LabelUpdate) (*domain.DiagramState, error) {
	return e.runtime.UpdateIndependentLabel(id, upd)
}

// DeleteIndependentLabel removes an annotation.
func (e *Engine) DeleteIndependentLabel(id string) (*domain.DiagramState, error) {
	return e.runtime.DeleteIndependentLabel(id)
}

// UpdateSettings replaces the diagram settings.
func (e *Engine) UpdateSettings(s domain.DiagramSettings) (*domain.DiagramState, error) {
	return e.runtime.UpdateSettings(s)
}

// SelectNode records the current selection without touching history.
// Selection is view state: it is never undoable, and an Undo restores
// whatever selection the previous snapshot carried.
func (e *Engine) SelectNode(id string) *domain.DiagramState {
	return e.runtime.SelectNode(id)
}

// SetRawText replaces the DSL source. A clean parse that changes the
// diagram records one history entry; invalid or equivalent text
// replaces the present state in place.
func (e *Engine) SetRawText(text string) (*domain.DiagramState, []dsl.Diagnostic) {
	return e.runtime.SetRawText(text)
}

// ApplyChanges merges a change set into the current state as a single
// history entry. Invalid change sets leave the state untouched.
func (e *Engine) ApplyChanges(cs changes.ChangeSet) (*domain.DiagramState, error) {
	return e.runtime.ApplyChanges(cs)
}

// AutoBalance inserts a correcting flow for an imbalanced node.
func (e *Engine) AutoBalance(nodeID string) (*domain.DiagramState, error) {
	return e.runtime.AutoBalance(nodeID)
}
