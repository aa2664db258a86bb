package runtime

import (
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/flume/internal/metrics"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/dsl"
)

// NodeUpdate carries the fields of an updateNode command. Nil means
// "leave untouched".
type NodeUpdate struct {
	Name      *string
	Color     *string
	Category  *domain.Category
	LabelText *string
}

// LinkUpdate carries the fields of an updateLink command.
type LinkUpdate struct {
	Source          *string
	Target          *string
	Value           *float64
	PreviousValue   *float64
	ComparisonLabel *string
	Color           *string
	Opacity         *float64
}

// LabelUpdate carries the fields of an updateIndependentLabel command.
type LabelUpdate struct {
	Text     *string
	X        *float64
	Y        *float64
	FontSize *float64
	Color    *string
	Bold     *bool
	Italic   *bool
}

// AddNode appends a node derived from name. The name must be non-blank
// and must not collide with an existing node identity.
func (e *Engine) AddNode(name string) (*domain.DiagramState, error) {
	if strings.TrimSpace(name) == "" {
		return e.present, e.reject("addNode", domain.ValidationError{Field: "name", Reason: "name must not be blank"})
	}
	id := domain.DeriveID(name)
	if _, exists := e.present.Data.NodeByID(id); exists {
		return e.present, e.reject("addNode", domain.ValidationError{Field: "name", Reason: "a node with identity " + id + " already exists"})
	}

	next := e.present.Clone()
	next.Data.Nodes = append(next.Data.Nodes, domain.NewNode(name))
	return e.commitStructural("addNode", next), nil
}

// UpdateNode applies a partial node update. A name change recomputes
// the node's identity and cascades the new ID through links,
// customizations, layout entries and the selection, all inside this
// single transition.
func (e *Engine) UpdateNode(id string, upd NodeUpdate) (*domain.DiagramState, error) {
	idx, ok := e.present.Data.NodeIndex()[id]
	if !ok {
		return e.present, e.reject("updateNode", domain.ValidationError{Field: "id", Reason: domain.ErrUnknownNode.Error() + ": " + id})
	}
	if upd.Category != nil && !upd.Category.Valid() {
		return e.present, e.reject("updateNode", domain.ValidationError{Field: "category", Reason: "unknown category " + string(*upd.Category)})
	}

	newID := id
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return e.present, e.reject("updateNode", domain.ValidationError{Field: "name", Reason: "name must not be blank"})
		}
		newID = domain.DeriveID(*upd.Name)
		if newID != id {
			if _, exists := e.present.Data.NodeByID(newID); exists {
				return e.present, e.reject("updateNode", domain.ValidationError{Field: "name", Reason: "identity " + newID + " is already taken"})
			}
		}
	}

	next := e.present.Clone()
	node := &next.Data.Nodes[idx]
	if upd.Name != nil {
		node.Name = *upd.Name
		node.ID = newID
	}
	if upd.Color != nil {
		node.Color = *upd.Color
	}
	if upd.Category != nil {
		node.Category = *upd.Category
	}
	if upd.LabelText != nil {
		node.LabelText = *upd.LabelText
	}

	if newID != id {
		e.cascadeRename(next, id, newID)
	}
	return e.commitStructural("updateNode", next), nil
}

// DeleteNode removes a node and cascades removal of every incident
// link, its customization and its layout entries.
func (e *Engine) DeleteNode(id string) (*domain.DiagramState, error) {
	idx, ok := e.present.Data.NodeIndex()[id]
	if !ok {
		return e.present, e.reject("deleteNode", domain.ValidationError{Field: "id", Reason: domain.ErrUnknownNode.Error() + ": " + id})
	}

	next := e.present.Clone()
	next.Data.Nodes = append(next.Data.Nodes[:idx], next.Data.Nodes[idx+1:]...)
	e.cascadeDelete(next, id)
	return e.commitStructural("deleteNode", next), nil
}

// AddLink appends a flow. Both endpoints must already exist.
func (e *Engine) AddLink(link domain.Link) (*domain.DiagramState, error) {
	if err := e.validateLink(link); err != nil {
		return e.present, e.reject("addLink", err)
	}

	next := e.present.Clone()
	next.Data.Links = append(next.Data.Links, link)
	return e.commitStructural("addLink", next), nil
}

// UpdateLink applies a partial update to the link at index.
func (e *Engine) UpdateLink(index int, upd LinkUpdate) (*domain.DiagramState, error) {
	if index < 0 || index >= len(e.present.Data.Links) {
		return e.present, e.reject("updateLink", domain.ValidationError{Field: "index", Reason: domain.ErrUnknownLink.Error()})
	}

	merged := e.present.Data.Links[index]
	if upd.Source != nil {
		merged.Source = *upd.Source
	}
	if upd.Target != nil {
		merged.Target = *upd.Target
	}
	if upd.Value != nil {
		merged.Value = *upd.Value
	}
	if upd.PreviousValue != nil {
		merged.PreviousValue = *upd.PreviousValue
	}
	if upd.ComparisonLabel != nil {
		merged.ComparisonLabel = *upd.ComparisonLabel
	}
	if upd.Color != nil {
		merged.Color = *upd.Color
	}
	if upd.Opacity != nil {
		merged.Opacity = *upd.Opacity
	}
	if err := e.validateLink(merged); err != nil {
		return e.present, e.reject("updateLink", err)
	}

	next := e.present.Clone()
	next.Data.Links[index] = merged
	return e.commitStructural("updateLink", next), nil
}

// DeleteLink removes the link at index.
func (e *Engine) DeleteLink(index int) (*domain.DiagramState, error) {
	if index < 0 || index >= len(e.present.Data.Links) {
		return e.present, e.reject("deleteLink", domain.ValidationError{Field: "index", Reason: domain.ErrUnknownLink.Error()})
	}

	next := e.present.Clone()
	next.Data.Links = append(next.Data.Links[:index], next.Data.Links[index+1:]...)
	return e.commitStructural("deleteLink", next), nil
}

// SetCustomization merges the given overrides into the node's entry.
// Non-nil fields replace; nil fields are left untouched. An entry that
// ends up with no overrides is dropped.
func (e *Engine) SetCustomization(id string, c domain.NodeCustomization) (*domain.DiagramState, error) {
	if _, ok := e.present.Data.NodeByID(id); !ok {
		return e.present, e.reject("setCustomization", domain.ValidationError{Field: "id", Reason: domain.ErrUnknownNode.Error() + ": " + id})
	}

	next := e.present.Clone()
	merged := mergeCustomization(next.Customizations[id], c)
	if merged.IsZero() {
		delete(next.Customizations, id)
	} else {
		next.Customizations[id] = merged
	}
	return e.commitStructural("setCustomization", next), nil
}

// MoveNode records a manual node position override.
func (e *Engine) MoveNode(id string, p domain.Point) (*domain.DiagramState, error) {
	if _, ok := e.present.Data.NodeByID(id); !ok {
		return e.present, e.reject("moveNode", domain.ValidationError{Field: "id", Reason: domain.ErrUnknownNode.Error() + ": " + id})
	}

	next := e.present.Clone()
	next.Layout.Nodes[id] = p
	return e.commitStructural("moveNode", next), nil
}

// MoveLabel records a manual label offset override.
func (e *Engine) MoveLabel(id string, offset domain.Point) (*domain.DiagramState, error) {
	if _, ok := e.present.Data.NodeByID(id); !ok {
		return e.present, e.reject("moveLabel", domain.ValidationError{Field: "id", Reason: domain.ErrUnknownNode.Error() + ": " + id})
	}

	next := e.present.Clone()
	next.Layout.Labels[id] = offset
	return e.commitStructural("moveLabel", next), nil
}

// ResetNodePositions drops every manual node position override.
func (e *Engine) ResetNodePositions() (*domain.DiagramState, error) {
	next := e.present.Clone()
	next.Layout.Nodes = make(map[string]domain.Point)
	return e.commitStructural("resetNodePositions", next), nil
}

// ResetLabelPositions drops every manual label offset.
func (e *Engine) ResetLabelPositions() (*domain.DiagramState, error) {
	next := e.present.Clone()
	next.Layout.Labels = make(map[string]domain.Point)
	return e.commitStructural("resetLabelPositions", next), nil
}

// AddIndependentLabel places a free-floating annotation. A missing ID
// is generated.
func (e *Engine) AddIndependentLabel(label domain.IndependentLabel) (*domain.DiagramState, error) {
	if strings.TrimSpace(label.Text) == "" {
		return e.present, e.reject("addIndependentLabel", domain.ValidationError{Field: "text", Reason: "text must not be blank"})
	}
	if label.ID == "" {
		label.ID = uuid.NewString()
	} else if _, _, exists := e.present.LabelByID(label.ID); exists {
		return e.present, e.reject("addIndependentLabel", domain.ValidationError{Field: "id", Reason: "label " + label.ID + " already exists"})
	}

	next := e.present.Clone()
	next.Labels = append(next.Labels, label)
	return e.commitStructural("addIndependentLabel", next), nil
}

// UpdateIndependentLabel applies a partial update to one label.
func (e *Engine) UpdateIndependentLabel(id string, upd LabelUpdate) (*domain.DiagramState, error) {
	_, idx, ok := e.present.LabelByID(id)
	if !ok {
		return e.present, e.reject("updateIndependentLabel", domain.ValidationError{Field: "id", Reason: domain.ErrUnknownLabel.Error() + ": " + id})
	}

	next := e.present.Clone()
	label := &next.Labels[idx]
	if upd.Text != nil {
		label.Text = *upd.Text
	}
	if upd.X != nil {
		label.X = *upd.X
	}
	if upd.Y != nil {
		label.Y = *upd.Y
	}
	if upd.FontSize != nil {
		label.FontSize = *upd.FontSize
	}
	if upd.Color != nil {
		label.Color = *upd.Color
	}
	if upd.Bold != nil {
		label.Bold = *upd.Bold
	}
	if upd.Italic != nil {
		label.Italic = *upd.Italic
	}
	return e.commitStructural("updateIndependentLabel", next), nil
}

// DeleteIndependentLabel removes one label.
func (e *Engine) DeleteIndependentLabel(id string) (*domain.DiagramState, error) {
	_, idx, ok := e.present.LabelByID(id)
	if !ok {
		return e.present, e.reject("deleteIndependentLabel", domain.ValidationError{Field: "id", Reason: domain.ErrUnknownLabel.Error() + ": " + id})
	}

	next := e.present.Clone()
	next.Labels = append(next.Labels[:idx], next.Labels[idx+1:]...)
	return e.commitStructural("deleteIndependentLabel", next), nil
}

// UpdateSettings replaces the settings record, normalizing enum fields.
func (e *Engine) UpdateSettings(s domain.DiagramSettings) (*domain.DiagramState, error) {
	if s.Decimals != "" && !s.Decimals.Valid() {
		return e.present, e.reject("updateSettings", domain.ValidationError{Field: "decimals", Reason: "unknown decimal policy " + string(s.Decimals)})
	}
	if s.ValueDisplay != "" && !s.ValueDisplay.Valid() {
		return e.present, e.reject("updateSettings", domain.ValidationError{Field: "value_display", Reason: "unknown display mode " + string(s.ValueDisplay)})
	}

	next := e.present.Clone()
	next.Settings = s.Normalize()
	return e.commitStructural("updateSettings", next), nil
}

// SelectNode changes the selection without creating an undo step.
// Selection is view state, not document state.
func (e *Engine) SelectNode(id string) *domain.DiagramState {
	if id != "" {
		if _, ok := e.present.Data.NodeByID(id); !ok {
			return e.present
		}
	}
	next := e.present.Clone()
	next.Selection.NodeID = id
	e.present = next
	return e.present
}

// SetRawText is the text command: DSLText updates immediately so the
// user can hold momentarily invalid text, and when the text parses
// cleanly into different structured data the whole change lands as one
// undo step. Invalid or no-op runs replace the present snapshot in
// place, so the undo stack never fills with per-keystroke entries.
func (e *Engine) SetRawText(text string) (*domain.DiagramState, []dsl.Diagnostic) {
	data, diags := dsl.Parse(text)
	metrics.ParseDiagnosticsTotal.Add(float64(len(diags)))

	next := e.present.Clone()
	next.DSLText = text

	if len(diags) > 0 || dataEqual(next.Data, data) {
		// Text-only change: keep history untouched.
		e.present = next
		metrics.ObserveCommand("setRawText", nil)
		return e.present, diags
	}

	next.Data = data
	next.Layout.Labels = make(map[string]domain.Point, len(data.LabelOffsets))
	for id, p := range data.LabelOffsets {
		next.Layout.Labels[id] = p
	}
	e.healOrphans(next)
	metrics.ObserveCommand("setRawText", nil)
	return e.commit(next), nil
}

// validateLink checks intrinsic link invariants plus endpoint
// existence against the current node set.
func (e *Engine) validateLink(link domain.Link) error {
	if err := link.Validate(); err != nil {
		return err
	}
	idx := e.present.Data.NodeIndex()
	if _, ok := idx[link.Source]; !ok {
		return domain.ValidationError{Field: "source", Reason: domain.ErrUnknownNode.Error() + ": " + link.Source}
	}
	if _, ok := idx[link.Target]; !ok {
		return domain.ValidationError{Field: "target", Reason: domain.ErrUnknownNode.Error() + ": " + link.Target}
	}
	return nil
}

func (e *Engine) reject(command string, err error) error {
	metrics.ObserveCommand(command, err)
	e.logger.Debug("command rejected", "command", command, "err", err)
	return err
}

func mergeCustomization(base, upd domain.NodeCustomization) domain.NodeCustomization {
	out := base.Clone()
	if upd.FillColor != nil {
		out.FillColor = upd.FillColor
	}
	if upd.LabelText != nil {
		out.LabelText = upd.LabelText
	}
	if upd.FontFamily != nil {
		out.FontFamily = upd.FontFamily
	}
	if upd.FontSize != nil {
		out.FontSize = upd.FontSize
	}
	if upd.FontStyle != nil {
		out.FontStyle = upd.FontStyle
	}
	if upd.LabelAlign != nil {
		out.LabelAlign = upd.LabelAlign
	}
	if upd.MarginX != nil {
		out.MarginX = upd.MarginX
	}
	if upd.MarginY != nil {
		out.MarginY = upd.MarginY
	}
	if upd.Background != nil {
		out.Background = upd.Background
	}
	return out
}
