package changes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/flume/pkg/balance"
	"github.com/aretw0/flume/pkg/domain"
)

// Apply validates cs against current and returns the merged state.
// On any validation failure the error carries every violation and the
// returned state is current itself: partial application is never
// observable. The caller (the engine) pushes the result through
// history and re-serializes the text view.
func Apply(current *domain.DiagramState, cs ChangeSet) (*domain.DiagramState, error) {
	next := current.Clone()
	var errs domain.ValidationErrors

	applyNodes(next, cs, &errs)
	applyLinks(next, cs, &errs)
	applyCustomizations(next, cs, &errs)
	applyLabels(next, cs, &errs)
	applySettings(next, cs, &errs)

	if len(errs) > 0 {
		return current, errs
	}
	return next, nil
}

func applyNodes(next *domain.DiagramState, cs ChangeSet, errs *domain.ValidationErrors) {
	// Deterministic order keeps error lists and node append order stable.
	ids := make([]string, 0, len(cs.Nodes))
	for id := range cs.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ch := cs.Nodes[id]
		idx, exists := next.Data.NodeIndex()[id]

		if !exists {
			// Additions ride in the same change set, keyed by the ID
			// the new name derives to.
			if ch.Name == nil {
				*errs = append(*errs, domain.ValidationError{Field: "nodes." + id, Reason: domain.ErrUnknownNode.Error()})
				continue
			}
			if domain.DeriveID(*ch.Name) != id {
				*errs = append(*errs, domain.ValidationError{
					Field:  "nodes." + id,
					Reason: fmt.Sprintf("name %q derives to %q, not %q", *ch.Name, domain.DeriveID(*ch.Name), id),
				})
				continue
			}
			node := domain.NewNode(*ch.Name)
			applyNodeFields(&node, ch, errs)
			next.Data.Nodes = append(next.Data.Nodes, node)
			continue
		}

		node := &next.Data.Nodes[idx]
		if ch.Name != nil && strings.TrimSpace(*ch.Name) == "" {
			*errs = append(*errs, domain.ValidationError{Field: "nodes." + id + ".name", Reason: "name must not be blank"})
			continue
		}
		oldID := node.ID
		applyNodeFields(node, ch, errs)
		if node.ID != oldID {
			if _, taken := next.Data.NodeByID(node.ID); taken {
				// NodeByID found another node with the migrated ID.
				// Walk manually: the rename is only a conflict when a
				// *different* node already owns the identity.
				for i, other := range next.Data.Nodes {
					if other.ID == node.ID && i != idx {
						*errs = append(*errs, domain.ValidationError{Field: "nodes." + id + ".name", Reason: "identity " + node.ID + " is already taken"})
						node.ID = oldID
						break
					}
				}
			}
			if node.ID != oldID {
				migrateIdentity(next, oldID, node.ID)
			}
		}
	}
}

func applyNodeFields(node *domain.Node, ch NodeChange, errs *domain.ValidationErrors) {
	if ch.Name != nil && strings.TrimSpace(*ch.Name) != "" {
		node.Name = *ch.Name
		node.ID = domain.DeriveID(*ch.Name)
	}
	if ch.Color != nil {
		if *ch.Color == ClearSentinel {
			node.Color = ""
		} else {
			node.Color = *ch.Color
		}
	}
	if ch.Category != nil {
		if *ch.Category == ClearSentinel {
			node.Category = ""
		} else {
			cat := domain.Category(*ch.Category)
			if !cat.Valid() {
				*errs = append(*errs, domain.ValidationError{Field: "category", Reason: "unknown category " + *ch.Category})
			} else {
				node.Category = cat
			}
		}
	}
	if ch.LabelText != nil {
		if *ch.LabelText == ClearSentinel {
			node.LabelText = ""
		} else {
			node.LabelText = *ch.LabelText
		}
	}
}

// migrateIdentity rewrites every reference from oldID to newID inside
// the pending state, mirroring the engine's rename cascade.
func migrateIdentity(next *domain.DiagramState, oldID, newID string) {
	for i := range next.Data.Links {
		if next.Data.Links[i].Source == oldID {
			next.Data.Links[i].Source = newID
		}
		if next.Data.Links[i].Target == oldID {
			next.Data.Links[i].Target = newID
		}
	}
	if c, ok := next.Customizations[oldID]; ok {
		delete(next.Customizations, oldID)
		next.Customizations[newID] = c
	}
	next.Layout.Rename(oldID, newID)
	if next.Selection.NodeID == oldID {
		next.Selection.NodeID = newID
	}
}

func applyLinks(next *domain.DiagramState, cs ChangeSet, errs *domain.ValidationErrors) {
	if cs.Links == nil {
		return
	}
	idx := next.Data.NodeIndex()
	replacement := make([]domain.Link, 0, len(*cs.Links))
	for i, l := range *cs.Links {
		if err := l.Validate(); err != nil {
			*errs = append(*errs, domain.ValidationError{Field: fmt.Sprintf("links[%d]", i), Reason: err.Error()})
			continue
		}
		if _, ok := idx[l.Source]; !ok {
			*errs = append(*errs, domain.ValidationError{Field: fmt.Sprintf("links[%d].source", i), Reason: domain.ErrUnknownNode.Error() + ": " + l.Source})
			continue
		}
		if _, ok := idx[l.Target]; !ok {
			*errs = append(*errs, domain.ValidationError{Field: fmt.Sprintf("links[%d].target", i), Reason: domain.ErrUnknownNode.Error() + ": " + l.Target})
			continue
		}
		replacement = append(replacement, l)
	}
	next.Data.Links = replacement
}

func applyCustomizations(next *domain.DiagramState, cs ChangeSet, errs *domain.ValidationErrors) {
	idx := next.Data.NodeIndex()
	ids := make([]string, 0, len(cs.Customizations))
	for id := range cs.Customizations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, ok := idx[id]; !ok {
			*errs = append(*errs, domain.ValidationError{Field: "customizations." + id, Reason: domain.ErrUnknownNode.Error()})
			continue
		}
		merged := mergeCustomization(next.Customizations[id], cs.Customizations[id])
		if merged.IsZero() {
			delete(next.Customizations, id)
		} else {
			next.Customizations[id] = merged
		}
	}
}

// mergeCustomization overlays upd onto base. Nil leaves the base value;
// a ClearSentinel string resets the field to "inherit".
func mergeCustomization(base, upd domain.NodeCustomization) domain.NodeCustomization {
	out := base.Clone()
	mergeStr := func(dst **string, src *string) {
		if src == nil {
			return
		}
		if *src == ClearSentinel {
			*dst = nil
			return
		}
		v := *src
		*dst = &v
	}
	mergeNum := func(dst **float64, src *float64) {
		if src == nil {
			return
		}
		v := *src
		*dst = &v
	}
	mergeStr(&out.FillColor, upd.FillColor)
	mergeStr(&out.LabelText, upd.LabelText)
	mergeStr(&out.FontFamily, upd.FontFamily)
	mergeNum(&out.FontSize, upd.FontSize)
	mergeStr(&out.FontStyle, upd.FontStyle)
	mergeStr(&out.LabelAlign, upd.LabelAlign)
	mergeNum(&out.MarginX, upd.MarginX)
	mergeNum(&out.MarginY, upd.MarginY)
	mergeStr(&out.Background, upd.Background)
	return out
}

func applyLabels(next *domain.DiagramState, cs ChangeSet, errs *domain.ValidationErrors) {
	for i, ch := range cs.Labels {
		if ch.ID == "" {
			*errs = append(*errs, domain.ValidationError{Field: fmt.Sprintf("labels[%d].id", i), Reason: "id is required"})
			continue
		}
		_, idx, exists := next.LabelByID(ch.ID)

		if ch.Delete {
			if exists {
				next.Labels = append(next.Labels[:idx], next.Labels[idx+1:]...)
			}
			continue
		}

		if !exists {
			if ch.Text == nil || strings.TrimSpace(*ch.Text) == "" {
				*errs = append(*errs, domain.ValidationError{Field: fmt.Sprintf("labels[%d]", i), Reason: "new label needs text"})
				continue
			}
			label := domain.IndependentLabel{ID: ch.ID, Text: *ch.Text}
			applyLabelFields(&label, ch)
			next.Labels = append(next.Labels, label)
			continue
		}

		label := next.Labels[idx]
		applyLabelFields(&label, ch)
		next.Labels[idx] = label
	}
}

func applyLabelFields(label *domain.IndependentLabel, ch LabelChange) {
	if ch.Text != nil {
		label.Text = *ch.Text
	}
	if ch.X != nil {
		label.X = *ch.X
	}
	if ch.Y != nil {
		label.Y = *ch.Y
	}
	if ch.FontSize != nil {
		label.FontSize = *ch.FontSize
	}
	if ch.Color != nil {
		if *ch.Color == ClearSentinel {
			label.Color = ""
		} else {
			label.Color = *ch.Color
		}
	}
	if ch.Bold != nil {
		label.Bold = *ch.Bold
	}
	if ch.Italic != nil {
		label.Italic = *ch.Italic
	}
}

func applySettings(next *domain.DiagramState, cs ChangeSet, errs *domain.ValidationErrors) {
	if cs.Settings == nil {
		return
	}
	ch := cs.Settings
	s := next.Settings

	if ch.ValuePrefix != nil {
		s.ValuePrefix = clearable(*ch.ValuePrefix)
	}
	if ch.ValueSuffix != nil {
		s.ValueSuffix = clearable(*ch.ValueSuffix)
	}
	if ch.Decimals != nil {
		p := domain.DecimalPolicy(*ch.Decimals)
		if !p.Valid() {
			*errs = append(*errs, domain.ValidationError{Field: "settings.decimals", Reason: "unknown decimal policy " + *ch.Decimals})
		} else {
			s.Decimals = p
		}
	}
	if ch.ValueDisplay != nil {
		m := domain.ValueDisplayMode(*ch.ValueDisplay)
		if !m.Valid() {
			*errs = append(*errs, domain.ValidationError{Field: "settings.value_display", Reason: "unknown display mode " + *ch.ValueDisplay})
		} else {
			s.ValueDisplay = m
		}
	}
	if ch.Palette != nil {
		s.Palette = *ch.Palette
	}
	if ch.ShowComparison != nil {
		s.ShowComparison = *ch.ShowComparison
	}
	if ch.LabelFontSize != nil {
		s.LabelFontSize = *ch.LabelFontSize
	}
	if ch.NodeWidth != nil {
		s.NodeWidth = *ch.NodeWidth
	}
	if ch.NodePadding != nil {
		s.NodePadding = *ch.NodePadding
	}

	next.Settings = s.Normalize()
}

func clearable(v string) string {
	if v == ClearSentinel {
		return ""
	}
	return v
}

// AdjustmentNodeName names the implicit counter-node synthesized by
// balance corrections.
const AdjustmentNodeName = "Adjustment"

// BalanceCorrection computes the change set that zeroes out one node's
// imbalance by synthesizing a link to the implicit adjustment node.
// It returns an empty set when the node is already balanced or is a
// structural source/sink.
func BalanceCorrection(current *domain.DiagramState, nodeID string) (ChangeSet, error) {
	if _, ok := current.Data.NodeByID(nodeID); !ok {
		return ChangeSet{}, domain.ValidationError{Field: "node_id", Reason: domain.ErrUnknownNode.Error() + ": " + nodeID}
	}

	report := balance.Analyze(current.Data)
	flow := report.PerNode[nodeID]
	if flow.IsSource() || flow.IsSink() {
		return ChangeSet{}, nil
	}

	delta := flow.Inflow - flow.Outflow
	if delta <= balance.Epsilon && delta >= -balance.Epsilon {
		return ChangeSet{}, nil
	}

	adjID := domain.DeriveID(AdjustmentNodeName)
	cs := ChangeSet{}
	if _, ok := current.Data.NodeByID(adjID); !ok {
		name := AdjustmentNodeName
		cs.Nodes = map[string]NodeChange{adjID: {Name: &name}}
	}

	links := append([]domain.Link(nil), current.Data.Links...)
	if delta > 0 {
		links = append(links, domain.Link{Source: nodeID, Target: adjID, Value: delta})
	} else {
		links = append(links, domain.Link{Source: adjID, Target: nodeID, Value: -delta})
	}
	cs.Links = &links
	return cs, nil
}
