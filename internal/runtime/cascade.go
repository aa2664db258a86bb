package runtime

import (
	"reflect"

	"github.com/aretw0/flume/pkg/domain"
)

// cascadeRename rewrites every cross-reference from oldID to newID:
// link endpoints, the customization entry, both layout maps, and the
// selection. All references are string keys into lookup tables, so the
// migration is a set of targeted rewrites, never a graph traversal.
func (e *Engine) cascadeRename(next *domain.DiagramState, oldID, newID string) {
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

// cascadeDelete removes everything incident to a deleted node.
func (e *Engine) cascadeDelete(next *domain.DiagramState, id string) {
	links := next.Data.Links[:0]
	for _, l := range next.Data.Links {
		if l.Source == id || l.Target == id {
			continue
		}
		links = append(links, l)
	}
	next.Data.Links = links

	delete(next.Customizations, id)
	next.Layout.Remove(id)
	if next.Selection.NodeID == id {
		next.Selection.NodeID = ""
	}
}

// healOrphans drops customizations and layout entries that reference a
// node identity with no matching node. Such entries should never exist;
// when they do, the engine self-heals instead of propagating a crash.
func (e *Engine) healOrphans(next *domain.DiagramState) {
	idx := next.Data.NodeIndex()

	for id := range next.Customizations {
		if _, ok := idx[id]; !ok {
			e.logger.Warn("dropping orphaned customization", "node_id", id)
			delete(next.Customizations, id)
		}
	}
	for id := range next.Layout.Nodes {
		if _, ok := idx[id]; !ok {
			e.logger.Warn("dropping orphaned node position", "node_id", id)
			delete(next.Layout.Nodes, id)
		}
	}
	for id := range next.Layout.Labels {
		if _, ok := idx[id]; !ok {
			e.logger.Warn("dropping orphaned label offset", "node_id", id)
			delete(next.Layout.Labels, id)
		}
	}
	if next.Selection.NodeID != "" {
		if _, ok := idx[next.Selection.NodeID]; !ok {
			next.Selection.NodeID = ""
		}
	}
}

// dataEqual compares structural data, ignoring serialization artifacts
// that never reach the model (slice nil-ness vs emptiness).
func dataEqual(a, b domain.SankeyData) bool {
	return reflect.DeepEqual(normalizeData(a), normalizeData(b))
}

func normalizeData(d domain.SankeyData) domain.SankeyData {
	if len(d.Nodes) == 0 {
		d.Nodes = nil
	}
	if len(d.Links) == 0 {
		d.Links = nil
	}
	if len(d.LabelOffsets) == 0 {
		d.LabelOffsets = nil
	}
	if len(d.RawLines) == 0 {
		d.RawLines = nil
	}
	return d
}
