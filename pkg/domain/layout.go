package domain

// Point is a 2D position or offset on the canvas.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// CustomLayout records only the manual overrides of the computed
// layout. Nodes maps node IDs to absolute positions; Labels maps node
// IDs to label offsets relative to the node's default label anchor.
type CustomLayout struct {
	Nodes  map[string]Point `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Labels map[string]Point `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// NewCustomLayout returns an empty layout with both maps allocated.
func NewCustomLayout() CustomLayout {
	return CustomLayout{
		Nodes:  make(map[string]Point),
		Labels: make(map[string]Point),
	}
}

// Clone returns a deep copy of the layout.
func (l CustomLayout) Clone() CustomLayout {
	out := NewCustomLayout()
	for id, p := range l.Nodes {
		out.Nodes[id] = p
	}
	for id, p := range l.Labels {
		out.Labels[id] = p
	}
	return out
}

// Rename migrates both maps from oldID to newID. Existing entries under
// newID are overwritten; missing entries are simply skipped.
func (l CustomLayout) Rename(oldID, newID string) {
	if p, ok := l.Nodes[oldID]; ok {
		delete(l.Nodes, oldID)
		l.Nodes[newID] = p
	}
	if p, ok := l.Labels[oldID]; ok {
		delete(l.Labels, oldID)
		l.Labels[newID] = p
	}
}

// Remove drops both entries for the given node ID.
func (l CustomLayout) Remove(id string) {
	delete(l.Nodes, id)
	delete(l.Labels, id)
}
