package domain

// RawLine is a comment or blank line captured from the textual
// notation, anchored by the line index it occupied. The codec re-emits
// raw lines at their recorded indices so user comments survive a
// parse/serialize round trip.
type RawLine struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}

// SankeyData is the structural half of a diagram: the nodes and the
// flows between them, plus the raw lines and label offsets recovered
// from the text that produced it.
type SankeyData struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Links []Link `json:"links" yaml:"links"`

	// LabelOffsets holds offsets parsed from labelmove lines. The
	// engine merges them into CustomLayout.Labels; they live here so
	// the codec can round-trip them without seeing the whole state.
	LabelOffsets map[string]Point `json:"label_offsets,omitempty" yaml:"label_offsets,omitempty"`

	// RawLines preserves comment and blank lines by index.
	RawLines []RawLine `json:"raw_lines,omitempty" yaml:"raw_lines,omitempty"`
}

// NodeByID returns the node with the given ID, if present.
func (d SankeyData) NodeByID(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIndex builds an id → position lookup for targeted rewrites.
func (d SankeyData) NodeIndex() map[string]int {
	idx := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Clone returns a deep copy of the data.
func (d SankeyData) Clone() SankeyData {
	out := SankeyData{
		Nodes: append([]Node(nil), d.Nodes...),
		Links: append([]Link(nil), d.Links...),
	}
	if d.LabelOffsets != nil {
		out.LabelOffsets = make(map[string]Point, len(d.LabelOffsets))
		for id, p := range d.LabelOffsets {
			out.LabelOffsets[id] = p
		}
	}
	if d.RawLines != nil {
		out.RawLines = append([]RawLine(nil), d.RawLines...)
	}
	return out
}

// Selection identifies what the user currently has selected, if
// anything. Only node selection participates in rename cascades.
type Selection struct {
	NodeID string `json:"node_id,omitempty" yaml:"node_id,omitempty"`
}

// DiagramState is the aggregate snapshot owned by the engine. Commands
// produce new snapshots; consumers treat every snapshot as immutable.
type DiagramState struct {
	Data           SankeyData                   `json:"data" yaml:"data"`
	Settings       DiagramSettings              `json:"settings" yaml:"settings"`
	Customizations map[string]NodeCustomization `json:"customizations,omitempty" yaml:"customizations,omitempty"`
	Labels         []IndependentLabel           `json:"labels,omitempty" yaml:"labels,omitempty"`
	Layout         CustomLayout                 `json:"layout" yaml:"layout"`
	DSLText        string                       `json:"dsl_text" yaml:"dsl_text"`
	Selection      Selection                    `json:"selection" yaml:"selection"`
}

// NewDiagramState returns an empty state with defaults applied.
func NewDiagramState() *DiagramState {
	return &DiagramState{
		Settings:       DefaultSettings(),
		Customizations: make(map[string]NodeCustomization),
		Layout:         NewCustomLayout(),
	}
}

// Clone returns a deep copy of the whole aggregate. Every command and
// every applicator works on a clone so prior snapshots stay intact.
func (s *DiagramState) Clone() *DiagramState {
	out := &DiagramState{
		Data:      s.Data.Clone(),
		Settings:  s.Settings,
		Labels:    append([]IndependentLabel(nil), s.Labels...),
		Layout:    s.Layout.Clone(),
		DSLText:   s.DSLText,
		Selection: s.Selection,
	}
	out.Customizations = make(map[string]NodeCustomization, len(s.Customizations))
	for id, c := range s.Customizations {
		out.Customizations[id] = c.Clone()
	}
	return out
}

// EnsureDefaults repairs a state decoded from a persisted snapshot:
// missing fields fall back to documented defaults and nil maps are
// allocated. Unknown persisted fields were already ignored by the
// decoder; the schema is additive.
func (s *DiagramState) EnsureDefaults() {
	s.Settings = s.Settings.Normalize()
	if s.Customizations == nil {
		s.Customizations = make(map[string]NodeCustomization)
	}
	if s.Layout.Nodes == nil {
		s.Layout.Nodes = make(map[string]Point)
	}
	if s.Layout.Labels == nil {
		s.Layout.Labels = make(map[string]Point)
	}
}

// LabelByID returns the independent label with the given ID, if present.
func (s *DiagramState) LabelByID(id string) (IndependentLabel, int, bool) {
	for i, l := range s.Labels {
		if l.ID == id {
			return l, i, true
		}
	}
	return IndependentLabel{}, -1, false
}
