package domain

// IndependentLabel is a free-floating annotation placed on the canvas,
// not attached to any node.
type IndependentLabel struct {
	ID       string  `json:"id" yaml:"id"`
	Text     string  `json:"text" yaml:"text"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	FontSize float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	Color    string  `json:"color,omitempty" yaml:"color,omitempty"`
	Bold     bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic   bool    `json:"italic,omitempty" yaml:"italic,omitempty"`
}
