package domain

// NodeCustomization is a sparse set of visual overrides for one node.
// Every field is a pointer: nil means "inherit the default", never
// "reset to the default". This distinction is what lets partial
// external updates merge without clobbering untouched fields.
type NodeCustomization struct {
	FillColor  *string  `json:"fill_color,omitempty" yaml:"fill_color,omitempty"`
	LabelText  *string  `json:"label_text,omitempty" yaml:"label_text,omitempty"`
	FontFamily *string  `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	FontSize   *float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FontStyle  *string  `json:"font_style,omitempty" yaml:"font_style,omitempty"`
	LabelAlign *string  `json:"label_align,omitempty" yaml:"label_align,omitempty"`
	MarginX    *float64 `json:"margin_x,omitempty" yaml:"margin_x,omitempty"`
	MarginY    *float64 `json:"margin_y,omitempty" yaml:"margin_y,omitempty"`
	Background *string  `json:"background,omitempty" yaml:"background,omitempty"`
}

// IsZero reports whether no override is set at all. Engines drop
// zero-valued entries instead of keeping empty records around.
func (c NodeCustomization) IsZero() bool {
	return c.FillColor == nil && c.LabelText == nil && c.FontFamily == nil &&
		c.FontSize == nil && c.FontStyle == nil && c.LabelAlign == nil &&
		c.MarginX == nil && c.MarginY == nil && c.Background == nil
}

// Clone returns a deep copy. Pointer fields are re-allocated so the
// copy shares no memory with the original.
func (c NodeCustomization) Clone() NodeCustomization {
	out := NodeCustomization{}
	out.FillColor = cloneString(c.FillColor)
	out.LabelText = cloneString(c.LabelText)
	out.FontFamily = cloneString(c.FontFamily)
	out.FontSize = cloneFloat(c.FontSize)
	out.FontStyle = cloneString(c.FontStyle)
	out.LabelAlign = cloneString(c.LabelAlign)
	out.MarginX = cloneFloat(c.MarginX)
	out.MarginY = cloneFloat(c.MarginY)
	out.Background = cloneString(c.Background)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
