package domain

// ValueDisplayMode controls where flow values are rendered.
type ValueDisplayMode string

const (
	ValueDisplayAll       ValueDisplayMode = "all"
	ValueDisplayNone      ValueDisplayMode = "none"
	ValueDisplayEndpoints ValueDisplayMode = "endpoints"
)

// Valid reports whether m is a known display mode.
func (m ValueDisplayMode) Valid() bool {
	switch m {
	case ValueDisplayAll, ValueDisplayNone, ValueDisplayEndpoints:
		return true
	}
	return false
}

// DecimalPolicy controls how flow values are formatted.
type DecimalPolicy string

const (
	DecimalsAuto DecimalPolicy = "auto"
	DecimalsZero DecimalPolicy = "zero"
	DecimalsOne  DecimalPolicy = "one"
	DecimalsTwo  DecimalPolicy = "two"
)

// Valid reports whether p is a known decimal policy.
func (p DecimalPolicy) Valid() bool {
	switch p {
	case DecimalsAuto, DecimalsZero, DecimalsOne, DecimalsTwo:
		return true
	}
	return false
}

// DiagramSettings is the flat, global formatting configuration. Every
// field has a documented default; unknown values persisted by older
// versions fall back to those defaults on load.
type DiagramSettings struct {
	ValuePrefix    string           `json:"value_prefix,omitempty" yaml:"value_prefix,omitempty"`
	ValueSuffix    string           `json:"value_suffix,omitempty" yaml:"value_suffix,omitempty"`
	Decimals       DecimalPolicy    `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	ValueDisplay   ValueDisplayMode `json:"value_display,omitempty" yaml:"value_display,omitempty"`
	Palette        string           `json:"palette,omitempty" yaml:"palette,omitempty"`
	ShowComparison bool             `json:"show_comparison,omitempty" yaml:"show_comparison,omitempty"`
	LabelFontSize  float64          `json:"label_font_size,omitempty" yaml:"label_font_size,omitempty"`
	NodeWidth      float64          `json:"node_width,omitempty" yaml:"node_width,omitempty"`
	NodePadding    float64          `json:"node_padding,omitempty" yaml:"node_padding,omitempty"`
}

// DefaultSettings returns the documented defaults for a fresh diagram.
func DefaultSettings() DiagramSettings {
	return DiagramSettings{
		Decimals:      DecimalsAuto,
		ValueDisplay:  ValueDisplayAll,
		Palette:       "default",
		LabelFontSize: 14,
		NodeWidth:     24,
		NodePadding:   40,
	}
}

// Normalize replaces out-of-range enum values with their defaults.
// Used when loading persisted snapshots produced by other versions.
func (s DiagramSettings) Normalize() DiagramSettings {
	def := DefaultSettings()
	if !s.Decimals.Valid() || s.Decimals == "" {
		s.Decimals = def.Decimals
	}
	if !s.ValueDisplay.Valid() || s.ValueDisplay == "" {
		s.ValueDisplay = def.ValueDisplay
	}
	if s.Palette == "" {
		s.Palette = def.Palette
	}
	if s.LabelFontSize <= 0 {
		s.LabelFontSize = def.LabelFontSize
	}
	if s.NodeWidth <= 0 {
		s.NodeWidth = def.NodeWidth
	}
	if s.NodePadding <= 0 {
		s.NodePadding = def.NodePadding
	}
	return s
}
