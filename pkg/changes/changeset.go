// Package changes validates and merges externally proposed partial
// diagrams into the current state. Merging is deep: fields absent from
// an update leave the existing record untouched, so a proposer can say
// "only change this node's color" without restating anything else.
// Validation is all-or-nothing; a rejected change set leaves prior
// state observable and unchanged.
package changes

import "github.com/aretw0/flume/pkg/domain"

// ClearSentinel, when supplied as the value of a string field, asks for
// an explicit reset to the default. This keeps "clear this field"
// distinguishable from "don't touch this field", which plain optional
// fields cannot express on the wire.
const ClearSentinel = "-"

// NodeChange is a partial node-field update. A change keyed by an
// unknown node ID with a Name present adds that node as part of the
// same change set.
type NodeChange struct {
	Name      *string `json:"name,omitempty" mapstructure:"name"`
	Color     *string `json:"color,omitempty" mapstructure:"color"`
	Category  *string `json:"category,omitempty" mapstructure:"category"`
	LabelText *string `json:"label_text,omitempty" mapstructure:"label_text"`
}

// LabelChange upserts or deletes one independent label.
type LabelChange struct {
	ID       string   `json:"id" mapstructure:"id"`
	Delete   bool     `json:"delete,omitempty" mapstructure:"delete"`
	Text     *string  `json:"text,omitempty" mapstructure:"text"`
	X        *float64 `json:"x,omitempty" mapstructure:"x"`
	Y        *float64 `json:"y,omitempty" mapstructure:"y"`
	FontSize *float64 `json:"font_size,omitempty" mapstructure:"font_size"`
	Color    *string  `json:"color,omitempty" mapstructure:"color"`
	Bold     *bool    `json:"bold,omitempty" mapstructure:"bold"`
	Italic   *bool    `json:"italic,omitempty" mapstructure:"italic"`
}

// SettingsChange is a partial settings update.
type SettingsChange struct {
	ValuePrefix    *string  `json:"value_prefix,omitempty" mapstructure:"value_prefix"`
	ValueSuffix    *string  `json:"value_suffix,omitempty" mapstructure:"value_suffix"`
	Decimals       *string  `json:"decimals,omitempty" mapstructure:"decimals"`
	ValueDisplay   *string  `json:"value_display,omitempty" mapstructure:"value_display"`
	Palette        *string  `json:"palette,omitempty" mapstructure:"palette"`
	ShowComparison *bool    `json:"show_comparison,omitempty" mapstructure:"show_comparison"`
	LabelFontSize  *float64 `json:"label_font_size,omitempty" mapstructure:"label_font_size"`
	NodeWidth      *float64 `json:"node_width,omitempty" mapstructure:"node_width"`
	NodePadding    *float64 `json:"node_padding,omitempty" mapstructure:"node_padding"`
}

// ChangeSet is a partial, externally proposed update. Any subset of the
// fields may be present.
type ChangeSet struct {
	// Links, when non-nil, fully replaces the link list.
	Links *[]domain.Link `json:"links,omitempty"`

	// Nodes maps node IDs to partial field updates (or additions).
	Nodes map[string]NodeChange `json:"nodes,omitempty"`

	// Customizations maps node IDs to partial customization updates.
	Customizations map[string]domain.NodeCustomization `json:"customizations,omitempty"`

	// Labels carries independent-label upserts and deletes.
	Labels []LabelChange `json:"labels,omitempty"`

	// Settings is a partial settings update.
	Settings *SettingsChange `json:"settings,omitempty"`
}

// Empty reports whether the change set carries nothing at all.
func (cs ChangeSet) Empty() bool {
	return cs.Links == nil && len(cs.Nodes) == 0 && len(cs.Customizations) == 0 &&
		len(cs.Labels) == 0 && cs.Settings == nil
}
