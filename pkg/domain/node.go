package domain

import (
	"strings"
	"unicode"
)

// Category classifies a node for palette and reporting purposes.
type Category string

const (
	CategoryRevenue Category = "revenue"
	CategoryExpense Category = "expense"
	CategoryProfit  Category = "profit"
	CategoryNeutral Category = "neutral"
)

// Valid reports whether c is one of the known categories.
// The empty category is valid and means "unclassified".
func (c Category) Valid() bool {
	switch c {
	case "", CategoryRevenue, CategoryExpense, CategoryProfit, CategoryNeutral:
		return true
	}
	return false
}

// Node represents a named endpoint in the flow graph.
// ID is the stable identity referenced by links, customizations and layout
// entries; Name is the display form the ID is derived from.
type Node struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Color     string   `json:"color,omitempty" yaml:"color,omitempty"`
	Category  Category `json:"category,omitempty" yaml:"category,omitempty"`
	LabelText string   `json:"label_text,omitempty" yaml:"label_text,omitempty"`
}

// DeriveID computes the stable node identity from a display name.
// The derivation is deterministic: case-folded, with every run of
// whitespace collapsed to a single underscore.
func DeriveID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	inSpace := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		inSpace = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// NewNode builds a node with its ID derived from name.
func NewNode(name string) Node {
	return Node{ID: DeriveID(name), Name: name}
}
