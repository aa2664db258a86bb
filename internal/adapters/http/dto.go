package http

import (
	"github.com/aretw0/flume"
	"github.com/aretw0/flume/pkg/domain"
)

// Command payloads. Pointer fields follow the engine convention: nil
// means "leave untouched".

type addNodeParams struct {
	Name string `json:"name"`
}

type updateNodeParams struct {
	ID        string  `json:"id"`
	Name      *string `json:"name,omitempty"`
	Color     *string `json:"color,omitempty"`
	Category  *string `json:"category,omitempty"`
	LabelText *string `json:"label_text,omitempty"`
}

func (p updateNodeParams) toUpdate() flume.NodeUpdate {
	upd := flume.NodeUpdate{
		Name:      p.Name,
		Color:     p.Color,
		LabelText: p.LabelText,
	}
	if p.Category != nil {
		cat := domain.Category(*p.Category)
		upd.Category = &cat
	}
	return upd
}

type idParams struct {
	ID string `json:"id"`
}

type indexParams struct {
	Index int `json:"index"`
}

type updateLinkParams struct {
	Index           int      `json:"index"`
	Source          *string  `json:"source,omitempty"`
	Target          *string  `json:"target,omitempty"`
	Value           *float64 `json:"value,omitempty"`
	PreviousValue   *float64 `json:"previous_value,omitempty"`
	ComparisonLabel *string  `json:"comparison_label,omitempty"`
	Color           *string  `json:"color,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
}

func (p updateLinkParams) toUpdate() flume.LinkUpdate {
	return flume.LinkUpdate{
		Source:          p.Source,
		Target:          p.Target,
		Value:           p.Value,
		PreviousValue:   p.PreviousValue,
		ComparisonLabel: p.ComparisonLabel,
		Color:           p.Color,
		Opacity:         p.Opacity,
	}
}

type customizationParams struct {
	ID string `json:"id"`
	domain.NodeCustomization
}

type moveParams struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type updateLabelParams struct {
	ID       string   `json:"id"`
	Text     *string  `json:"text,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	FontSize *float64 `json:"font_size,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Bold     *bool    `json:"bold,omitempty"`
	Italic   *bool    `json:"italic,omitempty"`
}

func (p updateLabelParams) toUpdate() flume.LabelUpdate {
	return flume.LabelUpdate{
		Text:     p.Text,
		X:        p.X,
		Y:        p.Y,
		FontSize: p.FontSize,
		Color:    p.Color,
		Bold:     p.Bold,
		Italic:   p.Italic,
	}
}

type autoBalanceParams struct {
	NodeID string `json:"node_id"`
}

// stateResponse is the envelope every mutating endpoint returns.
type stateResponse struct {
	State       *domain.DiagramState `json:"state"`
	CanUndo     bool                 `json:"can_undo"`
	CanRedo     bool                 `json:"can_redo"`
	Diagnostics []string             `json:"diagnostics,omitempty"`
}
