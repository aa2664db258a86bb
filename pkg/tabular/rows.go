// Package tabular converts diagram data to and from a flat row list,
// one row per link, for grid-style editors. It is a convenience layer:
// row edits map onto the engine's link commands, so the table and the
// text notation can never drift apart.
package tabular

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
)

// Row is one link presented with display names instead of node IDs.
// Index is the link's position in the diagram's link list.
type Row struct {
	Index           int     `json:"index"`
	Source          string  `json:"source"`
	Target          string  `json:"target"`
	Value           float64 `json:"value"`
	Color           string  `json:"color,omitempty"`
	PreviousValue   float64 `json:"previous_value,omitempty"`
	ComparisonLabel string  `json:"comparison_label,omitempty"`
}

// Rows flattens the link list. Unknown endpoint IDs (which should not
// occur) fall back to the raw ID so the row stays renderable.
func Rows(data domain.SankeyData) []Row {
	names := make(map[string]string, len(data.Nodes))
	for _, n := range data.Nodes {
		names[n.ID] = n.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	rows := make([]Row, len(data.Links))
	for i, l := range data.Links {
		rows[i] = Row{
			Index:           i,
			Source:          name(l.Source),
			Target:          name(l.Target),
			Value:           l.Value,
			Color:           l.Color,
			PreviousValue:   l.PreviousValue,
			ComparisonLabel: l.ComparisonLabel,
		}
	}
	return rows
}

// Link converts an edited row back into a link, deriving node IDs from
// the display names the grid shows.
func (r Row) Link() domain.Link {
	return domain.Link{
		Source:          domain.DeriveID(r.Source),
		Target:          domain.DeriveID(r.Target),
		Value:           r.Value,
		Color:           r.Color,
		PreviousValue:   r.PreviousValue,
		ComparisonLabel: r.ComparisonLabel,
	}
}

// CSVHeader is the column order used by WriteCSV.
var CSVHeader = []string{"source", "target", "value", "color", "previous_value", "comparison_label"}

// WriteCSV renders the rows as CSV, header included.
func WriteCSV(data domain.SankeyData) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(CSVHeader); err != nil {
		return "", err
	}
	for _, r := range Rows(data) {
		record := []string{
			r.Source,
			r.Target,
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Color,
			formatOptional(r.PreviousValue),
			r.ComparisonLabel,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

func formatOptional(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
