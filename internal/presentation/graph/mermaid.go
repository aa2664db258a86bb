// Package graph renders diagram structure in Mermaid syntax for
// embedding in documentation and previews.
package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
)

// GenerateMermaid produces Mermaid sankey-beta syntax from diagram
// data. Each flow becomes one CSV record of source, target and value;
// names are quoted per CSV rules when they contain commas or quotes.
func GenerateMermaid(data domain.SankeyData) string {
	var sb strings.Builder
	sb.WriteString("sankey-beta\n\n")

	names := make(map[string]string, len(data.Nodes))
	for _, n := range data.Nodes {
		names[n.ID] = n.Name
	}

	for _, link := range data.Links {
		source := names[link.Source]
		if source == "" {
			source = link.Source
		}
		target := names[link.Target]
		if target == "" {
			target = link.Target
		}
		fmt.Fprintf(&sb, "%s,%s,%s\n",
			quoteMermaid(source),
			quoteMermaid(target),
			strconv.FormatFloat(link.Value, 'f', -1, 64),
		)
	}

	return sb.String()
}

func quoteMermaid(name string) string {
	if strings.ContainsAny(name, ",\"") {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}
