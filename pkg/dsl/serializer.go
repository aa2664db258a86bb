package dsl

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
)

// Serialize renders structured data back to notation text. Raw lines
// (comments, blanks) are re-emitted at their recorded indices; all
// generated lines use normalized whitespace and color formatting.
func Serialize(data domain.SankeyData) string {
	generated := generateLines(data)

	rawAt := make(map[int]string, len(data.RawLines))
	order := make([]int, 0, len(data.RawLines))
	for _, rl := range data.RawLines {
		if _, dup := rawAt[rl.Index]; !dup {
			order = append(order, rl.Index)
		}
		rawAt[rl.Index] = rl.Text
	}
	sort.Ints(order)

	total := len(generated) + len(order)
	var b strings.Builder
	next := 0
	for i := 0; i < total; i++ {
		if text, ok := rawAt[i]; ok {
			b.WriteString(text)
		} else if next < len(generated) {
			b.WriteString(generated[next])
			next++
		} else {
			// Raw line anchored past the end of the content; emit the
			// remaining raw lines back to back.
			continue
		}
		b.WriteByte('\n')
	}
	// Anchors beyond the woven range still need to appear.
	for _, idx := range order {
		if idx >= total {
			b.WriteString(rawAt[idx])
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func generateLines(data domain.SankeyData) []string {
	names := make(map[string]string, len(data.Nodes))
	linked := make(map[string]bool)
	for _, n := range data.Nodes {
		names[n.ID] = n.Name
	}
	for _, l := range data.Links {
		linked[l.Source] = true
		linked[l.Target] = true
	}

	var lines []string

	// Declarations come first: styled nodes, and nodes no flow would
	// otherwise recreate.
	for _, n := range data.Nodes {
		styled := n.Color != "" || n.Category != ""
		if !styled && linked[n.ID] {
			continue
		}
		var b strings.Builder
		b.WriteByte(':')
		b.WriteString(n.Name)
		if n.Color != "" {
			b.WriteByte(' ')
			b.WriteString(normalizeOrKeep(n.Color))
		}
		if n.Category != "" {
			b.WriteString(" .")
			b.WriteString(string(n.Category))
		}
		lines = append(lines, b.String())
	}

	for _, l := range data.Links {
		var b strings.Builder
		b.WriteString(displayName(names, l.Source))
		b.WriteString(" [")
		b.WriteString(formatValue(l.Value))
		b.WriteString("] ")
		b.WriteString(displayName(names, l.Target))
		if l.Color != "" {
			b.WriteByte(' ')
			b.WriteString(normalizeOrKeep(l.Color))
		}
		if l.PreviousValue != 0 || l.ComparisonLabel != "" {
			b.WriteString(" {")
			b.WriteString(formatValue(l.PreviousValue))
			if l.ComparisonLabel != "" {
				b.WriteString(", ")
				b.WriteString(l.ComparisonLabel)
			}
			b.WriteByte('}')
		}
		lines = append(lines, b.String())
	}

	// Deterministic labelmove order keeps serialization stable.
	offsets := make([]string, 0, len(data.LabelOffsets))
	for id := range data.LabelOffsets {
		offsets = append(offsets, id)
	}
	sort.Strings(offsets)
	for _, id := range offsets {
		p := data.LabelOffsets[id]
		lines = append(lines, "labelmove "+displayName(names, id)+" "+
			formatValue(p.X)+", "+formatValue(p.Y))
	}

	return lines
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func normalizeOrKeep(color string) string {
	if c, ok := NormalizeColor(color); ok {
		return c
	}
	return color
}
