package dsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/flume/pkg/domain"
)

// CommentMarker starts a comment line in the notation.
const CommentMarker = "//"

// Diagnostic reports a single malformed line. It never aborts parsing;
// callers decide whether diagnostics should block anything.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Parse converts notation text into structured data. Comment and blank
// lines are captured as RawLines so Serialize can re-emit them.
// Malformed lines are collected as diagnostics and skipped.
func Parse(text string) (domain.SankeyData, []Diagnostic) {
	p := &parser{
		seen: make(map[string]int),
	}
	lines := strings.Split(text, "\n")
	// A trailing newline produces one empty phantom line; dropping it
	// keeps RawLine indices stable across round trips.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, raw := range lines {
		p.parseLine(i, raw)
	}
	return p.data, p.diags
}

type parser struct {
	data  domain.SankeyData
	diags []Diagnostic
	seen  map[string]int // node id -> index into data.Nodes
}

func (p *parser) errf(line int, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Line: line + 1, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) parseLine(idx int, raw string) {
	line := strings.TrimSpace(raw)
	switch {
	case line == "" || strings.HasPrefix(line, CommentMarker):
		p.data.RawLines = append(p.data.RawLines, domain.RawLine{Index: idx, Text: raw})
	case strings.HasPrefix(line, ":"):
		p.parseDeclaration(idx, line)
	case strings.HasPrefix(line, "labelmove "):
		p.parseLabelMove(idx, line)
	default:
		p.parseFlow(idx, line)
	}
}

// ensureNode registers a node by display name, returning its position.
// First appearance wins for the display form; later styling merges in.
func (p *parser) ensureNode(name string) int {
	id := domain.DeriveID(name)
	if i, ok := p.seen[id]; ok {
		return i
	}
	p.data.Nodes = append(p.data.Nodes, domain.NewNode(name))
	i := len(p.data.Nodes) - 1
	p.seen[id] = i
	return i
}

// parseDeclaration handles ":Name #color .category" lines.
func (p *parser) parseDeclaration(idx int, line string) {
	rest := strings.TrimSpace(line[1:])
	if rest == "" {
		p.errf(idx, "node declaration is missing a name")
		return
	}

	var color string
	var category domain.Category

	// Trailing tokens peel off right-to-left so names keep their spaces.
	for {
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			break
		}
		last := fields[len(fields)-1]
		if c, ok := NormalizeColor(last); ok {
			color = c
		} else if strings.HasPrefix(last, ".") {
			cat := domain.Category(last[1:])
			if !cat.Valid() {
				p.errf(idx, "unknown category %q", last[1:])
				return
			}
			category = cat
		} else {
			break
		}
		rest = strings.TrimSpace(rest[:strings.LastIndex(rest, last)])
	}

	if rest == "" {
		p.errf(idx, "node declaration is missing a name")
		return
	}

	i := p.ensureNode(rest)
	if color != "" {
		p.data.Nodes[i].Color = color
	}
	if category != "" {
		p.data.Nodes[i].Category = category
	}
}

// parseLabelMove handles "labelmove Name dx, dy" lines.
func (p *parser) parseLabelMove(idx int, line string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "labelmove "))
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		p.errf(idx, "labelmove needs a name and two offsets")
		return
	}

	dyTok := fields[len(fields)-1]
	dxTok := strings.TrimSuffix(fields[len(fields)-2], ",")
	name := strings.Join(fields[:len(fields)-2], " ")
	if name == "" {
		p.errf(idx, "labelmove is missing a node name")
		return
	}

	dx, err := strconv.ParseFloat(dxTok, 64)
	if err != nil {
		p.errf(idx, "labelmove dx %q is not a number", dxTok)
		return
	}
	dy, err := strconv.ParseFloat(dyTok, 64)
	if err != nil {
		p.errf(idx, "labelmove dy %q is not a number", dyTok)
		return
	}

	if p.data.LabelOffsets == nil {
		p.data.LabelOffsets = make(map[string]domain.Point)
	}
	p.data.LabelOffsets[domain.DeriveID(name)] = domain.Point{X: dx, Y: dy}
}

// parseFlow handles "Source [Amount] Target" lines with optional
// trailing "#color" and "{prev}" / "{prev, label}" annotations.
func (p *parser) parseFlow(idx int, line string) {
	open := strings.Index(line, "[")
	if open < 0 {
		p.errf(idx, "expected a flow line like 'Source [Amount] Target'")
		return
	}
	close := strings.Index(line[open:], "]")
	if close < 0 {
		p.errf(idx, "unclosed amount bracket")
		return
	}
	close += open

	source := strings.TrimSpace(line[:open])
	if source == "" {
		p.errf(idx, "flow line is missing a source node")
		return
	}

	amountTok := strings.TrimSpace(line[open+1 : close])
	value, err := strconv.ParseFloat(amountTok, 64)
	if err != nil {
		p.errf(idx, "amount %q is not a number", amountTok)
		return
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		p.errf(idx, "amount must be finite and positive, got %q", amountTok)
		return
	}

	rest := strings.TrimSpace(line[close+1:])

	link := domain.Link{Value: value}

	// Comparison annotation: "{prev}" or "{prev, label}".
	if strings.HasSuffix(rest, "}") {
		brace := strings.LastIndex(rest, "{")
		if brace < 0 {
			p.errf(idx, "unmatched '}' in comparison annotation")
			return
		}
		inner := rest[brace+1 : len(rest)-1]
		prevTok, label, _ := strings.Cut(inner, ",")
		prev, err := strconv.ParseFloat(strings.TrimSpace(prevTok), 64)
		if err != nil {
			p.errf(idx, "comparison value %q is not a number", strings.TrimSpace(prevTok))
			return
		}
		link.PreviousValue = prev
		link.ComparisonLabel = strings.TrimSpace(label)
		rest = strings.TrimSpace(rest[:brace])
	}

	// Color token: last whitespace-separated field starting with '#'.
	if fields := strings.Fields(rest); len(fields) > 1 {
		last := fields[len(fields)-1]
		if c, ok := NormalizeColor(last); ok {
			link.Color = c
			rest = strings.TrimSpace(rest[:strings.LastIndex(rest, last)])
		}
	}

	target := rest
	if target == "" {
		p.errf(idx, "flow line is missing a target node")
		return
	}

	srcIdx := p.ensureNode(source)
	dstIdx := p.ensureNode(target)
	link.Source = p.data.Nodes[srcIdx].ID
	link.Target = p.data.Nodes[dstIdx].ID

	if link.Source == link.Target {
		p.errf(idx, "self-loop %q -> %q is not allowed", source, target)
		return
	}

	p.data.Links = append(p.data.Links, link)
}
