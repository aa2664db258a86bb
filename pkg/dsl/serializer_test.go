package dsl

import (
	"strings"
	"testing"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeSample(t *testing.T) {
	text := Serialize(domain.SampleData())
	assert.Contains(t, text, "// Example income statement")
	assert.Contains(t, text, "Revenue [400] Cost of Goods Sold")
	// The color rides the flow line, so no declaration is emitted.
	assert.Contains(t, text, "Gross Profit [350] Net Profit #2e7d32")
	assert.NotContains(t, text, ":Net Profit")
}

func TestSerializeKeepsCommentPositions(t *testing.T) {
	in := "// top\nA [1] B\n// middle\nB [2] C"
	data, diags := Parse(in)
	require.Empty(t, diags)

	out := Serialize(data)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "// top", lines[0])
	assert.Equal(t, "// middle", lines[2])
}

func TestRoundTripSemantics(t *testing.T) {
	in := strings.Join([]string{
		"// budget flows",
		":Salary #a50 .revenue",
		"Salary [2500] Budget",
		"Budget [1200] Rent #cc0000",
		"Budget [800] Food {750, vs. June}",
		"Budget [500] Savings",
		"labelmove Budget -10, 42",
		"",
	}, "\n")

	first, diags := Parse(in)
	require.Empty(t, diags)

	out := Serialize(first)
	second, diags := Parse(out)
	require.Empty(t, diags, "normalized text must reparse cleanly")

	assertSemanticallyEqual(t, first, second)

	// Serialization is a fixpoint after one normalization pass.
	assert.Equal(t, out, Serialize(second))
}

func assertSemanticallyEqual(t *testing.T, a, b domain.SankeyData) {
	t.Helper()

	idsOf := func(d domain.SankeyData) map[string]domain.Node {
		m := make(map[string]domain.Node)
		for _, n := range d.Nodes {
			m[n.ID] = n
		}
		return m
	}
	assert.Equal(t, idsOf(a), idsOf(b), "node sets differ")

	type flow struct {
		Source, Target string
		Value, Prev    float64
		Label, Color   string
	}
	flowsOf := func(d domain.SankeyData) map[flow]int {
		m := make(map[flow]int)
		for _, l := range d.Links {
			m[flow{l.Source, l.Target, l.Value, l.PreviousValue, l.ComparisonLabel, l.Color}]++
		}
		return m
	}
	assert.Equal(t, flowsOf(a), flowsOf(b), "link multisets differ")
	assert.Equal(t, a.LabelOffsets, b.LabelOffsets, "label offsets differ")
}
