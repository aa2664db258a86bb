package cli_test

import (
	"strings"
	"testing"

	"github.com/aretw0/flume/internal/cli"
	"github.com/aretw0/flume/pkg/balance"
	"github.com/aretw0/flume/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceMarkdown(t *testing.T) {
	data, diags := dsl.Parse("A [10] B\nB [7] C")
	require.Empty(t, diags)

	md := cli.BalanceMarkdown("budget.sankey", balance.Analyze(data))

	assert.Contains(t, md, "# Balance report: budget.sankey")
	assert.Contains(t, md, "1 node(s) out of balance")
	assert.Contains(t, md, "| a (source) | 0.00 | 10.00 |")
	assert.Contains(t, md, "- **b**: add outflow of 3.00")
}

func TestBalanceMarkdownBalanced(t *testing.T) {
	data, _ := dsl.Parse("A [10] B\nB [10] C")
	md := cli.BalanceMarkdown("x", balance.Analyze(data))
	assert.Contains(t, md, "All intermediate nodes conserve flow.")
	assert.NotContains(t, md, "Suggested corrections")
}

func TestRenderMarkdownPlainWhenPiped(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, cli.RenderMarkdown(&buf, "# Title\n"))
	assert.Equal(t, "# Title\n", buf.String())
}
