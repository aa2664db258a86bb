package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/flume/pkg/balance"
)

// BalanceMarkdown renders the analysis as a markdown document. The
// same text drives both terminal output (through glamour) and plain
// piped output.
func BalanceMarkdown(name string, report balance.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Balance report: %s\n\n", name)

	if report.Balanced() {
		b.WriteString("All intermediate nodes conserve flow.\n\n")
	} else {
		fmt.Fprintf(&b, "%d node(s) out of balance.\n\n", len(report.Imbalanced))
	}

	b.WriteString("| Node | Inflow | Outflow | Balance |\n")
	b.WriteString("| --- | ---: | ---: | ---: |\n")

	ids := make([]string, 0, len(report.PerNode))
	for id := range report.PerNode {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		flow := report.PerNode[id]
		kind := ""
		switch {
		case flow.IsSource():
			kind = " (source)"
		case flow.IsSink():
			kind = " (sink)"
		}
		fmt.Fprintf(&b, "| %s%s | %.2f | %.2f | %.2f |\n", id, kind, flow.Inflow, flow.Outflow, flow.Balance)
	}

	if !report.Balanced() {
		b.WriteString("\n## Suggested corrections\n\n")
		for _, n := range report.Imbalanced {
			fmt.Fprintf(&b, "- **%s**: %s\n", n.NodeID, n.Suggestion)
		}
	}

	return b.String()
}

// RenderMarkdown writes markdown to w, styled with glamour when w is a
// terminal and left as-is otherwise.
func RenderMarkdown(w io.Writer, markdown string) error {
	if !isTerminal(w) {
		_, err := io.WriteString(w, markdown)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		_, werr := io.WriteString(w, markdown)
		return werr
	}

	out, err := r.Render(markdown)
	if err != nil {
		_, werr := io.WriteString(w, markdown)
		return werr
	}

	_, err = io.WriteString(w, out)
	return err
}

// StatusLine formats a one-line verdict, colored when the output is a
// terminal.
func StatusLine(w io.Writer, balanced bool) string {
	if !isTerminal(w) {
		if balanced {
			return "balanced"
		}
		return "imbalanced"
	}

	p := termenv.ColorProfile()
	if balanced {
		return termenv.String("balanced").Foreground(p.Color("#22c55e")).String()
	}
	return termenv.String("imbalanced").Foreground(p.Color("#ef4444")).String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
