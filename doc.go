/*
Package flume is a headless state engine for Sankey diagram editors.

It manages the editable state of one diagram: the flow graph, a plain-text DSL
that round-trips with it, per-node styling and layout overrides, global
formatting settings, and a bounded undo/redo history. Rendering is out of
scope; hosts feed the resulting state to whatever drawing layer they use.

# Concept

Every edit goes through the Engine as a command. Commands validate their
input, produce a new immutable snapshot, regenerate the DSL text, and push
the previous snapshot onto the undo stack. The DSL is bidirectional: hosts
may equally replace the raw text and have the graph re-derived from it, with
diagnostics for lines that fail to parse.

# Key Features

  - Bidirectional DSL: one line per flow, comments and unparseable lines
    preserved across regeneration.
  - Bounded history: undo/redo over full snapshots, oldest entries evicted
    silently past the cap.
  - Rename cascade: renaming a node rewrites links, styling, layout pins and
    the DSL text in one undoable step.
  - Balance analysis: per-node inflow/outflow conservation checks with
    suggested corrections.
  - Change sets: partial declarative updates (e.g. from an assistant or an
    import step) merged atomically into the current state.
  - Pluggable persistence: snapshot stores for filesystem, Redis and memory,
    coordinated per diagram by the session manager.

# Usage

	package main

	import (
		"fmt"

		"github.com/aretw0/flume"
		"github.com/aretw0/flume/pkg/domain"
	)

	func main() {
		eng := flume.New(flume.WithText("Revenue [120] Profit\nRevenue [80] Costs"))

		if _, err := eng.AddNode("Taxes"); err != nil {
			fmt.Println(err)
			return
		}
		state, err := eng.AddLink(domain.Link{Source: "revenue", Target: "taxes", Value: 40})
		if err != nil {
			fmt.Println(err)
			return
		}

		fmt.Println(state.DSLText)
		for _, n := range eng.Balance().Imbalanced {
			fmt.Println(n.ID, n.Suggestion)
		}
	}

Engines are single-diagram and not goroutine-safe; use the session package to
manage many diagrams behind stores and locks.
*/
package flume
