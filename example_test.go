package flume_test

import (
	"fmt"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/pkg/domain"
)

// ExampleNew demonstrates basic editing: start from text, add a flow,
// and read the regenerated source back.
func ExampleNew() {
	eng := flume.New(flume.WithText("Revenue [120] Profit\nRevenue [80] Costs\n"))

	if _, err := eng.AddNode("Taxes"); err != nil {
		fmt.Println(err)
		return
	}
	state, err := eng.AddLink(domain.Link{Source: "profit", Target: "taxes", Value: 40})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Print(state.DSLText)
	// Output:
	// Revenue [120] Profit
	// Revenue [80] Costs
	// Profit [40] Taxes
}

// ExampleEngine_Undo shows that every command is one undoable step.
func ExampleEngine_Undo() {
	eng := flume.New(flume.WithText("A [10] B\n"))

	eng.SetRawText("A [10] B\nB [10] C\n")
	fmt.Println("after edit:", len(eng.Snapshot().Data.Links), "links")

	eng.Undo()
	fmt.Println("after undo:", len(eng.Snapshot().Data.Links), "links")

	eng.Redo()
	fmt.Println("after redo:", len(eng.Snapshot().Data.Links), "links")
	// Output:
	// after edit: 2 links
	// after undo: 1 links
	// after redo: 2 links
}

// ExampleEngine_Balance reports nodes that do not conserve flow.
func ExampleEngine_Balance() {
	eng := flume.New(flume.WithText("Income [100] Budget\nBudget [60] Rent\n"))

	for _, n := range eng.Balance().Imbalanced {
		fmt.Println(n.NodeID+":", n.Suggestion)
	}
	// Output:
	// budget: add outflow of 40.00
}
