package runtime

import (
	"strings"
	"testing"

	"github.com/aretw0/flume/pkg/changes"
	"github.com/aretw0/flume/pkg/domain"
)

func TestApplyChangesIsOneUndoStep(t *testing.T) {
	e := incomeEngine(t)
	before := e.Snapshot()

	links := []domain.Link{
		{Source: "revenue", Target: "cogs", Value: 450},
		{Source: "revenue", Target: "profit", Value: 550},
	}
	st, err := e.ApplyChanges(changes.ChangeSet{
		Links: &links,
		Customizations: map[string]domain.NodeCustomization{
			"profit": {FillColor: ptr("#00aa00")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if st.Data.Links[0].Value != 450 {
		t.Errorf("replacement links not applied: %+v", st.Data.Links)
	}
	if _, ok := st.Customizations["profit"]; !ok {
		t.Error("customization not applied")
	}

	e.Undo()
	if e.Snapshot() != before {
		t.Error("one undo must revert the whole change set")
	}
}

func TestApplyChangesRejectionKeepsSnapshot(t *testing.T) {
	e := incomeEngine(t)
	before := e.Snapshot()

	links := []domain.Link{{Source: "revenue", Target: "nowhere", Value: 1}}
	if _, err := e.ApplyChanges(changes.ChangeSet{Links: &links}); err == nil {
		t.Fatal("expected rejection")
	}
	if e.Snapshot() != before {
		t.Error("rejected change set must leave the snapshot untouched")
	}
}

func TestApplyChangesRefreshesText(t *testing.T) {
	e := incomeEngine(t)
	links := []domain.Link{{Source: "revenue", Target: "profit", Value: 777}}
	st, err := e.ApplyChanges(changes.ChangeSet{Links: &links})
	if err != nil {
		t.Fatal(err)
	}
	want := "Revenue [777] Profit"
	if got := st.DSLText; !strings.Contains(got, want) {
		t.Errorf("DSL text not refreshed, got:\n%s", got)
	}
}

func TestAutoBalance(t *testing.T) {
	e := New()
	if _, diags := e.SetRawText("A [10] B\nB [7] C"); len(diags) != 0 {
		t.Fatalf("fixture: %v", diags)
	}

	st, err := e.AutoBalance("b")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := st.Data.NodeByID("adjustment"); !ok {
		t.Fatal("adjustment node missing")
	}
	report := e.Balance()
	for _, ib := range report.Imbalanced {
		if ib.NodeID == "b" {
			t.Errorf("b still imbalanced: %+v", ib)
		}
	}
}
