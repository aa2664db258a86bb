package flume_test

import (
	"strings"
	"testing"

	"github.com/aretw0/flume"
)

func TestWithTextKeepsLabelOffsets(t *testing.T) {
	eng := flume.New(flume.WithText("A [5] B\nlabelmove A 3, 4\n"))

	if p, ok := eng.Snapshot().Layout.Labels["a"]; !ok {
		t.Fatal("label offset from the starting text missing in layout")
	} else if p.X != 3 || p.Y != 4 {
		t.Fatalf("label offset = %+v, want {3 4}", p)
	}

	// Structural edits regenerate the text; offsets must survive.
	if _, err := eng.AddNode("C"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(eng.Text(), "labelmove A 3, 4") {
		t.Errorf("labelmove line lost after edit:\n%s", eng.Text())
	}
}

func TestWithTextStartsWithEmptyHistory(t *testing.T) {
	eng := flume.New(flume.WithText("Wages [900] Rent"))
	if eng.CanUndo() || eng.CanRedo() {
		t.Error("starting text must not seed the history")
	}
}
