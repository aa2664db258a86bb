package changes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
)

func ptr[T any](v T) *T { return &v }

func fixtureState(t *testing.T) *domain.DiagramState {
	t.Helper()
	st := domain.NewDiagramState()
	a := domain.NewNode("Alpha")
	b := domain.NewNode("Beta")
	c := domain.NewNode("Gamma")
	st.Data.Nodes = []domain.Node{a, b, c}
	st.Data.Links = []domain.Link{
		{Source: "alpha", Target: "beta", Value: 10},
		{Source: "beta", Target: "gamma", Value: 10},
	}
	st.Customizations["alpha"] = domain.NodeCustomization{FillColor: ptr("#111111"), FontSize: ptr(12.0)}
	st.Customizations["beta"] = domain.NodeCustomization{FillColor: ptr("#222222")}
	st.Labels = []domain.IndependentLabel{{ID: "note-1", Text: "hello", X: 1, Y: 2}}
	return st
}

func TestApplyMergePreservesUnrelatedData(t *testing.T) {
	current := fixtureState(t)
	beforeJSON, err := json.Marshal(current)
	require.NoError(t, err)

	next, err := Apply(current, ChangeSet{
		Customizations: map[string]domain.NodeCustomization{
			"alpha": {FillColor: ptr("#ff0000")},
		},
	})
	require.NoError(t, err)

	// Only alpha's fill changed; its other override survives.
	assert.Equal(t, "#ff0000", *next.Customizations["alpha"].FillColor)
	assert.Equal(t, 12.0, *next.Customizations["alpha"].FontSize)

	// Everything unrelated is byte-identical.
	assert.Equal(t, "#222222", *next.Customizations["beta"].FillColor)
	assert.Equal(t, current.Labels, next.Labels)
	assert.Equal(t, current.Data.Links, next.Data.Links)

	// And the input state itself was not mutated.
	afterJSON, err := json.Marshal(current)
	require.NoError(t, err)
	assert.Equal(t, beforeJSON, afterJSON)
}

func TestApplyValidationAtomicity(t *testing.T) {
	current := fixtureState(t)

	links := make([]domain.Link, 0, 10)
	for i := 0; i < 9; i++ {
		links = append(links, domain.Link{Source: "alpha", Target: "beta", Value: float64(i + 1)})
	}
	links = append(links, domain.Link{Source: "alpha", Target: "beta", Value: -5})

	next, err := Apply(current, ChangeSet{
		Links: &links,
		Customizations: map[string]domain.NodeCustomization{
			"beta": {FillColor: ptr("#00ff00")},
		},
	})
	require.Error(t, err)

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)

	// The whole set is rejected: same pointer, nothing applied.
	assert.Same(t, current, next)
	assert.Equal(t, "#222222", *current.Customizations["beta"].FillColor)
	assert.Len(t, current.Data.Links, 2)
}

func TestApplyLinkReplacementChecksEndpoints(t *testing.T) {
	current := fixtureState(t)
	links := []domain.Link{{Source: "alpha", Target: "ghost", Value: 1}}
	_, err := Apply(current, ChangeSet{Links: &links})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestApplyLinksMaySimultaneouslyAddNodes(t *testing.T) {
	current := fixtureState(t)
	links := []domain.Link{
		{Source: "alpha", Target: "delta", Value: 3},
	}
	next, err := Apply(current, ChangeSet{
		Nodes: map[string]NodeChange{"delta": {Name: ptr("Delta")}},
		Links: &links,
	})
	require.NoError(t, err)

	n, ok := next.Data.NodeByID("delta")
	require.True(t, ok)
	assert.Equal(t, "Delta", n.Name)
	assert.Len(t, next.Data.Links, 1)
}

func TestApplyNodeAdditionIDMismatchRejected(t *testing.T) {
	current := fixtureState(t)
	_, err := Apply(current, ChangeSet{
		Nodes: map[string]NodeChange{"wrong_key": {Name: ptr("Delta")}},
	})
	require.Error(t, err)
}

func TestApplyClearSentinel(t *testing.T) {
	current := fixtureState(t)

	next, err := Apply(current, ChangeSet{
		Customizations: map[string]domain.NodeCustomization{
			"alpha": {FillColor: ptr(ClearSentinel)},
		},
	})
	require.NoError(t, err)

	// Explicit clear removes the override but keeps the others.
	c := next.Customizations["alpha"]
	assert.Nil(t, c.FillColor)
	require.NotNil(t, c.FontSize)
	assert.Equal(t, 12.0, *c.FontSize)

	// Clearing the last override drops the whole entry.
	next2, err := Apply(next, ChangeSet{
		Customizations: map[string]domain.NodeCustomization{
			"alpha": {FontSize: nil, FillColor: nil, LabelText: nil, FontFamily: nil,
				FontStyle: nil, LabelAlign: nil, MarginX: nil, MarginY: nil, Background: nil},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, next2.Customizations, "alpha", "all-nil update must not delete the entry")
}

func TestApplyNodeRenameMigratesReferences(t *testing.T) {
	current := fixtureState(t)
	next, err := Apply(current, ChangeSet{
		Nodes: map[string]NodeChange{"beta": {Name: ptr("Beta Prime")}},
	})
	require.NoError(t, err)

	_, ok := next.Data.NodeByID("beta_prime")
	require.True(t, ok)
	for _, l := range next.Data.Links {
		assert.NotEqual(t, "beta", l.Source)
		assert.NotEqual(t, "beta", l.Target)
	}
	assert.Contains(t, next.Customizations, "beta_prime")
	assert.NotContains(t, next.Customizations, "beta")
}

func TestApplyLabelUpsertAndDelete(t *testing.T) {
	current := fixtureState(t)

	next, err := Apply(current, ChangeSet{Labels: []LabelChange{
		{ID: "note-1", Text: ptr("updated")},
		{ID: "note-2", Text: ptr("fresh"), X: ptr(30.0)},
	}})
	require.NoError(t, err)
	require.Len(t, next.Labels, 2)
	assert.Equal(t, "updated", next.Labels[0].Text)
	assert.Equal(t, 2.0, next.Labels[0].Y, "untouched field must survive")
	assert.Equal(t, "fresh", next.Labels[1].Text)

	next2, err := Apply(next, ChangeSet{Labels: []LabelChange{{ID: "note-1", Delete: true}}})
	require.NoError(t, err)
	require.Len(t, next2.Labels, 1)
	assert.Equal(t, "note-2", next2.Labels[0].ID)
}

func TestApplySettingsPartial(t *testing.T) {
	current := fixtureState(t)
	current.Settings.ValuePrefix = "$"

	next, err := Apply(current, ChangeSet{Settings: &SettingsChange{
		Decimals: ptr("two"),
	}})
	require.NoError(t, err)
	assert.Equal(t, domain.DecimalsTwo, next.Settings.Decimals)
	assert.Equal(t, "$", next.Settings.ValuePrefix, "absent field must stay")

	_, err = Apply(current, ChangeSet{Settings: &SettingsChange{Decimals: ptr("many")}})
	require.Error(t, err)
}

func TestBalanceCorrection(t *testing.T) {
	current := fixtureState(t)
	// Make beta imbalanced: in 10, out 7.
	current.Data.Links[1].Value = 7

	cs, err := BalanceCorrection(current, "beta")
	require.NoError(t, err)
	require.NotNil(t, cs.Links)

	next, err := Apply(current, cs)
	require.NoError(t, err)

	_, ok := next.Data.NodeByID("adjustment")
	require.True(t, ok, "adjustment node must be synthesized")

	last := next.Data.Links[len(next.Data.Links)-1]
	assert.Equal(t, "beta", last.Source)
	assert.Equal(t, "adjustment", last.Target)
	assert.InDelta(t, 3.0, last.Value, 1e-9)
}

func TestBalanceCorrectionNoopForSources(t *testing.T) {
	current := fixtureState(t)
	cs, err := BalanceCorrection(current, "alpha")
	require.NoError(t, err)
	assert.True(t, cs.Empty())
}

func TestDecodeProposal(t *testing.T) {
	cs, err := DecodeProposal(ports.Proposal{
		Flows: []map[string]any{
			{"source": "Alpha", "target": "Beta", "value": "12.5", "color": "#abc"},
		},
		Nodes: map[string]map[string]any{
			"Beta": {"color": "#00ff00"},
		},
		Settings: map[string]any{"value_prefix": "$", "decimals": "two"},
	})
	require.NoError(t, err)

	require.NotNil(t, cs.Links)
	require.Len(t, *cs.Links, 1)
	l := (*cs.Links)[0]
	assert.Equal(t, "alpha", l.Source)
	assert.Equal(t, "beta", l.Target)
	assert.Equal(t, 12.5, l.Value, "weakly typed value must decode")

	require.Contains(t, cs.Nodes, "beta")
	assert.Equal(t, "#00ff00", *cs.Nodes["beta"].Color)

	require.NotNil(t, cs.Settings)
	assert.Equal(t, "$", *cs.Settings.ValuePrefix)
}
