package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/flume/pkg/adapters/memory"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SnapshotStore = (*memory.Store)(nil)
var _ ports.AuxStore = (*memory.Store)(nil)

func TestStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := store.Load(ctx, "absent")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		state := domain.SampleState()
		require.NoError(t, store.Save(ctx, "budget", state))

		loaded, err := store.Load(ctx, "budget")
		require.NoError(t, err)
		assert.Equal(t, state.Data.Links, loaded.Data.Links)
		assert.Equal(t, state.DSLText, loaded.DSLText)
	})

	t.Run("LoadIsolatesCaller", func(t *testing.T) {
		loaded, err := store.Load(ctx, "budget")
		require.NoError(t, err)
		loaded.Data.Links[0].Value = -1

		again, err := store.Load(ctx, "budget")
		require.NoError(t, err)
		assert.Greater(t, again.Data.Links[0].Value, 0.0)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "alpha", domain.SampleState()))
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "budget"}, ids)
	})

	t.Run("DeleteRemovesAux", func(t *testing.T) {
		require.NoError(t, store.SaveAux(ctx, "budget", "recent_colors", []byte(`["#ff0000"]`)))
		require.NoError(t, store.Delete(ctx, "budget"))

		_, err := store.Load(ctx, "budget")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
		_, err = store.LoadAux(ctx, "budget", "recent_colors")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}

func TestStore_Aux(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveAux(ctx, "d1", "palettes", []byte(`{"warm":["#e53935"]}`)))

	value, err := store.LoadAux(ctx, "d1", "palettes")
	require.NoError(t, err)
	assert.JSONEq(t, `{"warm":["#e53935"]}`, string(value))

	_, err = store.LoadAux(ctx, "d1", "templates")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestStore_SharedContract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, memory.NewStore())
}
