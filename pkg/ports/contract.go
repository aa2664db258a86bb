package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the defined interface
// contract. Store adapters call it from their own tests.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	diagramID := "contract-test-diagram-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.SampleState()

		err := store.Save(ctx, diagramID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, diagramID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.DSLText, loaded.DSLText)
		assert.Equal(t, state.Data.Links, loaded.Data.Links)
		assert.Equal(t, state.Settings, loaded.Settings)
	})

	t.Run("Overwrite", func(t *testing.T) {
		state := domain.SampleState()
		state.DSLText = "A [1] B"
		require.NoError(t, store.Save(ctx, diagramID, state))

		loaded, err := store.Load(ctx, diagramID)
		require.NoError(t, err)
		assert.Equal(t, "A [1] B", loaded.DSLText)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+diagramID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, diagramID, domain.SampleState())
		require.NoError(t, err)

		err = store.Delete(ctx, diagramID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, diagramID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := diagramID + "-1"
		id2 := diagramID + "-2"
		_ = store.Save(ctx, id1, domain.SampleState())
		_ = store.Save(ctx, id2, domain.SampleState())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	if aux, ok := store.(AuxStore); ok {
		t.Run("Aux", func(t *testing.T) {
			require.NoError(t, store.Save(ctx, diagramID, domain.SampleState()))
			require.NoError(t, aux.SaveAux(ctx, diagramID, "recent_colors", []byte(`["#ff0000"]`)))

			value, err := aux.LoadAux(ctx, diagramID, "recent_colors")
			require.NoError(t, err)
			assert.JSONEq(t, `["#ff0000"]`, string(value))

			require.NoError(t, store.Delete(ctx, diagramID))
			_, err = aux.LoadAux(ctx, diagramID, "recent_colors")
			assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
		})
	}
}
