package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/flume/internal/adapters/file"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SnapshotStore = (*file.Store)(nil)
var _ ports.AuxStore = (*file.Store)(nil)

func TestStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
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
		assert.NotNil(t, loaded.Customizations)
	})

	t.Run("OverwriteReplaces", func(t *testing.T) {
		state := domain.SampleState()
		state.DSLText = "A [1] B"
		require.NoError(t, store.Save(ctx, "budget", state))

		loaded, err := store.Load(ctx, "budget")
		require.NoError(t, err)
		assert.Equal(t, "A [1] B", loaded.DSLText)
	})

	t.Run("ListSkipsAuxFiles", func(t *testing.T) {
		require.NoError(t, store.SaveAux(ctx, "budget", "recent_colors", []byte(`[]`)))
		require.NoError(t, store.Save(ctx, "alpha", domain.SampleState()))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"alpha", "budget"}, ids)
	})

	t.Run("DeleteRemovesAux", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "budget"))

		_, err := store.Load(ctx, "budget")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
		_, err = store.LoadAux(ctx, "budget", "recent_colors")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}

func TestStore_LoadIgnoresUnknownFields(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)

	payload := `{"dsl_text":"A [5] B","data":{"links":[{"source":"a","target":"b","value":5}]},"future_field":true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(payload), 0644))

	loaded, err := store.Load(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, "A [5] B", loaded.DSLText)
	assert.NotNil(t, loaded.Layout.Nodes)
	assert.Equal(t, domain.DefaultSettings(), loaded.Settings)
}

func TestStore_ListOnMissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "never-created"))

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_SharedContract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}
