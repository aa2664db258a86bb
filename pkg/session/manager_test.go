package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/pkg/adapters/memory"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpensFromStoreOrSample(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	seeded := flume.New(flume.WithText("Wages [900] Rent"))
	require.NoError(t, store.Save(ctx, "existing", seeded.Snapshot()))

	mgr := session.NewManager(store)

	t.Run("ExistingSnapshot", func(t *testing.T) {
		state, err := mgr.Load(ctx, "existing")
		require.NoError(t, err)
		assert.Equal(t, "Wages [900] Rent", state.DSLText)
	})

	t.Run("NewDiagramStartsFromSample", func(t *testing.T) {
		state, err := mgr.Load(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, domain.SampleText, state.DSLText)
	})
}

func TestManager_AutosavesAfterEdit(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	err := mgr.WithEngine(ctx, "budget", func(eng *flume.Engine) error {
		_, diags := eng.SetRawText("Income [50] Savings")
		assert.Empty(t, diags)
		return nil
	})
	require.NoError(t, err)

	persisted, err := store.Load(ctx, "budget")
	require.NoError(t, err)
	assert.Equal(t, "Income [50] Savings", persisted.DSLText)
}

func TestManager_HistorySurvivesAcrossCalls(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, mgr.WithEngine(ctx, "d", func(eng *flume.Engine) error {
		eng.SetRawText("A [1] B")
		return nil
	}))

	require.NoError(t, mgr.WithEngine(ctx, "d", func(eng *flume.Engine) error {
		assert.True(t, eng.CanUndo())
		eng.Undo()
		assert.Equal(t, domain.SampleText, eng.Text())
		return nil
	}))
}

func TestManager_ErrorStillAutosaves(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	wantErr := errors.New("host failure")
	err := mgr.WithEngine(ctx, "d", func(eng *flume.Engine) error {
		eng.SetRawText("A [1] B")
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	persisted, err := store.Load(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "A [1] B", persisted.DSLText)
}

func TestManager_ResetDropsEverything(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	require.NoError(t, mgr.WithEngine(ctx, "d", func(eng *flume.Engine) error {
		eng.SetRawText("A [1] B")
		return nil
	}))
	require.NoError(t, store.SaveAux(ctx, "d", "recent_colors", []byte(`["#aabbcc"]`)))

	require.NoError(t, mgr.Reset(ctx, "d"))

	_, err := store.Load(ctx, "d")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	_, err = store.LoadAux(ctx, "d", "recent_colors")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	// A fresh engine comes back with sample state and empty history.
	require.NoError(t, mgr.WithEngine(ctx, "d", func(eng *flume.Engine) error {
		assert.Equal(t, domain.SampleText, eng.Text())
		assert.False(t, eng.CanUndo())
		return nil
	}))
}

func TestManager_ConcurrentEditsSerialize(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := mgr.WithEngine(ctx, "shared", func(eng *flume.Engine) error {
				_, err := eng.AddNode(fmt.Sprintf("Node %d", i))
				return err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state, err := mgr.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, state.Data.Nodes, len(domain.SampleData().Nodes)+workers)
}
