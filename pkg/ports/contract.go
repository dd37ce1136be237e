package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// RunStoreContract runs a suite of tests verifying that a RunStore
// implementation adheres to the interface contract. Adapter packages
// call it from their own tests.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot()
		snap.Status = domain.StatusWaitingForInput
		snap.CurrentNodeID = "input-1"
		snap.Variables["name"] = "Alice"
		snap.Chat = append(snap.Chat, domain.ChatMessage{
			ID: "m1", Role: domain.RoleBot, Content: "What's your name?", NodeID: "input-1",
		})
		snap.Debug = append(snap.Debug, domain.DebugMessage{
			ID: "d1", Level: domain.LevelInfo, Content: "entered node input-1", NodeID: "input-1",
		})

		require.NoError(t, store.Save(ctx, runID, &snap))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusWaitingForInput, loaded.Status)
		assert.Equal(t, "input-1", loaded.CurrentNodeID)
		assert.Equal(t, "Alice", loaded.Variables["name"])
		require.Len(t, loaded.Chat, 1)
		assert.Equal(t, "What's your name?", loaded.Chat[0].Content)
		require.Len(t, loaded.Debug, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		snap := domain.NewSnapshot()
		require.NoError(t, store.Save(ctx, runID, &snap))

		require.NoError(t, store.Delete(ctx, runID))

		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		snap := domain.NewSnapshot()
		require.NoError(t, store.Save(ctx, id1, &snap))
		require.NoError(t, store.Save(ctx, id2, &snap))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
