package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentflow/memoryengine/config"
	"github.com/agentflow/memoryengine/types"
)

func setupTestGormMetadataStore(t *testing.T) *GormMetadataStore {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	store, err := NewGormMetadataStore(config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	return store
}

func TestGormMetadataStore_UpsertGetDelete(t *testing.T) {
	t.Parallel()
	store := setupTestGormMetadataStore(t)
	ctx := context.Background()

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Summary = "stored in sqlite"
	require.NoError(t, store.Upsert(ctx, item))

	got, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "stored in sqlite", got.Summary)

	require.NoError(t, store.Delete(ctx, item.ID))
	got, err = store.Get(ctx, item.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGormMetadataStore_GetMissingReturnsNil(t *testing.T) {
	t.Parallel()
	store := setupTestGormMetadataStore(t)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGormMetadataStore_ListByOwnerAndType(t *testing.T) {
	t.Parallel()
	store := setupTestGormMetadataStore(t)
	ctx := context.Background()

	episodic := types.NewMemoryItem("u1", types.MemoryEpisodic)
	semantic := types.NewMemoryItem("u1", types.MemorySemantic)
	otherOwner := types.NewMemoryItem("u2", types.MemoryEpisodic)
	require.NoError(t, store.Upsert(ctx, episodic))
	require.NoError(t, store.Upsert(ctx, semantic))
	require.NoError(t, store.Upsert(ctx, otherOwner))

	items, err := store.ListByOwnerAndType(ctx, "u1", []types.MemoryType{types.MemoryEpisodic})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, episodic.ID, items[0].ID)

	all, err := store.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGormMetadataStore_UpdateAccess(t *testing.T) {
	t.Parallel()
	store := setupTestGormMetadataStore(t)
	ctx := context.Background()

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	require.NoError(t, store.Upsert(ctx, item))

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateAccess(ctx, item.ID, now))

	got, err := store.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastAccessed)
	require.True(t, now.Equal(*got.LastAccessed))
}
