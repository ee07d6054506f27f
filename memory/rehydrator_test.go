package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentflow/memoryengine/types"
)

func TestRehydrator_PromotesOnceThresholdReached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metadataStore := NewInMemoryMetadataStore()
	vectorIndex := NewInMemoryVectorIndex()
	rehydrator := NewRehydrator(metadataStore, vectorIndex)
	rehydrator.AccessThreshold = 2
	rehydrator.Now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Tier = types.TierCold
	require.NoError(t, metadataStore.Upsert(ctx, item))

	warmed, err := rehydrator.RunOnce(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, warmed)

	rehydrator.RecordAccess(item.ID)
	rehydrator.RecordAccess(item.ID)

	warmed, err = rehydrator.RunOnce(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, warmed, 1)
	require.Equal(t, types.TierHot, warmed[0].Tier)
}

func TestRehydrator_IgnoresHotItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metadataStore := NewInMemoryMetadataStore()
	vectorIndex := NewInMemoryVectorIndex()
	rehydrator := NewRehydrator(metadataStore, vectorIndex)
	rehydrator.AccessThreshold = 1

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	require.NoError(t, metadataStore.Upsert(ctx, item))

	rehydrator.RecordAccess(item.ID)
	warmed, err := rehydrator.RunOnce(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, warmed)
}

// The access counter is process-local and intentionally never reset on
// promotion: a later re-cold item with a stale elevated counter re-promotes
// on the very next pass.
func TestRehydrator_CounterNeverResetsOnPromotion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	metadataStore := NewInMemoryMetadataStore()
	vectorIndex := NewInMemoryVectorIndex()
	rehydrator := NewRehydrator(metadataStore, vectorIndex)
	rehydrator.AccessThreshold = 1

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Tier = types.TierCold
	require.NoError(t, metadataStore.Upsert(ctx, item))
	rehydrator.RecordAccess(item.ID)

	warmed, err := rehydrator.RunOnce(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, warmed, 1)

	got, err := metadataStore.Get(ctx, item.ID)
	require.NoError(t, err)
	got.Tier = types.TierCold
	require.NoError(t, metadataStore.Upsert(ctx, got))

	warmed, err = rehydrator.RunOnce(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, warmed, 1)
}
