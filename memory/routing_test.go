package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentflow/memoryengine/types"
)

func TestRoutingPolicy_Route(t *testing.T) {
	t.Parallel()

	policy := NewRoutingPolicy()

	t.Run("low confidence skips everything", func(t *testing.T) {
		t.Parallel()
		item := types.NewMemoryItem("u1", types.MemoryEpisodic)
		item.Confidence = 0.30
		d := policy.Route(item)
		require.False(t, d.WriteHot)
		require.False(t, d.WriteVector)
		require.False(t, d.ArchiveCold)
		require.Contains(t, d.Reasons, "low_confidence_hot")
	})

	t.Run("working never writes vector", func(t *testing.T) {
		t.Parallel()
		item := types.NewMemoryItem("u1", types.MemoryWorking)
		item.Confidence = 0.9
		d := policy.Route(item)
		require.True(t, d.WriteHot)
		require.False(t, d.WriteVector)
		require.Contains(t, d.Reasons, "skip_vector")
	})

	t.Run("perceptual above feature threshold writes features", func(t *testing.T) {
		t.Parallel()
		item := types.NewMemoryItem("u1", types.MemoryPerceptual)
		item.Confidence = 0.9
		d := policy.Route(item)
		require.True(t, d.WriteFeatures)
	})

	t.Run("high confidence episodic archives", func(t *testing.T) {
		t.Parallel()
		item := types.NewMemoryItem("u1", types.MemoryEpisodic)
		item.Confidence = 0.9
		d := policy.Route(item)
		require.True(t, d.WriteHot)
		require.True(t, d.WriteVector)
		require.True(t, d.ArchiveCold)
		require.Empty(t, d.Reasons)
	})
}
