package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentflow/memoryengine/types"
)

func TestEpisodicIndexer_IndexHotAndArchive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	vi := NewInMemoryVectorIndex()
	indexer := EpisodicIndexer{VectorIndex: vi}

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Content = "full content text"
	item.Summary = "summary text"

	require.NoError(t, indexer.IndexHot(ctx, item))
	results, err := vi.Query(ctx, "full content", VectorFilter{Owner: "u1", Tier: types.TierHot}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, indexer.IndexArchive(ctx, item))
	results, err = vi.Query(ctx, "summary text", VectorFilter{Owner: "u1", Tier: types.TierArchiveIndex}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSemanticGraphIndexer_RequiresTwoTags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gs := NewInMemoryGraphStore()
	indexer := SemanticGraphIndexer{GraphStore: gs}

	item := types.NewMemoryItem("u1", types.MemorySemantic)
	item.Tags = []string{"eu"}
	require.NoError(t, indexer.Index(ctx, item))
	related, err := gs.QueryRelated(ctx, "u1", "eu", 10)
	require.NoError(t, err)
	require.Empty(t, related)

	item.Tags = []string{"eu", "policy", "trade"}
	require.NoError(t, indexer.Index(ctx, item))
	related, err = gs.QueryRelated(ctx, "u1", "eu", 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"policy", "trade"}, related)
}

func TestPerceptualIndexer_OnlyPerceptual(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := NewInMemoryFeatureStore()
	indexer := PerceptualIndexer{FeatureStore: fs}

	episodic := types.NewMemoryItem("u1", types.MemoryEpisodic)
	require.NoError(t, indexer.Index(ctx, episodic))
	rows, err := fs.QueryFeatures(ctx, "u1", 10)
	require.NoError(t, err)
	require.Empty(t, rows)

	perceptual := types.NewMemoryItem("u1", types.MemoryPerceptual)
	perceptual.Summary = "saw a red car"
	require.NoError(t, indexer.Index(ctx, perceptual))
	rows, err = fs.QueryFeatures(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "saw a red car", rows[0]["summary"])
}
