package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewHashEmbedder(32)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	v2, err := e.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Len(t, v1, 32)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	t.Parallel()

	e := NewHashEmbedder(16)
	v, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, x := range v {
		require.Zero(t, x)
	}
}

func TestHashEmbedder_Normalized(t *testing.T) {
	t.Parallel()

	e := NewHashEmbedder(8)
	v, err := e.Embed(context.Background(), "alpha beta gamma delta epsilon")
	require.NoError(t, err)

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	require.InDelta(t, 1.0, norm, 1e-9)
}

func TestHashEmbedder_DefaultDimension(t *testing.T) {
	t.Parallel()

	e := NewHashEmbedder(0)
	require.Equal(t, 64, e.Dimension())
}
