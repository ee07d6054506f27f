package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryFeatureStore_MostRecentFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := NewInMemoryFeatureStore()

	require.NoError(t, fs.WriteFeature(ctx, "u1", map[string]any{"summary": "first"}))
	require.NoError(t, fs.WriteFeature(ctx, "u1", map[string]any{"summary": "second"}))

	rows, err := fs.QueryFeatures(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "second", rows[0]["summary"])
	require.Equal(t, "first", rows[1]["summary"])
}

func TestInMemoryFeatureStore_ScopedByOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := NewInMemoryFeatureStore()

	require.NoError(t, fs.WriteFeature(ctx, "u1", map[string]any{"summary": "mine"}))
	require.NoError(t, fs.WriteFeature(ctx, "u2", map[string]any{"summary": "theirs"}))

	rows, err := fs.QueryFeatures(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "mine", rows[0]["summary"])
}

func TestInMemoryFeatureStore_LimitTruncates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := NewInMemoryFeatureStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, fs.WriteFeature(ctx, "u1", map[string]any{"i": i}))
	}

	rows, err := fs.QueryFeatures(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 4, rows[0]["i"])
	require.Equal(t, 3, rows[1]["i"])
}
