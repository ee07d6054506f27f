package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryItem_Text(t *testing.T) {
	t.Parallel()

	item := NewMemoryItem("u1", MemoryEpisodic)
	item.Summary = "fallback summary"
	require.Equal(t, "fallback summary", item.Text())

	item.Content = "actual content"
	require.Equal(t, "actual content", item.Text())

	item.Content = map[string]any{"k": "v"}
	require.Equal(t, "fallback summary", item.Text())
}

func TestMemoryItem_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	item := NewMemoryItem("u1", MemoryWorking)
	item.CreatedAt = now
	require.False(t, item.IsExpired(now))

	ttl := 60
	item.TTLSeconds = &ttl
	require.False(t, item.IsExpired(now.Add(59*time.Second)))
	require.True(t, item.IsExpired(now.Add(60*time.Second)))
	require.True(t, item.IsExpired(now.Add(61*time.Second)))
}

func TestMemoryEvent_ToItem(t *testing.T) {
	t.Parallel()

	event := &MemoryEvent{Content: "hello world", Owner: "u1"}
	item := event.ToItem()
	require.Equal(t, "hello world", item.Summary)
	require.Equal(t, MemoryWorking, item.Type)
	require.Equal(t, 0.5, item.Confidence)
	require.NotEmpty(t, item.ID)

	structured := &MemoryEvent{Content: map[string]any{"a": 1}, Owner: "u1", Type: MemorySemantic}
	item2 := structured.ToItem()
	require.Equal(t, "map[a:1]", item2.Summary)
}

func TestMemoryEvent_ToItemStampsCreatedAtFromNow(t *testing.T) {
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	original := Now
	Now = func() time.Time { return fixed }
	defer func() { Now = original }()

	item := (&MemoryEvent{Content: "hello", Owner: "u1"}).ToItem()
	require.True(t, fixed.Equal(item.CreatedAt))
	require.True(t, fixed.Equal(item.UpdatedAt))

	fromNew := NewMemoryItem("u1", MemoryEpisodic)
	require.True(t, fixed.Equal(fromNew.CreatedAt))
	require.True(t, fixed.Equal(fromNew.UpdatedAt))
}

func TestMemoryItem_Clone(t *testing.T) {
	t.Parallel()

	item := NewMemoryItem("u1", MemoryEpisodic)
	item.Tags = []string{"a", "b"}
	item.Pointer["object_key"] = "k"

	clone := item.Clone()
	clone.Tags[0] = "mutated"
	clone.Pointer["object_key"] = "mutated"

	require.Equal(t, "a", item.Tags[0])
	require.Equal(t, "k", item.Pointer["object_key"])
}
