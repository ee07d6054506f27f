package memory

import (
	"context"
	"time"

	"github.com/agentflow/memoryengine/types"
)

// Compactor deletes every item of an owner whose TTL has elapsed.
type Compactor struct {
	MetadataStore MetadataStore
	Now           func() time.Time
}

// NewCompactor returns a Compactor wired against metadataStore.
func NewCompactor(metadataStore MetadataStore) Compactor {
	return Compactor{MetadataStore: metadataStore, Now: time.Now}
}

// RunOnce removes expired items for owner, returning the removed items.
func (c Compactor) RunOnce(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	items, err := c.MetadataStore.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := c.Now()
	var removed []*types.MemoryItem
	for _, item := range items {
		if !item.IsExpired(now) {
			continue
		}
		if err := c.MetadataStore.Delete(ctx, item.ID); err != nil {
			return nil, err
		}
		removed = append(removed, item)
	}
	return removed, nil
}
