package memory

import (
	"context"
	"sync"
	"time"

	"github.com/agentflow/memoryengine/types"
)

// Rehydrator promotes cold items back to hot once access pressure crosses
// AccessThreshold. The access counter is process-local and, per the
// preserved source behaviour, is never reset on promotion: an item that
// goes cold again after being promoted re-promotes on the very next pass,
// because its counter is still at or above the threshold. This is flagged,
// not fixed, per the design notes.
type Rehydrator struct {
	MetadataStore   MetadataStore
	VectorIndex     VectorIndex
	AccessThreshold int
	Now             func() time.Time

	mu     sync.Mutex
	counts map[string]int
}

// NewRehydrator returns a Rehydrator with the default access threshold (3).
func NewRehydrator(metadataStore MetadataStore, vectorIndex VectorIndex) *Rehydrator {
	return &Rehydrator{
		MetadataStore:   metadataStore,
		VectorIndex:     vectorIndex,
		AccessThreshold: 3,
		Now:             time.Now,
		counts:          make(map[string]int),
	}
}

// RecordAccess increments the access counter for id.
func (r *Rehydrator) RecordAccess(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[id]++
}

// RunOnce promotes every cold item of owner whose access count has reached
// AccessThreshold.
func (r *Rehydrator) RunOnce(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	items, err := r.MetadataStore.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	threshold := r.AccessThreshold
	if threshold <= 0 {
		threshold = 3
	}

	var warmed []*types.MemoryItem
	for _, item := range items {
		if item.Tier != types.TierCold {
			continue
		}

		r.mu.Lock()
		count := r.counts[item.ID]
		r.mu.Unlock()
		if count < threshold {
			continue
		}

		item.Tier = types.TierHot
		item.UpdatedAt = r.Now()
		if err := r.MetadataStore.Upsert(ctx, item); err != nil {
			return nil, err
		}
		if err := r.VectorIndex.Upsert(ctx, item.ID, item.Text(), map[string]any{
			"owner": item.Owner,
			"tier":  types.TierHot,
			"type":  item.Type,
			"item":  item,
		}); err != nil {
			return nil, err
		}
		warmed = append(warmed, item)
	}
	return warmed, nil
}
