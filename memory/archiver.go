package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/agentflow/memoryengine/types"
)

// Archiver moves hot, non-working items to the cold tier: it appends the
// item's payload into a daily-notes object, leaves pointer breadcrumbs,
// flips the tier, and retains a summary-only vector entry under
// archive_index.
type Archiver struct {
	MetadataStore MetadataStore
	ObjectStore   ObjectStore
	Indexer       EpisodicIndexer
	Now           func() time.Time
}

// NewArchiver returns an Archiver wired against the given back-ends.
func NewArchiver(metadataStore MetadataStore, objectStore ObjectStore, vectorIndex VectorIndex) Archiver {
	return Archiver{
		MetadataStore: metadataStore,
		ObjectStore:   objectStore,
		Indexer:       EpisodicIndexer{VectorIndex: vectorIndex},
		Now:           time.Now,
	}
}

// RunOnce archives every eligible hot item for owner, returning the
// archived items in their post-archival (cold) state.
func (a Archiver) RunOnce(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	items, err := a.MetadataStore.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	var archived []*types.MemoryItem
	for _, item := range items {
		if item.Tier != types.TierHot || item.Type == types.MemoryWorking {
			continue
		}

		key := fmt.Sprintf("%s/%s/daily_notes", owner, item.CreatedAt.Format("2006/01/02"))
		payload := map[string]any{
			"id":         item.ID,
			"summary":    item.Summary,
			"content":    item.Content,
			"tags":       item.Tags,
			"type":       item.Type,
			"owner":      item.Owner,
			"created_at": item.CreatedAt,
		}

		var objectPath string
		if appender, ok := a.ObjectStore.(AppendCapable); ok {
			objectPath, err = appender.Append(ctx, key, payload)
		} else {
			objectPath, err = a.ObjectStore.Put(ctx, key, payload)
		}
		if err != nil {
			return nil, err
		}

		if item.Pointer == nil {
			item.Pointer = map[string]string{}
		}
		item.Pointer["object_key"] = objectPath
		item.Pointer["archive_key"] = key
		item.Tier = types.TierCold
		item.UpdatedAt = a.Now()

		if err := a.MetadataStore.Upsert(ctx, item); err != nil {
			return nil, err
		}
		if err := a.Indexer.IndexArchive(ctx, item); err != nil {
			return nil, err
		}
		archived = append(archived, item)
	}
	return archived, nil
}
