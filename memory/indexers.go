package memory

import (
	"context"

	"github.com/agentflow/memoryengine/types"
)

// EpisodicIndexer upserts item content into the vector index, either at
// full fidelity (hot) or summary-only (archive_index).
type EpisodicIndexer struct {
	VectorIndex VectorIndex
}

func (e EpisodicIndexer) IndexHot(ctx context.Context, item *types.MemoryItem) error {
	return e.VectorIndex.Upsert(ctx, item.ID, item.Text(), map[string]any{
		"owner": item.Owner,
		"tier":  types.TierHot,
		"type":  item.Type,
		"item":  item,
	})
}

func (e EpisodicIndexer) IndexArchive(ctx context.Context, item *types.MemoryItem) error {
	return e.VectorIndex.Upsert(ctx, item.ID, item.Summary, map[string]any{
		"owner": item.Owner,
		"tier":  types.TierArchiveIndex,
		"type":  item.Type,
		"item":  item,
	})
}

// SemanticGraphIndexer extracts related_to triples from a semantic item's
// tags: the first tag is the subject, the rest are objects.
type SemanticGraphIndexer struct {
	GraphStore GraphStore
}

func (s SemanticGraphIndexer) Index(ctx context.Context, item *types.MemoryItem) error {
	if item.Type != types.MemorySemantic {
		return nil
	}
	if len(item.Tags) < 2 {
		return nil
	}
	subject := item.Tags[0]
	for _, tag := range item.Tags[1:] {
		if err := s.GraphStore.UpsertFact(ctx, item.Owner, subject, "related_to", tag); err != nil {
			return err
		}
	}
	return nil
}

// PerceptualIndexer summarizes perceptual items into feature store rows.
type PerceptualIndexer struct {
	FeatureStore FeatureStore
}

func (p PerceptualIndexer) Index(ctx context.Context, item *types.MemoryItem) error {
	if item.Type != types.MemoryPerceptual {
		return nil
	}
	return p.FeatureStore.WriteFeature(ctx, item.Owner, map[string]any{
		"summary":    item.Summary,
		"tags":       item.Tags,
		"confidence": item.Confidence,
	})
}
