package memory

import (
	"context"
	"strings"
	"time"

	"github.com/agentflow/memoryengine/types"
)

// Consolidator synthesizes durable episodic/semantic items out of an
// owner's short-lived hot working and perceptual items.
type Consolidator struct {
	MetadataStore          MetadataStore
	Indexer                EpisodicIndexer
	SemanticMinCount       int
	PerceptualSummaryLimit int
	Now                    func() time.Time
}

// NewConsolidator returns a Consolidator using the defaults from §6.
func NewConsolidator(metadataStore MetadataStore, vectorIndex VectorIndex) Consolidator {
	return Consolidator{
		MetadataStore:          metadataStore,
		Indexer:                EpisodicIndexer{VectorIndex: vectorIndex},
		SemanticMinCount:       2,
		PerceptualSummaryLimit: 5,
		Now:                    time.Now,
	}
}

// RunOnce performs one consolidation pass for owner, returning the newly
// synthesized items (already upserted and indexed as hot).
func (c Consolidator) RunOnce(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	items, err := c.MetadataStore.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	var working, perceptual []*types.MemoryItem
	for _, item := range items {
		if item.Tier != types.TierHot {
			continue
		}
		switch item.Type {
		case types.MemoryWorking:
			working = append(working, item)
		case types.MemoryPerceptual:
			perceptual = append(perceptual, item)
		}
	}

	var newItems []*types.MemoryItem

	if len(working) > 0 {
		limit := working
		if len(limit) > 5 {
			limit = limit[:5]
		}
		summaries := make([]string, len(limit))
		for i, item := range limit {
			summaries[i] = item.Summary
		}
		sessionSummary := types.NewMemoryItem(owner, types.MemoryEpisodic)
		sessionSummary.Summary = "Session summary: " + strings.Join(summaries, " | ")
		sessionSummary.Tags = []string{"session-summary"}
		sessionSummary.Confidence = 0.6
		sessionSummary.CreatedAt = c.Now()
		sessionSummary.UpdatedAt = sessionSummary.CreatedAt
		newItems = append(newItems, sessionSummary)
	}

	if len(perceptual) > 0 {
		limit := c.PerceptualSummaryLimit
		if limit <= 0 || limit > len(perceptual) {
			limit = len(perceptual)
		}
		snippets := make([]string, limit)
		for i := 0; i < limit; i++ {
			snippets[i] = perceptual[i].Summary
		}
		highlights := types.NewMemoryItem(owner, types.MemoryEpisodic)
		highlights.Summary = "Perceptual highlights: " + strings.Join(snippets, " | ")
		highlights.Tags = []string{"perceptual-summary"}
		highlights.Confidence = 0.55
		highlights.CreatedAt = c.Now()
		highlights.UpdatedAt = highlights.CreatedAt
		newItems = append(newItems, highlights)
	}

	tagCounts := make(map[string]int)
	var tagOrder []string
	for _, item := range append(append([]*types.MemoryItem{}, working...), perceptual...) {
		for _, tag := range item.Tags {
			if _, seen := tagCounts[tag]; !seen {
				tagOrder = append(tagOrder, tag)
			}
			tagCounts[tag]++
		}
	}

	minCount := c.SemanticMinCount
	if minCount <= 0 {
		minCount = 2
	}
	for _, tag := range tagOrder {
		if tagCounts[tag] < minCount {
			continue
		}
		recurring := types.NewMemoryItem(owner, types.MemorySemantic)
		recurring.Summary = "Observed recurring tag: " + tag
		recurring.Tags = []string{tag, "derived"}
		recurring.Confidence = 0.65
		recurring.Stability = 0.6
		recurring.CreatedAt = c.Now()
		recurring.UpdatedAt = recurring.CreatedAt
		newItems = append(newItems, recurring)
	}

	for _, item := range newItems {
		if err := c.MetadataStore.Upsert(ctx, item); err != nil {
			return nil, err
		}
		if err := c.Indexer.IndexHot(ctx, item); err != nil {
			return nil, err
		}
	}

	return newItems, nil
}
