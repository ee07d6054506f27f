package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agentflow/memoryengine/memory/tokenize"
	"github.com/agentflow/memoryengine/types"
)

// InMemoryVectorIndex is the reference VectorIndex: a lexical inverted-token
// index scoring by query/item token overlap. It carries no real embeddings;
// metadata["item"] is expected to hold the indexed *types.MemoryItem so
// query results need no metadata round trip.
type InMemoryVectorIndex struct {
	mu       sync.RWMutex
	tokens   map[string][]string
	metadata map[string]map[string]any
}

// NewInMemoryVectorIndex returns an empty index.
func NewInMemoryVectorIndex() *InMemoryVectorIndex {
	return &InMemoryVectorIndex{
		tokens:   make(map[string][]string),
		metadata: make(map[string]map[string]any),
	}
}

func (idx *InMemoryVectorIndex) Upsert(_ context.Context, id string, text string, metadata map[string]any) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.metadata[id]; exists {
		for tok, ids := range idx.tokens {
			filtered := ids[:0]
			for _, existing := range ids {
				if existing != id {
					filtered = append(filtered, existing)
				}
			}
			if len(filtered) == 0 {
				delete(idx.tokens, tok)
			} else {
				idx.tokens[tok] = filtered
			}
		}
	}
	idx.metadata[id] = metadata
	for tok := range tokenize.Set(text) {
		ids := idx.tokens[tok]
		found := false
		for _, existing := range ids {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			idx.tokens[tok] = append(ids, id)
		}
	}
	return nil
}

func (idx *InMemoryVectorIndex) Delete(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.metadata, id)
	for tok, ids := range idx.tokens {
		filtered := ids[:0]
		for _, existing := range ids {
			if existing != id {
				filtered = append(filtered, existing)
			}
		}
		if len(filtered) == 0 {
			delete(idx.tokens, tok)
		} else {
			idx.tokens[tok] = filtered
		}
	}
	return nil
}

func (idx *InMemoryVectorIndex) Query(_ context.Context, queryText string, filter VectorFilter, limit int) ([]types.ScoredMemory, error) {
	queryTokens := tokenize.Set(queryText)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	overlap := make(map[string]int)
	for tok := range queryTokens {
		for _, id := range idx.tokens[tok] {
			overlap[id]++
		}
	}

	allowedTypes := make(map[types.MemoryType]bool, len(filter.Types))
	for _, t := range filter.Types {
		allowedTypes[t] = true
	}

	var scored []types.ScoredMemory
	for id, count := range overlap {
		meta := idx.metadata[id]
		if meta == nil {
			continue
		}
		if filter.Owner != "" {
			if owner, _ := meta["owner"].(string); owner != filter.Owner {
				continue
			}
		}
		if filter.Tier != "" {
			if tier, _ := meta["tier"].(types.StorageTier); tier != filter.Tier {
				continue
			}
		}
		item, _ := meta["item"].(*types.MemoryItem)
		if len(allowedTypes) > 0 {
			if item == nil || !allowedTypes[item.Type] {
				continue
			}
		}

		score := float64(count) / float64(len(queryTokens))
		tier := filter.Tier
		if tier == "" && item != nil {
			tier = item.Tier
		}
		scored = append(scored, types.ScoredMemory{
			Item:        item,
			Score:       score,
			Tier:        tier,
			Explanation: "token overlap",
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
