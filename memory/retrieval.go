package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentflow/memoryengine/types"
)

// RetrievalPlan holds the thresholds and budgets driving the confidence-
// gated escalation cascade.
type RetrievalPlan struct {
	HotTopK             int
	ArchiveTopK         int
	ColdFetchLimit      int
	ColdFetchMinScore   float64
	HotConfidence       float64
	ArchiveConfidence   float64
	ColdFetchConfidence float64
	MaxResults          int
	MaxContextTokens    int
}

// NewRetrievalPlan returns a plan using the defaults from §4.4.
func NewRetrievalPlan() RetrievalPlan {
	return RetrievalPlan{
		HotTopK:             30,
		ArchiveTopK:         30,
		ColdFetchLimit:      20,
		ColdFetchMinScore:   0.25,
		HotConfidence:       0.62,
		ArchiveConfidence:   0.72,
		ColdFetchConfidence: 0.58,
		MaxResults:          50,
		MaxContextTokens:    600,
	}
}

// RetrievalOrchestrator runs the multi-tier cascading search described in
// §4.4: hot sweep, optional archive escalation, optional cold hydration,
// metadata hydration, dedup, and rerank.
type RetrievalOrchestrator struct {
	MetadataStore MetadataStore
	VectorIndex   VectorIndex
	ObjectStore   ObjectStore
	Plan          RetrievalPlan
	Scorer        ConfidenceScorer
}

// Retrieve answers query, returning a ranked, deduplicated bundle.
func (o RetrievalOrchestrator) Retrieve(ctx context.Context, query types.MemoryQuery) (types.MemoryBundle, error) {
	var usedTiers []types.StorageTier
	var warnings []string
	var trace types.RetrievalTrace

	trace.AddStep("hot search per type")

	queryTypes := query.Types
	if len(queryTypes) == 0 {
		queryTypes = types.AllMemoryTypes
	}
	perTypeLimit := o.Plan.HotTopK / len(queryTypes)
	if perTypeLimit < 1 {
		perTypeLimit = 1
	}

	var hotResults []types.ScoredMemory
	for _, t := range queryTypes {
		rows, err := o.VectorIndex.Query(ctx, query.Text, VectorFilter{
			Owner: query.Owner,
			Tier:  types.TierHot,
			Types: []types.MemoryType{t},
		}, perTypeLimit)
		if err != nil {
			return types.MemoryBundle{}, err
		}
		hotResults = append(hotResults, rows...)
	}
	usedTiers = append(usedTiers, types.TierHot)
	confidence := o.Scorer.Evaluate(query.Text, hotResults)

	results := append([]types.ScoredMemory(nil), hotResults...)

	var archiveResults []types.ScoredMemory
	if confidence.Total < o.Plan.HotConfidence {
		rows, err := o.VectorIndex.Query(ctx, query.Text, VectorFilter{
			Owner: query.Owner,
			Tier:  types.TierArchiveIndex,
			Types: queryTypes,
		}, o.Plan.ArchiveTopK)
		if err != nil {
			return types.MemoryBundle{}, err
		}
		archiveResults = rows

		if len(archiveResults) > 0 {
			trace.AddEscalation("hot confidence below threshold; searching archive")
			results = append(results, archiveResults...)
			usedTiers = append(usedTiers, types.TierArchiveIndex)
			confidence = o.Scorer.Evaluate(query.Text, results)
		}

		if confidence.Total < o.Plan.ColdFetchConfidence {
			var candidates []types.ScoredMemory
			for _, r := range archiveResults {
				if r.Score >= o.Plan.ColdFetchMinScore {
					candidates = append(candidates, r)
				}
				if len(candidates) >= o.Plan.ColdFetchLimit {
					break
				}
			}
			if len(candidates) > 0 {
				trace.AddEscalation("archive confidence low; fetching cold payloads")
			}

			for _, r := range candidates {
				if r.Item == nil {
					continue
				}
				objectKey := r.Item.Pointer["object_key"]
				if objectKey == "" {
					continue
				}
				payload, err := o.ObjectStore.Get(ctx, objectKey)
				if err != nil {
					return types.MemoryBundle{}, err
				}
				if payload == nil {
					warnings = append(warnings, fmt.Sprintf("Missing cold object: %s", objectKey))
					continue
				}
				if list, ok := payload.([]any); ok {
					payload = findByID(list, r.Item.ID)
					if payload == nil {
						warnings = append(warnings, fmt.Sprintf("Missing id %s in daily notes: %s", r.Item.ID, objectKey))
						continue
					}
				}
				hydrated := r.Item.Clone()
				hydrated.Content = payload
				hydrated.Tier = types.TierCold
				results = append(results, types.ScoredMemory{
					Item:        hydrated,
					Score:       r.Score,
					Tier:        types.TierCold,
					Explanation: "cold hydrate",
				})
			}
			if len(candidates) > 0 {
				usedTiers = append(usedTiers, types.TierCold)
				confidence = o.Scorer.Evaluate(query.Text, results)
			}
		}
	}

	hydratedResults, err := o.hydrateMetadata(ctx, results)
	if err != nil {
		return types.MemoryBundle{}, err
	}
	reranked := o.rerank(dedupe(hydratedResults))
	blocks := toBlocks(reranked)

	sourceLimit := len(reranked)
	if sourceLimit > 10 {
		sourceLimit = 10
	}
	for _, r := range reranked[:sourceLimit] {
		trace.Sources = append(trace.Sources, fmt.Sprintf("%s:%s", r.Item.Type, r.Tier))
	}

	return types.MemoryBundle{
		Query:      query.Text,
		Results:    reranked,
		Blocks:     blocks,
		Confidence: confidence,
		UsedTiers:  usedTiers,
		Trace:      trace,
		Warnings:   warnings,
	}, nil
}

func findByID(list []any, id string) any {
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if fmt.Sprintf("%v", m["id"]) == id {
			return m
		}
	}
	return nil
}

// hydrateMetadata replaces any skeletal result (content nil and no tags)
// with the full item read from the metadata store.
func (o RetrievalOrchestrator) hydrateMetadata(ctx context.Context, results []types.ScoredMemory) ([]types.ScoredMemory, error) {
	out := make([]types.ScoredMemory, 0, len(results))
	for _, r := range results {
		if r.Item != nil && (r.Item.Content != nil || len(r.Item.Tags) > 0) {
			out = append(out, r)
			continue
		}
		if r.Item == nil {
			out = append(out, r)
			continue
		}
		full, err := o.MetadataStore.Get(ctx, r.Item.ID)
		if err != nil {
			return nil, err
		}
		if full == nil {
			out = append(out, r)
			continue
		}
		r.Item = full
		out = append(out, r)
	}
	return out, nil
}

func dedupe(results []types.ScoredMemory) []types.ScoredMemory {
	best := make(map[string]types.ScoredMemory)
	order := make([]string, 0, len(results))
	for _, r := range results {
		if r.Item == nil {
			continue
		}
		existing, ok := best[r.Item.ID]
		if !ok {
			order = append(order, r.Item.ID)
			best[r.Item.ID] = r
			continue
		}
		if r.Score > existing.Score {
			best[r.Item.ID] = r
		}
	}
	out := make([]types.ScoredMemory, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

func (o RetrievalOrchestrator) rerank(results []types.ScoredMemory) []types.ScoredMemory {
	reranked := append([]types.ScoredMemory(nil), results...)
	sort.SliceStable(reranked, func(i, j int) bool {
		return rerankScore(reranked[i]) > rerankScore(reranked[j])
	})
	if o.Plan.MaxResults > 0 && len(reranked) > o.Plan.MaxResults {
		reranked = reranked[:o.Plan.MaxResults]
	}
	return reranked
}

func rerankScore(r types.ScoredMemory) float64 {
	if r.Item == nil {
		return clamp01(0.75 * r.Score)
	}
	return clamp01(0.75*r.Score + 0.25*r.Item.Confidence)
}

func toBlocks(results []types.ScoredMemory) []types.MemoryBlock {
	blocks := make([]types.MemoryBlock, 0, len(results))
	for _, r := range results {
		if r.Item == nil {
			continue
		}
		blocks = append(blocks, types.MemoryBlock{
			Text:       r.Item.Text(),
			ItemID:     r.Item.ID,
			MemoryType: r.Item.Type,
			Tier:       r.Tier,
			Score:      r.Score,
			Metadata: map[string]any{
				"owner": r.Item.Owner,
				"tags":  r.Item.Tags,
			},
		})
	}
	return blocks
}
