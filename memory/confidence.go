package memory

import (
	"time"

	"github.com/agentflow/memoryengine/memory/tokenize"
	"github.com/agentflow/memoryengine/types"
)

// ConfidenceScorer computes a five-way weighted ConfidenceReport over the
// top-5 of a scored result set. It is a pure function of its inputs; Now
// is injectable so temporal_fit is deterministic in tests.
type ConfidenceScorer struct {
	SemanticRelevanceWeight float64
	CoverageWeight          float64
	TemporalFitWeight       float64
	AuthorityWeight         float64
	ConsistencyWeight       float64
	AcceptThreshold         float64
	Now                     func() time.Time
}

// NewConfidenceScorer returns a scorer using the default weights from the
// confidence scorer design (§4.3): 0.35/0.20/0.20/0.15/0.10.
func NewConfidenceScorer() ConfidenceScorer {
	return ConfidenceScorer{
		SemanticRelevanceWeight: 0.35,
		CoverageWeight:          0.20,
		TemporalFitWeight:       0.20,
		AuthorityWeight:         0.15,
		ConsistencyWeight:       0.10,
		AcceptThreshold:         0.75,
		Now:                     time.Now,
	}
}

const topN = 5

// Evaluate scores results against queryText.
func (s ConfidenceScorer) Evaluate(queryText string, results []types.ScoredMemory) types.ConfidenceReport {
	top := results
	if len(top) > topN {
		top = top[:topN]
	}

	semantic := semanticRelevance(top)
	coverage := s.coverage(queryText, top)
	temporal := s.temporalFit(top)
	authority := authorityScore(top)
	consistency := consistencyScore(top)

	total := clamp01(s.SemanticRelevanceWeight*semantic +
		s.CoverageWeight*coverage +
		s.TemporalFitWeight*temporal +
		s.AuthorityWeight*authority +
		s.ConsistencyWeight*consistency)

	return types.ConfidenceReport{
		Total:             total,
		SemanticRelevance: semantic,
		Coverage:          coverage,
		TemporalFit:       temporal,
		Authority:         authority,
		Consistency:       consistency,
		Recommendation:    recommendationFor(total),
	}
}

func recommendationFor(total float64) types.Recommendation {
	switch {
	case total >= 0.75:
		return types.RecommendAccept
	case total >= 0.60:
		return types.RecommendEscalateArchive
	case total >= 0.45:
		return types.RecommendFetchCold
	default:
		return types.RecommendUncertain
	}
}

func semanticRelevance(top []types.ScoredMemory) float64 {
	if len(top) == 0 {
		return 0
	}
	var sum float64
	for _, r := range top {
		sum += r.Score
	}
	return sum / float64(len(top))
}

func (s ConfidenceScorer) coverage(queryText string, top []types.ScoredMemory) float64 {
	queryTokens := tokenize.Set(queryText)
	if len(queryTokens) == 0 {
		return 0
	}
	covered := make(map[string]struct{})
	for _, r := range top {
		if r.Item == nil {
			continue
		}
		for tok := range tokenize.Set(r.Item.Text()) {
			covered[tok] = struct{}{}
		}
	}
	var hit int
	for tok := range queryTokens {
		if _, ok := covered[tok]; ok {
			hit++
		}
	}
	return safeDiv(float64(hit), float64(len(queryTokens)))
}

func (s ConfidenceScorer) temporalFit(top []types.ScoredMemory) float64 {
	if len(top) == 0 {
		return 0
	}
	now := s.Now()
	var sum float64
	for _, r := range top {
		if r.Item == nil {
			continue
		}
		ageDays := now.Sub(r.Item.CreatedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		sum += 1.0 / (1.0 + ageDays)
	}
	return sum / float64(len(top))
}

func authorityScore(top []types.ScoredMemory) float64 {
	if len(top) == 0 {
		return 0
	}
	var sum float64
	for _, r := range top {
		if r.Item == nil {
			continue
		}
		sum += 0.5*r.Item.Authority + 0.5*r.Item.Stability
	}
	return sum / float64(len(top))
}

func consistencyScore(top []types.ScoredMemory) float64 {
	if len(top) < 2 {
		return 0.5
	}

	var tagSets []map[string]struct{}
	for _, r := range top {
		if r.Item == nil || len(r.Item.Tags) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(r.Item.Tags))
		for _, tag := range r.Item.Tags {
			set[tag] = struct{}{}
		}
		tagSets = append(tagSets, set)
	}
	if len(tagSets) == 0 {
		return 0.4
	}

	intersection := tagSets[0]
	union := make(map[string]struct{}, len(tagSets[0]))
	for k := range tagSets[0] {
		union[k] = struct{}{}
	}
	for _, set := range tagSets[1:] {
		next := make(map[string]struct{})
		for k := range intersection {
			if _, ok := set[k]; ok {
				next[k] = struct{}{}
			}
		}
		intersection = next
		for k := range set {
			union[k] = struct{}{}
		}
	}

	return safeDiv(float64(len(intersection)), float64(len(union)))
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
