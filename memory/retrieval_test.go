package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentflow/memoryengine/types"
)

func newTestOrchestrator(t *testing.T) (RetrievalOrchestrator, MetadataStore, VectorIndex, ObjectStore) {
	t.Helper()
	metadataStore := NewInMemoryMetadataStore()
	vectorIndex := NewInMemoryVectorIndex()
	objectStore, err := NewFileObjectStore(t.TempDir())
	require.NoError(t, err)

	return RetrievalOrchestrator{
		MetadataStore: metadataStore,
		VectorIndex:   vectorIndex,
		ObjectStore:   objectStore,
		Plan:          NewRetrievalPlan(),
		Scorer:        NewConfidenceScorer(),
	}, metadataStore, vectorIndex, objectStore
}

// S1 (hot hit)
func TestRetrieval_HotHit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orch, metadataStore, vectorIndex, _ := newTestOrchestrator(t)

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Summary = "EU carbon border adjustment discussed"
	item.Content = item.Summary
	item.Tags = []string{"eu", "policy"}
	item.Confidence = 0.7
	require.NoError(t, metadataStore.Upsert(ctx, item))
	require.NoError(t, (EpisodicIndexer{VectorIndex: vectorIndex}).IndexHot(ctx, item))

	bundle, err := orch.Retrieve(ctx, types.MemoryQuery{Text: "What about EU carbon policy?", Owner: "u1"})
	require.NoError(t, err)
	require.Equal(t, []types.StorageTier{types.TierHot}, bundle.UsedTiers)
	require.NotEmpty(t, bundle.Blocks)
	require.GreaterOrEqual(t, bundle.Confidence.Total, 0.30)
	require.Equal(t, "hot search per type", bundle.Trace.Steps[0])
	require.Empty(t, bundle.Trace.Escalations)
}

// S3 (token coverage)
func TestRetrieval_TokenCoverage(t *testing.T) {
	t.Parallel()

	scorer := NewConfidenceScorer()
	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Content = "alpha gamma delta"
	report := scorer.Evaluate("alpha beta gamma", []types.ScoredMemory{{Item: item, Score: 1.0}})
	require.InDelta(t, 2.0/3.0, report.Coverage, 1e-9)
}

// Invariant 1: owner isolation
func TestRetrieval_OwnerIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orch, metadataStore, vectorIndex, _ := newTestOrchestrator(t)

	itemA := types.NewMemoryItem("owner-a", types.MemoryEpisodic)
	itemA.Content = "confidential owner a data"
	itemA.Summary = itemA.Content.(string)
	itemA.Tags = []string{"x"}
	require.NoError(t, metadataStore.Upsert(ctx, itemA))
	require.NoError(t, (EpisodicIndexer{VectorIndex: vectorIndex}).IndexHot(ctx, itemA))

	bundle, err := orch.Retrieve(ctx, types.MemoryQuery{Text: "confidential owner a data", Owner: "owner-b"})
	require.NoError(t, err)
	require.Empty(t, bundle.Results)
}

// Invariant 8: dedup law
func TestRetrieval_DedupLaw(t *testing.T) {
	t.Parallel()

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Tags = []string{"a"}
	results := []types.ScoredMemory{
		{Item: item, Score: 0.4},
		{Item: item, Score: 0.9},
	}
	deduped := dedupe(results)
	require.Len(t, deduped, 1)
	require.Equal(t, 0.9, deduped[0].Score)
}

// Invariant 3: escalation gate
func TestRetrieval_EscalationGate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orch, _, _, _ := newTestOrchestrator(t)

	bundle, err := orch.Retrieve(ctx, types.MemoryQuery{Text: "nothing indexed at all", Owner: "u1"})
	require.NoError(t, err)
	require.Contains(t, bundle.UsedTiers, types.TierHot)
	require.Less(t, bundle.Confidence.Total, orch.Plan.HotConfidence)
}

// Invariant 4: cold hydration completeness
func TestRetrieval_ColdHydrationCompleteness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orch, metadataStore, vectorIndex, objectStore := newTestOrchestrator(t)

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Summary = "archived carbon policy note"
	item.Tags = []string{"eu"}
	item.Pointer = map[string]string{"object_key": "u1/2026/01/01/daily_notes"}
	item.Tier = types.TierCold
	require.NoError(t, metadataStore.Upsert(ctx, item))
	require.NoError(t, (EpisodicIndexer{VectorIndex: vectorIndex}).IndexArchive(ctx, item))

	_, err := objectStore.(AppendCapable).Append(ctx, "u1/2026/01/01/daily_notes", map[string]any{
		"id": item.ID, "summary": item.Summary, "content": "full archived text", "tags": item.Tags,
		"type": string(item.Type), "owner": item.Owner, "created_at": item.CreatedAt,
	})
	require.NoError(t, err)

	orch.Plan.HotConfidence = 1.1
	orch.Plan.ColdFetchConfidence = 1.1

	bundle, err := orch.Retrieve(ctx, types.MemoryQuery{Text: "archived carbon policy note", Owner: "u1"})
	require.NoError(t, err)
	require.Contains(t, bundle.UsedTiers, types.TierCold)

	for _, r := range bundle.Results {
		if r.Tier == types.TierCold {
			require.NotNil(t, r.Item.Content)
		}
	}
}

func TestRetrieval_RerankFormula(t *testing.T) {
	t.Parallel()

	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.Confidence = 0.8
	score := rerankScore(types.ScoredMemory{Item: item, Score: 0.5})
	require.InDelta(t, 0.75*0.5+0.25*0.8, score, 1e-9)
}

func TestRetrieval_DeterministicWithInjectedClock(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scorer := NewConfidenceScorer()
	scorer.Now = func() time.Time { return fixed }
	item := types.NewMemoryItem("u1", types.MemoryEpisodic)
	item.CreatedAt = fixed
	report := scorer.Evaluate("q", []types.ScoredMemory{{Item: item, Score: 1}})
	require.Equal(t, 1.0, report.TemporalFit)
}
