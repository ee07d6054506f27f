package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/agentflow/memoryengine/config"
	"github.com/agentflow/memoryengine/embedding"
	"github.com/agentflow/memoryengine/memory/tokenize"
	"github.com/agentflow/memoryengine/types"
)

// Metrics counts facade activity, mirroring the reference system's
// request/escalation/token counters.
type Metrics struct {
	Requests            int64
	HotHit              int64
	ArchiveEscalation   int64
	ColdFetch           int64
	ThrashDetected      int64
	TokensReturned      int64
	TokensSavedEstimate int64
}

// SystemDeps are the pluggable collaborators a System is built from. Any
// store may be nil, in which case NewSystem wires the matching in-process
// reference backend (mirroring the teacher's nil-tolerant constructor
// style); a nil MetadataStore becomes the Redis- or GORM-backed store
// instead when cfg.Redis or cfg.Database is enabled.
type SystemDeps struct {
	MetadataStore MetadataStore
	VectorIndex   VectorIndex
	ObjectStore   ObjectStore
	FeatureStore  FeatureStore
	GraphStore    GraphStore
	Embedder      embedding.Embedder
	Config        *config.Config
	Logger        *zap.Logger
}

// System is the memory engine façade (C8): it wires the storage
// capabilities, routing policy, retrieval orchestrator, and the four
// workers, and exposes write/retrieve/flush/record_access/rehydrate in
// both async and blocking forms.
type System struct {
	metadataStore MetadataStore
	vectorIndex   VectorIndex
	objectStore   ObjectStore
	featureStore  FeatureStore
	graphStore    GraphStore
	embedder      embedding.Embedder
	cfg           *config.Config
	logger        *zap.Logger

	episodicIndexer  EpisodicIndexer
	semanticIndexer  SemanticGraphIndexer
	perceptualIndexer PerceptualIndexer
	routingPolicy    RoutingPolicy

	retrieval    RetrievalOrchestrator
	consolidator Consolidator
	archiver     Archiver
	rehydrator   *Rehydrator
	compactor    Compactor

	guard   loopGuard
	metrics *FacadeMetrics
	now     func() time.Time
}

// NewDefaultSystem wires the in-process reference backends (in-memory
// metadata/vector/feature/graph stores, a disk-backed cold object store
// under cfg.Storage.ColdRoot, and a deterministic hash embedder) — the
// configuration a local example or test suite wants.
func NewDefaultSystem(cfg *config.Config, logger *zap.Logger) (*System, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	objectStore, err := NewFileObjectStore(cfg.Storage.ColdRoot)
	if err != nil {
		return nil, fmt.Errorf("create default object store: %w", err)
	}
	return NewSystem(SystemDeps{
		MetadataStore: NewInMemoryMetadataStore(),
		VectorIndex:   NewInMemoryVectorIndex(),
		ObjectStore:   objectStore,
		FeatureStore:  NewInMemoryFeatureStore(),
		GraphStore:    NewInMemoryGraphStore(),
		Embedder:      embedding.NewHashEmbedder(cfg.Embedding.Dimension),
		Config:        cfg,
		Logger:        logger,
	})
}

// NewSystem builds a System from deps, filling in any nil collaborator
// with the matching in-process reference implementation (or, for the
// metadata store, the Redis- or GORM-backed store when enabled in cfg).
func NewSystem(deps SystemDeps) (*System, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "memory_system"))

	metadataStore := deps.MetadataStore
	if metadataStore == nil {
		switch {
		case cfg.Redis.Enabled:
			store, err := NewRedisMetadataStore(context.Background(), cfg.Redis)
			if err != nil {
				return nil, fmt.Errorf("wire redis metadata store: %w", err)
			}
			metadataStore = store
		case cfg.Database.Enabled:
			store, err := NewGormMetadataStore(cfg.Database)
			if err != nil {
				return nil, fmt.Errorf("wire gorm metadata store: %w", err)
			}
			metadataStore = store
		default:
			metadataStore = NewInMemoryMetadataStore()
		}
	}
	vectorIndex := deps.VectorIndex
	if vectorIndex == nil {
		vectorIndex = NewInMemoryVectorIndex()
	}
	objectStore := deps.ObjectStore
	if objectStore == nil {
		store, err := NewFileObjectStore(cfg.Storage.ColdRoot)
		if err != nil {
			return nil, err
		}
		objectStore = store
	}
	featureStore := deps.FeatureStore
	if featureStore == nil {
		featureStore = NewInMemoryFeatureStore()
	}
	graphStore := deps.GraphStore
	if graphStore == nil {
		graphStore = NewInMemoryGraphStore()
	}
	embedder := deps.Embedder
	if embedder == nil {
		embedder = embedding.NewHashEmbedder(cfg.Embedding.Dimension)
	}

	episodicIndexer := EpisodicIndexer{VectorIndex: vectorIndex}
	scorer := NewConfidenceScorer()
	scorer.SemanticRelevanceWeight = cfg.Confidence.SemanticRelevanceWeight
	scorer.CoverageWeight = cfg.Confidence.CoverageWeight
	scorer.TemporalFitWeight = cfg.Confidence.TemporalFitWeight
	scorer.AuthorityWeight = cfg.Confidence.AuthorityWeight
	scorer.ConsistencyWeight = cfg.Confidence.ConsistencyWeight

	plan := NewRetrievalPlan()
	plan.HotConfidence = cfg.Retrieval.HotConfidence
	plan.ColdFetchConfidence = cfg.Retrieval.ColdFetchConfidence
	if cfg.Retrieval.MaxColdFetches > 0 {
		plan.ColdFetchLimit = cfg.Retrieval.MaxColdFetches
	}
	plan.MaxResults = cfg.Retrieval.TopK * 5
	if plan.MaxResults <= 0 {
		plan.MaxResults = NewRetrievalPlan().MaxResults
	}
	plan.MaxContextTokens = cfg.Retrieval.TokenBudget

	consolidator := NewConsolidator(metadataStore, vectorIndex)
	consolidator.SemanticMinCount = cfg.Consolidation.SemanticMinCount
	consolidator.PerceptualSummaryLimit = cfg.Consolidation.PerceptualSummaryLimit

	rehydrator := NewRehydrator(metadataStore, vectorIndex)
	rehydrator.AccessThreshold = cfg.Rehydrator.AccessThreshold

	sys := &System{
		metadataStore:     metadataStore,
		vectorIndex:       vectorIndex,
		objectStore:       objectStore,
		featureStore:      featureStore,
		graphStore:        graphStore,
		embedder:          embedder,
		cfg:               cfg,
		logger:            logger,
		episodicIndexer:   episodicIndexer,
		semanticIndexer:   SemanticGraphIndexer{GraphStore: graphStore},
		perceptualIndexer: PerceptualIndexer{FeatureStore: featureStore},
		routingPolicy:     NewRoutingPolicy(),
		retrieval: RetrievalOrchestrator{
			MetadataStore: metadataStore,
			VectorIndex:   vectorIndex,
			ObjectStore:   objectStore,
			Plan:          plan,
			Scorer:        scorer,
		},
		consolidator: consolidator,
		archiver:     NewArchiver(metadataStore, objectStore, vectorIndex),
		rehydrator:   rehydrator,
		compactor:    NewCompactor(metadataStore),
		metrics:      newFacadeMetrics("memoryengine"),
		now:          time.Now,
	}
	return sys, nil
}

// WriteInput is the tagged variant accepted by Write: exactly one field is
// set, mirroring the MemoryEvent | MemoryItem | Raw map source contract
// from spec.md §9 ("Event/Item/dict coercion").
type WriteInput struct {
	Event *types.MemoryEvent
	Item  *types.MemoryItem
	// Raw carries a loosely-typed map (e.g. decoded from JSON at an HTTP
	// boundary) using the same field names as MemoryEvent's json tags
	// (content, type, owner, summary, tags, ttl_seconds, confidence,
	// authority, stability, pointer). It is coerced into a MemoryEvent
	// before ToItem runs.
	Raw map[string]any
}

func (w WriteInput) intoItem() (*types.MemoryItem, error) {
	switch {
	case w.Item != nil:
		return w.Item, nil
	case w.Event != nil:
		return w.Event.ToItem(), nil
	case w.Raw != nil:
		event, err := rawToEvent(w.Raw)
		if err != nil {
			return nil, types.ErrInvalidInput.WithCause(fmt.Errorf("decode raw write input: %w", err))
		}
		return event.ToItem(), nil
	default:
		return nil, types.ErrInvalidInput.WithCause(fmt.Errorf("write input carries neither an event, an item, nor a raw map"))
	}
}

// rawToEvent round-trips a raw map through JSON into a MemoryEvent, relying
// on MemoryEvent's json tags to do the field coercion.
func rawToEvent(raw map[string]any) (*types.MemoryEvent, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var event types.MemoryEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// attachEmbedding populates item.Metadata["embedding"] from s.embedder, for
// forward compatibility with a real ANN backend (the reference VectorIndex
// never reads it — it scores by token overlap). A failing embedder does
// not fail the write; it only skips the metadata seam.
func (s *System) attachEmbedding(ctx context.Context, item *types.MemoryItem) {
	vec, err := s.embedder.Embed(ctx, item.Text())
	if err != nil {
		s.logger.Warn("embed item failed, skipping embedding metadata", zap.String("item_id", item.ID), zap.Error(err))
		return
	}
	if item.Metadata == nil {
		item.Metadata = map[string]any{}
	}
	item.Metadata["embedding"] = vec
}

// Write coerces input into a MemoryItem, applies the working-TTL default,
// runs the routing policy, and fans the item out to metadata/vector/
// feature back-ends accordingly. Semantic graph extraction always runs.
func (s *System) Write(ctx context.Context, input WriteInput) (*types.MemoryItem, error) {
	item, err := input.intoItem()
	if err != nil {
		return nil, err
	}
	if item.Type == types.MemoryWorking && item.TTLSeconds == nil {
		ttl := s.cfg.Working.DefaultTTLSeconds
		item.TTLSeconds = &ttl
	}
	s.attachEmbedding(ctx, item)

	decision := s.routingPolicy.Route(item)
	if decision.WriteHot {
		if err := s.metadataStore.Upsert(ctx, item); err != nil {
			return nil, err
		}
	}
	if decision.WriteVector {
		if err := s.episodicIndexer.IndexHot(ctx, item); err != nil {
			return nil, err
		}
	}
	if decision.WriteFeatures {
		if err := s.perceptualIndexer.Index(ctx, item); err != nil {
			return nil, err
		}
	}
	if err := s.semanticIndexer.Index(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// WriteSync is the blocking form of Write.
func (s *System) WriteSync(input WriteInput) (*types.MemoryItem, error) {
	var result *types.MemoryItem
	err := s.runBlocking(func(ctx context.Context) error {
		var err error
		result, err = s.Write(ctx, input)
		return err
	})
	return result, err
}

// WritePerceptual forces the coerced item's type to perceptual regardless
// of the input's own type, then routes and fans out exactly like Write.
func (s *System) WritePerceptual(ctx context.Context, input WriteInput) (*types.MemoryItem, error) {
	item, err := input.intoItem()
	if err != nil {
		return nil, err
	}
	item.Type = types.MemoryPerceptual
	s.attachEmbedding(ctx, item)

	decision := s.routingPolicy.Route(item)
	if decision.WriteHot {
		if err := s.metadataStore.Upsert(ctx, item); err != nil {
			return nil, err
		}
	}
	if decision.WriteVector {
		if err := s.episodicIndexer.IndexHot(ctx, item); err != nil {
			return nil, err
		}
	}
	if decision.WriteFeatures {
		if err := s.perceptualIndexer.Index(ctx, item); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// WritePerceptualSync is the blocking form of WritePerceptual.
func (s *System) WritePerceptualSync(input WriteInput) (*types.MemoryItem, error) {
	var result *types.MemoryItem
	err := s.runBlocking(func(ctx context.Context) error {
		var err error
		result, err = s.WritePerceptual(ctx, input)
		return err
	})
	return result, err
}

// Retrieve runs the retrieval cascade for query and updates the facade's
// request/escalation/token metrics.
func (s *System) Retrieve(ctx context.Context, query types.MemoryQuery) (types.MemoryBundle, error) {
	bundle, err := s.retrieval.Retrieve(ctx, query)
	if err != nil {
		return types.MemoryBundle{}, err
	}

	s.metrics.requests.Inc()
	for _, tier := range bundle.UsedTiers {
		if tier == types.TierArchiveIndex {
			s.metrics.archiveEscalation.Inc()
		}
		if tier == types.TierCold {
			s.metrics.coldFetch.Inc()
		}
	}
	if len(bundle.UsedTiers) > 0 && bundle.UsedTiers[0] == types.TierHot {
		s.metrics.hotHit.Inc()
	}

	var returnedTokens int64
	for _, block := range bundle.Blocks {
		returnedTokens += int64(tokenize.Count(block.Text))
	}
	s.metrics.tokensReturned.Add(float64(returnedTokens))
	baseline := int64(s.retrieval.Plan.MaxResults) * 50
	if saved := baseline - returnedTokens; saved > 0 {
		s.metrics.tokensSavedEstimate.Add(float64(saved))
	}

	return bundle, nil
}

// RetrieveText is a convenience wrapper for the common string-query form.
func (s *System) RetrieveText(ctx context.Context, queryText, owner string) (types.MemoryBundle, error) {
	if owner == "" {
		return types.MemoryBundle{}, types.ErrInvalidInput.WithCause(fmt.Errorf("owner is required when query is a string"))
	}
	return s.Retrieve(ctx, types.MemoryQuery{Text: queryText, Owner: owner, TopK: s.cfg.Retrieval.TopK})
}

// RetrieveSync is the blocking form of Retrieve.
func (s *System) RetrieveSync(query types.MemoryQuery) (types.MemoryBundle, error) {
	var result types.MemoryBundle
	err := s.runBlocking(func(ctx context.Context) error {
		var err error
		result, err = s.Retrieve(ctx, query)
		return err
	})
	return result, err
}

// Flush runs consolidation, then archival (if configured), then
// compaction, strictly in sequence, returning the newly consolidated
// items.
func (s *System) Flush(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	newItems, err := s.consolidator.RunOnce(ctx, owner)
	if err != nil {
		return nil, err
	}
	if s.cfg.Archiver.OnFlush {
		if _, err := s.archiver.RunOnce(ctx, owner); err != nil {
			return nil, err
		}
	}
	if _, err := s.compactor.RunOnce(ctx, owner); err != nil {
		return nil, err
	}
	return newItems, nil
}

// FlushSync is the blocking form of Flush.
func (s *System) FlushSync(owner string) ([]*types.MemoryItem, error) {
	var result []*types.MemoryItem
	err := s.runBlocking(func(ctx context.Context) error {
		var err error
		result, err = s.Flush(ctx, owner)
		return err
	})
	return result, err
}

// RecordAccess increments the rehydrator's access counter for id and bumps
// the item's last-accessed timestamp in the metadata store.
func (s *System) RecordAccess(ctx context.Context, id string) error {
	s.rehydrator.RecordAccess(id)
	return s.metadataStore.UpdateAccess(ctx, id, s.now())
}

// RecordAccessSync is the blocking form of RecordAccess.
func (s *System) RecordAccessSync(id string) error {
	return s.runBlocking(func(ctx context.Context) error {
		return s.RecordAccess(ctx, id)
	})
}

// Rehydrate promotes cold items for owner whose access count has crossed
// the rehydrator's threshold.
func (s *System) Rehydrate(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	warmed, err := s.rehydrator.RunOnce(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(warmed) > 0 {
		s.metrics.thrashDetected.Inc()
	}
	return warmed, nil
}

// RehydrateSync is the blocking form of Rehydrate.
func (s *System) RehydrateSync(owner string) ([]*types.MemoryItem, error) {
	var result []*types.MemoryItem
	err := s.runBlocking(func(ctx context.Context) error {
		var err error
		result, err = s.Rehydrate(ctx, owner)
		return err
	})
	return result, err
}

// Metrics returns a snapshot of the facade's request counters.
func (s *System) Metrics() Metrics {
	return s.metrics.Snapshot()
}

// MetricsCollectors exposes the facade's prometheus collectors so a host
// application can register them into its own registry for scraping.
func (s *System) MetricsCollectors() []prometheus.Collector {
	return s.metrics.Collectors()
}

// runBlocking takes the loop guard, drives fn against a background
// context, and releases the guard. A second blocking call already in
// flight on this System fails fast with ErrLoopMisuse rather than
// blocking or deadlocking.
func (s *System) runBlocking(fn func(ctx context.Context) error) error {
	if !s.guard.enter() {
		return types.ErrLoopMisuse
	}
	defer s.guard.exit()
	return fn(context.Background())
}
