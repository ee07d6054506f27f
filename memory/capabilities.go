package memory

import (
	"context"
	"time"

	"github.com/agentflow/memoryengine/types"
)

// VectorFilter narrows a VectorIndex query to one owner, tier, and type set.
type VectorFilter struct {
	Owner string
	Tier  types.StorageTier
	Types []types.MemoryType
}

// MetadataStore is the canonical home of memory items.
type MetadataStore interface {
	Upsert(ctx context.Context, item *types.MemoryItem) error
	Get(ctx context.Context, id string) (*types.MemoryItem, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, owner string) ([]*types.MemoryItem, error)
	ListByOwnerAndType(ctx context.Context, owner string, memTypes []types.MemoryType) ([]*types.MemoryItem, error)
	UpdateAccess(ctx context.Context, id string, at time.Time) error
}

// VectorIndex is a pluggable similarity search back-end. Implementations
// must embed enough of the MemoryItem in metadata that a result can be
// used without a metadata round trip (skeletal content is acceptable).
type VectorIndex interface {
	Upsert(ctx context.Context, id string, text string, metadata map[string]any) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, queryText string, filter VectorFilter, limit int) ([]types.ScoredMemory, error)
}

// ObjectStore is the cold-tier payload store. Append is optional; callers
// detect support via AppendCapable.
type ObjectStore interface {
	Put(ctx context.Context, key string, payload any) (string, error)
	Get(ctx context.Context, key string) (any, error)
}

// AppendCapable is implemented by object stores that support appending to
// a list-shaped payload (the daily-notes file). Callers must type-assert.
type AppendCapable interface {
	Append(ctx context.Context, key string, payload any) (string, error)
}

// FeatureStore holds perceptual feature snapshots, most-recent first.
type FeatureStore interface {
	WriteFeature(ctx context.Context, owner string, payload map[string]any) error
	QueryFeatures(ctx context.Context, owner string, limit int) ([]map[string]any, error)
}

// GraphStore holds the semantic-item fact graph.
type GraphStore interface {
	UpsertFact(ctx context.Context, owner, subject, predicate, object string) error
	QueryRelated(ctx context.Context, owner, subject string, limit int) ([]string, error)
}
