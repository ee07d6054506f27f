package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentflow/memoryengine/config"
	"github.com/agentflow/memoryengine/types"
)

// RedisMetadataStore is a Redis-backed MetadataStore suitable for
// distributed production deployments: items are JSON-encoded values keyed
// by id, with a per-owner set tracking membership for the list operations.
type RedisMetadataStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisMetadataStore dials Redis per cfg and verifies connectivity.
func NewRedisMetadataStore(ctx context.Context, cfg config.RedisConfig) (*RedisMetadataStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "memoryengine:"
	}

	return &RedisMetadataStore{client: client, keyPrefix: keyPrefix}, nil
}

// NewRedisMetadataStoreWithClient wraps an already-constructed client,
// letting callers (and tests) inject a miniredis-backed client directly.
func NewRedisMetadataStoreWithClient(client *redis.Client, keyPrefix string) *RedisMetadataStore {
	if keyPrefix == "" {
		keyPrefix = "memoryengine:"
	}
	return &RedisMetadataStore{client: client, keyPrefix: keyPrefix}
}

// Close releases the underlying Redis connection pool.
func (s *RedisMetadataStore) Close() error {
	return s.client.Close()
}

func (s *RedisMetadataStore) itemKey(id string) string {
	return s.keyPrefix + "item:" + id
}

func (s *RedisMetadataStore) ownerSetKey(owner string) string {
	return s.keyPrefix + "owner:" + owner
}

func (s *RedisMetadataStore) Upsert(ctx context.Context, item *types.MemoryItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal memory item: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.itemKey(item.ID), data, 0)
	pipe.SAdd(ctx, s.ownerSetKey(item.Owner), item.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisMetadataStore) Get(ctx context.Context, id string) (*types.MemoryItem, error) {
	data, err := s.client.Get(ctx, s.itemKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item types.MemoryItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *RedisMetadataStore) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.itemKey(id))
	pipe.SRem(ctx, s.ownerSetKey(item.Owner), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisMetadataStore) ListByOwner(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	ids, err := s.client.SMembers(ctx, s.ownerSetKey(owner)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*types.MemoryItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *RedisMetadataStore) ListByOwnerAndType(ctx context.Context, owner string, memTypes []types.MemoryType) ([]*types.MemoryItem, error) {
	items, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(memTypes) == 0 {
		return items, nil
	}
	allowed := make(map[types.MemoryType]bool, len(memTypes))
	for _, t := range memTypes {
		allowed[t] = true
	}
	out := make([]*types.MemoryItem, 0, len(items))
	for _, item := range items {
		if allowed[item.Type] {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *RedisMetadataStore) UpdateAccess(ctx context.Context, id string, at time.Time) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	item.LastAccessed = &at
	return s.Upsert(ctx, item)
}

var _ MetadataStore = (*RedisMetadataStore)(nil)
