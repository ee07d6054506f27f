package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/agentflow/memoryengine/config"
	"github.com/agentflow/memoryengine/types"
)

// memoryItemRecord is the GORM row shape a MemoryItem is marshaled to: the
// scalar fields that benefit from indexing live in real columns, everything
// else (tags, pointer, metadata) is a JSON blob.
type memoryItemRecord struct {
	ID           string `gorm:"primaryKey"`
	Owner        string `gorm:"index"`
	Type         string `gorm:"index"`
	Tier         string
	CreatedAt    time.Time
	LastAccessed *time.Time
	Payload      []byte
}

func (memoryItemRecord) TableName() string {
	return "memory_items"
}

// GormMetadataStore is a GORM-backed MetadataStore. The default driver is
// glebarez/sqlite, a cgo-free SQLite implementation suited to embedding the
// metadata store in a single binary; cfg.DSN is passed straight through, so
// a Postgres or MySQL dialector could be swapped in by a caller that opens
// the *gorm.DB itself and calls NewGormMetadataStoreWithDB.
type GormMetadataStore struct {
	db *gorm.DB
}

// NewGormMetadataStore opens a SQLite-backed store at cfg.DSN (a file path,
// or ":memory:" for an ephemeral store) and migrates its schema.
func NewGormMetadataStore(cfg config.DatabaseConfig) (*GormMetadataStore, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite metadata store: %w", err)
	}
	// SQLite serializes writers regardless; pinning the pool to a single
	// connection also keeps an in-memory DSN from fanning out into
	// per-connection databases that can't see each other's rows.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return NewGormMetadataStoreWithDB(db)
}

// NewGormMetadataStoreWithDB wraps an already-opened *gorm.DB, migrating its
// schema, for callers that want a non-default dialector.
func NewGormMetadataStoreWithDB(db *gorm.DB) (*GormMetadataStore, error) {
	if err := db.AutoMigrate(&memoryItemRecord{}); err != nil {
		return nil, fmt.Errorf("migrate metadata schema: %w", err)
	}
	return &GormMetadataStore{db: db}, nil
}

func toRecord(item *types.MemoryItem) (*memoryItemRecord, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal memory item: %w", err)
	}
	return &memoryItemRecord{
		ID:           item.ID,
		Owner:        item.Owner,
		Type:         string(item.Type),
		Tier:         string(item.Tier),
		CreatedAt:    item.CreatedAt,
		LastAccessed: item.LastAccessed,
		Payload:      payload,
	}, nil
}

func fromRecord(record *memoryItemRecord) (*types.MemoryItem, error) {
	var item types.MemoryItem
	if err := json.Unmarshal(record.Payload, &item); err != nil {
		return nil, fmt.Errorf("unmarshal memory item: %w", err)
	}
	return &item, nil
}

func (s *GormMetadataStore) Upsert(ctx context.Context, item *types.MemoryItem) error {
	record, err := toRecord(item)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(record).Error
}

func (s *GormMetadataStore) Get(ctx context.Context, id string) (*types.MemoryItem, error) {
	var record memoryItemRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return fromRecord(&record)
}

func (s *GormMetadataStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&memoryItemRecord{}, "id = ?", id).Error
}

func (s *GormMetadataStore) ListByOwner(ctx context.Context, owner string) ([]*types.MemoryItem, error) {
	var records []memoryItemRecord
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToItems(records)
}

func (s *GormMetadataStore) ListByOwnerAndType(ctx context.Context, owner string, memTypes []types.MemoryType) ([]*types.MemoryItem, error) {
	query := s.db.WithContext(ctx).Where("owner = ?", owner)
	if len(memTypes) > 0 {
		names := make([]string, len(memTypes))
		for i, t := range memTypes {
			names[i] = string(t)
		}
		query = query.Where("type IN ?", names)
	}
	var records []memoryItemRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToItems(records)
}

func (s *GormMetadataStore) UpdateAccess(ctx context.Context, id string, at time.Time) error {
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

func recordsToItems(records []memoryItemRecord) ([]*types.MemoryItem, error) {
	out := make([]*types.MemoryItem, 0, len(records))
	for i := range records {
		item, err := fromRecord(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

var _ MetadataStore = (*GormMetadataStore)(nil)
