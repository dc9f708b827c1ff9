package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead-origination/internal/domain/kv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvEntry is one persisted slot. "key" is reserved in MySQL, hence the column names.
type kvEntry struct {
	Key       string         `gorm:"primaryKey;size:64;column:entry_key"`
	Value     datatypes.JSON `gorm:"column:entry_value;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (kvEntry) TableName() string { return "kv_entries" }

type KVStore struct{ db *gorm.DB }

func NewKVStore(db *gorm.DB) *KVStore { return &KVStore{db: db} }

// Migrate creates the kv_entries table when missing.
func (r *KVStore) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&kvEntry{})
}

func (r *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out kvEntry
	res := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, kv.ErrNotFound
	}
	if res.Error != nil {
		return nil, fmt.Errorf("kv get %q: %w", key, res.Error)
	}
	return []byte(out.Value), nil
}

func (r *KVStore) Set(ctx context.Context, key string, value []byte) error {
	e := kvEntry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&e).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (r *KVStore) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

var _ kv.Store = (*KVStore)(nil)
