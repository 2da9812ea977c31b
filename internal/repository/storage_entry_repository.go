package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coffeeshop/cartsync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageEntryRepository 本地键值存储访问接口
type StorageEntryRepository interface {
	GetByKey(ctx context.Context, key string) (*models.StorageEntry, error)
	Upsert(ctx context.Context, key string, value string) (*models.StorageEntry, error)
	Delete(ctx context.Context, key string) error
}

// GormStorageEntryRepository GORM 实现
type GormStorageEntryRepository struct {
	db *gorm.DB
}

// NewStorageEntryRepository 创建本地存储仓库
func NewStorageEntryRepository(db *gorm.DB) *GormStorageEntryRepository {
	return &GormStorageEntryRepository{db: db}
}

// GetByKey 获取存储项，不存在时返回 nil
func (r *GormStorageEntryRepository) GetByKey(ctx context.Context, key string) (*models.StorageEntry, error) {
	var entry models.StorageEntry
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert 更新或创建存储项
func (r *GormStorageEntryRepository) Upsert(ctx context.Context, key string, value string) (*models.StorageEntry, error) {
	entry := &models.StorageEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete 删除存储项，不存在时视为成功
func (r *GormStorageEntryRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.StorageEntry{}).Error
}
