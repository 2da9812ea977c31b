package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coffeeshop/cartsync/internal/cache"
	"github.com/coffeeshop/cartsync/internal/repository"
)

// Store 键值存储（localStorage 等价物），值为原始 JSON 文本
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore 进程内存储
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get 读取
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set 写入
func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete 删除
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileStore 单个 JSON 文件承载的键值存储，文件内容为 {key: value}
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore 创建文件存储
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get 读取
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set 写入
func (s *FileStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete 删除
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file failed: %w", err)
	}
	if len(content) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("decode storage file failed: %w", err)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir failed: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write storage file failed: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// DatabaseStore 基于 storage_entries 表的存储
type DatabaseStore struct {
	repo repository.StorageEntryRepository
}

// NewDatabaseStore 创建数据库存储
func NewDatabaseStore(repo repository.StorageEntryRepository) *DatabaseStore {
	return &DatabaseStore{repo: repo}
}

// Get 读取
func (s *DatabaseStore) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return "", false, err
	}
	if entry == nil {
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Set 写入
func (s *DatabaseStore) Set(ctx context.Context, key string, value string) error {
	_, err := s.repo.Upsert(ctx, key, value)
	return err
}

// Delete 删除
func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

// RedisStore 基于全局 Redis 客户端的存储，需先调用 cache.InitRedis
type RedisStore struct {
	ttl time.Duration
}

// NewRedisStore 创建 Redis 存储，ttl 为 0 表示不过期
func NewRedisStore(ttl time.Duration) *RedisStore {
	return &RedisStore{ttl: ttl}
}

// Get 读取
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if !cache.Enabled() {
		return "", false, ErrStoreUnavailable
	}
	return cache.GetString(ctx, key)
}

// Set 写入
func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	if !cache.Enabled() {
		return ErrStoreUnavailable
	}
	return cache.SetString(ctx, key, value, s.ttl)
}

// Delete 删除
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if !cache.Enabled() {
		return ErrStoreUnavailable
	}
	return cache.Del(ctx, key)
}
