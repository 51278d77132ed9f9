package cache

import (
	"context"
	"path"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache кэш в памяти процесса для одиночного инстанса и разработки
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache создает кэш с TTL по умолчанию и периодом очистки
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) interfaces.CachePort {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	val, found := m.store.Get(key)
	if !found {
		return nil, apperrors.ErrCacheMiss
	}

	data, ok := val.([]byte)
	if !ok {
		m.store.Delete(key)
		return nil, apperrors.ErrCacheMiss
	}

	// Копия, чтобы вызывающий не мог изменить закэшированное значение
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)
	if expiration == 0 {
		expiration = gocache.NoExpiration
	}
	m.store.Set(key, data, expiration)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// DeleteByPattern сопоставляет ключи через path.Match, для ключей без '/' это совпадает с Redis MATCH
func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return err
	}

	for key := range m.store.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			m.store.Delete(key)
		}
	}
	return nil
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}
