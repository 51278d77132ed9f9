package graphql

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

// sharedFetchTimeout ограничивает общий запрос к бэкенду, который не зависит от отмены вызывающих
const sharedFetchTimeout = 30 * time.Second

// CacheKeyPrefix префикс ключей закэшированных ответов, worker сбрасывает их по шаблону CacheKeyPrefix+"*"
const CacheKeyPrefix = "graphql:"

// CachedClient кэширует успешные ответы GraphQL на время ttl.
// Ошибки не кэшируются, сбой кэша не мешает запросу к бэкенду
type CachedClient struct {
	next   interfaces.GraphQLPort
	cache  interfaces.CachePort
	ttl    time.Duration
	logger interfaces.LoggerPort
	group  singleflight.Group
}

var _ interfaces.GraphQLPort = (*CachedClient)(nil)

// NewCachedClient оборачивает next кэшем
func NewCachedClient(next interfaces.GraphQLPort, cache interfaces.CachePort, ttl time.Duration, logger interfaces.LoggerPort) *CachedClient {
	return &CachedClient{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// CacheKey детерминированный ключ запроса, ключи переменных сортирует encoding/json
func CacheKey(req interfaces.GraphQLRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return CacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}

func (c *CachedClient) Execute(ctx context.Context, req interfaces.GraphQLRequest) (json.RawMessage, error) {
	key, err := CacheKey(req)
	if err != nil {
		return c.next.Execute(ctx, req)
	}

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
		return json.RawMessage(cached), nil
	case errors.Is(err, apperrors.ErrCacheMiss):
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
	default:
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		c.logger.WarnWithContext(ctx, "Ошибка чтения из кэша",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}

	// Одновременные промахи по одному ключу выполняют один запрос к бэкенду.
	// Запрос не наследует отмену первого вызывающего, иначе его отключение обрывает остальных
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		data, err := c.next.Execute(fetchCtx, req)
		if err != nil {
			return nil, err
		}

		if setErr := c.cache.Set(fetchCtx, key, data, c.ttl); setErr != nil {
			metrics.CacheOperations.WithLabelValues("set", "error").Inc()
			c.logger.WarnWithContext(ctx, "Ошибка записи в кэш",
				interfaces.LogField{Key: "key", Value: key},
				interfaces.LogField{Key: "error", Value: setErr.Error()},
			)
		} else {
			metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
		}

		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	}
}
