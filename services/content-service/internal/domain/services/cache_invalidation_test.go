package services

import (
	"context"
	"testing"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/cache"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/graphql"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/logger"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheInvalidator_ContentEventRefreshesCachedGateway(t *testing.T) {
	ctx := context.Background()
	port := newFakePort().on("GetCategories",
		`{"categories": {"nodes": [{"id": "1", "name": "Gadgets", "slug": "gadgets"}]}}`,
		`{"categories": {"nodes": [{"id": "1", "name": "Gadgets", "slug": "gadgets"}, {"id": "2", "name": "Fresh", "slug": "fresh"}]}}`,
	)
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	g := newGateway(t, graphql.NewCachedClient(port, store, time.Minute, logger.NewNopLogger()), GatewayOptions{})

	refs, err := g.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	refs, err = g.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 1, port.calls())

	invalidator := NewCacheInvalidator(store, logger.NewNopLogger())
	require.NoError(t, invalidator.HandleMessage(ctx, contentMessage(t, messaging.ContentEvent{
		ID: "e1", Type: messaging.ContentPublishedEvent, ContentType: messaging.ContentTypeProduct, Slug: "fresh",
	})))

	refs, err = g.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "fresh", refs[1].Slug)
	assert.Equal(t, 2, port.calls())
}

func TestCacheInvalidator_KeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, store.Set(ctx, graphql.CacheKeyPrefix+"abc", []byte("{}"), time.Minute))
	require.NoError(t, store.Set(ctx, "health:connection", []byte("ok"), time.Minute))

	require.NoError(t, NewCacheInvalidator(store, logger.NewNopLogger()).Invalidate(ctx))

	_, err := store.Get(ctx, graphql.CacheKeyPrefix+"abc")
	assert.Error(t, err)
	_, err = store.Get(ctx, "health:connection")
	assert.NoError(t, err)
}

func TestCacheInvalidator_IgnoresBadMessages(t *testing.T) {
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, store.Set(context.Background(), graphql.CacheKeyPrefix+"abc", []byte("{}"), time.Minute))
	invalidator := NewCacheInvalidator(store, logger.NewNopLogger())

	for _, value := range []string{"not json", `{"type": "content_archived"}`} {
		err := invalidator.HandleMessage(context.Background(), &interfaces.Message{ID: "m", Value: []byte(value)})
		assert.NoError(t, err)
	}

	_, err := store.Get(context.Background(), graphql.CacheKeyPrefix+"abc")
	assert.NoError(t, err)
}

func TestCacheInvalidator_NilCache(t *testing.T) {
	assert.NoError(t, NewCacheInvalidator(nil, logger.NewNopLogger()).Invalidate(context.Background()))
}
