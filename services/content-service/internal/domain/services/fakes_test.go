package services

import (
	"context"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	wp "github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

type mockMessaging struct {
	mock.Mock
}

func (m *mockMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	return m.Called(ctx, topic, message).Error(0)
}

func (m *mockMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	return m.Called(ctx, topic, key, message).Error(0)
}

func (m *mockMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	args := m.Called(ctx, topic, handler)
	fn, _ := args.Get(0).(func() error)
	return fn, args.Error(1)
}

func (m *mockMessaging) Close() error {
	return m.Called().Error(0)
}

type mockGateway struct {
	mock.Mock
}

var _ models.ContentGateway = (*mockGateway)(nil)

func (m *mockGateway) ListCatalogItems(ctx context.Context, categoryFilter string) ([]models.CatalogItem, error) {
	args := m.Called(ctx, categoryFilter)
	items, _ := args.Get(0).([]models.CatalogItem)
	return items, args.Error(1)
}

func (m *mockGateway) GetCatalogItemBySlug(ctx context.Context, slug string) (*models.CatalogItem, error) {
	args := m.Called(ctx, slug)
	item, _ := args.Get(0).(*models.CatalogItem)
	return item, args.Error(1)
}

func (m *mockGateway) ListAllSlugs(ctx context.Context) (*models.SlugListing, error) {
	args := m.Called(ctx)
	listing, _ := args.Get(0).(*models.SlugListing)
	return listing, args.Error(1)
}

func (m *mockGateway) ListCategories(ctx context.Context) ([]models.CategoryRef, error) {
	args := m.Called(ctx)
	refs, _ := args.Get(0).([]models.CategoryRef)
	return refs, args.Error(1)
}

func (m *mockGateway) ListRecentArticles(ctx context.Context, count int) ([]models.ArticleItem, error) {
	args := m.Called(ctx, count)
	articles, _ := args.Get(0).([]models.ArticleItem)
	return articles, args.Error(1)
}

func (m *mockGateway) SearchCatalogItems(ctx context.Context, term string) ([]models.CatalogItem, error) {
	args := m.Called(ctx, term)
	items, _ := args.Get(0).([]models.CatalogItem)
	return items, args.Error(1)
}

// memoryClicks хранилище переходов в памяти
type memoryClicks struct {
	saved []*wp.Click
	err   error
	stats []wp.ClickStats
	since time.Time
	limit int
}

func (r *memoryClicks) SaveClick(_ context.Context, click *wp.Click) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, click)
	return nil
}

func (r *memoryClicks) ClickStats(_ context.Context, since time.Time, limit int) ([]wp.ClickStats, error) {
	r.since, r.limit = since, limit
	return r.stats, r.err
}

// inlineTx выполняет fn без транзакции
type inlineTx struct {
	calls int
}

func (t *inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
