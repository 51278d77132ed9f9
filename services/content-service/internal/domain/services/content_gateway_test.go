package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort отвечает заранее заданными data по имени операции и запоминает запросы
type fakePort struct {
	mu        sync.Mutex
	responses map[string][]string
	err       error
	requests  []interfaces.GraphQLRequest
}

func newFakePort() *fakePort {
	return &fakePort{responses: map[string][]string{}}
}

func (p *fakePort) on(operation string, data ...string) *fakePort {
	p.responses[operation] = append(p.responses[operation], data...)
	return p
}

func (p *fakePort) Execute(_ context.Context, req interfaces.GraphQLRequest) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}

	queue := p.responses[req.OperationName]
	if len(queue) == 0 {
		return nil, fmt.Errorf("неожиданная операция %s", req.OperationName)
	}
	data := queue[0]
	if len(queue) > 1 {
		p.responses[req.OperationName] = queue[1:]
	}
	return json.RawMessage(data), nil
}

func (p *fakePort) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func newGateway(t *testing.T, port interfaces.GraphQLPort, opts GatewayOptions) *ContentGateway {
	t.Helper()
	g, err := NewContentGateway(port, opts, logger.NewNopLogger())
	require.NoError(t, err)
	return g
}

const widgetProduct = `{
  "id": "cHJvZHVjdDo5MDAw",
  "title": "Widget 9000",
  "slug": "widget-9000",
  "excerpt": "<p>The best widget</p>",
  "content": "<p>Long review</p>",
  "date": "2024-03-01T10:00:00",
  "modified": "2024-03-02T11:30:00",
  "featuredImage": {"node": {"sourceUrl": "https://cdn.example.com/w.jpg", "altText": "Widget", "mediaDetails": {"width": 800, "height": 600}}},
  "affiliateFields": {
    "price": "49.99",
    "comparePrice": 79.99,
    "affiliateLink": "https://partner.example.com/widget-9000",
    "rating": "4.5",
    "reviewCount": 120,
    "features": [{"feature": "Fast"}, {"feature": "Quiet"}],
    "pros": ["Cheap"],
    "cons": null,
    "buyButtonText": null
  },
  "categories": {"nodes": [{"id": "Y2F0OjE=", "name": "Gadgets", "slug": "gadgets"}]},
  "tags": {"nodes": [{"id": "dGFnOjE=", "name": "Sale", "slug": "sale"}]},
  "seo": {"title": "Widget 9000 review", "metaDesc": "", "opengraphImage": null}
}`

func TestNewContentGateway_RequiresPort(t *testing.T) {
	_, err := NewContentGateway(nil, GatewayOptions{}, logger.NewNopLogger())
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestGetCatalogItemBySlug_WidgetScenario(t *testing.T) {
	port := newFakePort().on("GetProductBySlug", `{"product": `+widgetProduct+`}`)
	g := newGateway(t, port, GatewayOptions{})

	item, err := g.GetCatalogItemBySlug(context.Background(), "widget-9000")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, "widget-9000", item.Slug)
	assert.Equal(t, "Widget 9000", item.Title)
	assert.Equal(t, "<p>Long review</p>", item.Body)
	assert.Equal(t, 2024, item.CreatedAt.Year())

	require.NotNil(t, item.Image)
	assert.Equal(t, 800, item.Image.Width)

	require.NotNil(t, item.Commercial)
	assert.Equal(t, "49.99", item.Commercial.Price)
	require.NotNil(t, item.Commercial.ComparePrice)
	assert.Equal(t, "79.99", *item.Commercial.ComparePrice)
	assert.Equal(t, []string{"Fast", "Quiet"}, item.Commercial.Features)
	assert.Equal(t, []string{"Cheap"}, item.Commercial.Pros)
	assert.NotNil(t, item.Commercial.Cons)
	assert.Empty(t, item.Commercial.Cons)
	assert.Equal(t, models.DefaultCTALabel, item.Commercial.CTA())
	require.NotNil(t, item.Commercial.Rating)
	assert.InDelta(t, 4.5, *item.Commercial.Rating, 0.0001)
	require.NotNil(t, item.Commercial.ReviewCount)
	assert.Equal(t, 120, *item.Commercial.ReviewCount)

	discount, ok := item.Commercial.Discount()
	assert.True(t, ok)
	assert.Equal(t, 38, discount)

	assert.Len(t, item.Categories, 1)
	assert.Len(t, item.Tags, 1)
	require.NotNil(t, item.SEO)
	assert.Equal(t, "Widget 9000 review", item.SEO.Title)

	require.Len(t, port.requests, 1)
	assert.Equal(t, "widget-9000", port.requests[0].Variables["slug"])
}

func TestGetCatalogItemBySlug_NotFound(t *testing.T) {
	port := newFakePort().on("GetProductBySlug", `{"product": null}`)
	g := newGateway(t, port, GatewayOptions{})

	item, err := g.GetCatalogItemBySlug(context.Background(), "does-not-exist")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestGetCatalogItemBySlug_SlugMismatchIsNotFound(t *testing.T) {
	port := newFakePort().on("GetProductBySlug", `{"product": `+widgetProduct+`}`)
	g := newGateway(t, port, GatewayOptions{})

	item, err := g.GetCatalogItemBySlug(context.Background(), "Widget-9000")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestGetCatalogItemBySlug_BlankSlug(t *testing.T) {
	port := newFakePort()
	g := newGateway(t, port, GatewayOptions{})

	_, err := g.GetCatalogItemBySlug(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Zero(t, port.calls())
}

func TestSlugRoundTrip(t *testing.T) {
	port := newFakePort().
		on("GetProducts", `{"products": {"nodes": [`+widgetProduct+`]}}`).
		on("GetProductBySlug", `{"product": `+widgetProduct+`}`)
	g := newGateway(t, port, GatewayOptions{})

	items, err := g.ListCatalogItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item, err := g.GetCatalogItemBySlug(context.Background(), items[0].Slug)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, items[0].ID, item.ID)
}

func TestListCatalogItems_CategoryFilterIsVariable(t *testing.T) {
	port := newFakePort().
		on("GetProducts", `{"products": {"nodes": []}}`, `{"products": {"nodes": []}}`)
	g := newGateway(t, port, GatewayOptions{})

	items, err := g.ListCatalogItems(context.Background(), `gadgets" } }`)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = g.ListCatalogItems(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, port.requests, 2)
	assert.Equal(t, listProductsQuery, port.requests[0].Query)
	assert.Equal(t, map[string]interface{}{"categoryName": `gadgets" } }`}, port.requests[0].Variables["where"])
	assert.Equal(t, 100, port.requests[0].Variables["first"])
	assert.NotContains(t, port.requests[1].Variables, "where")
}

func TestListCatalogItems_OmittedCollectionsAreEmpty(t *testing.T) {
	product := `{"id": "cDox", "title": "Bare", "slug": "bare", "date": "", "modified": ""}`
	port := newFakePort().on("GetProducts", `{"products": {"nodes": [`+product+`]}}`)
	g := newGateway(t, port, GatewayOptions{})

	items, err := g.ListCatalogItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.NotNil(t, items[0].Categories)
	assert.Empty(t, items[0].Categories)
	assert.NotNil(t, items[0].Tags)
	assert.Empty(t, items[0].Tags)
	assert.Nil(t, items[0].Image)
	assert.Nil(t, items[0].Commercial)
	assert.Nil(t, items[0].SEO)
	assert.True(t, items[0].CreatedAt.IsZero())
}

func TestListCatalogItems_InvalidItemFailsWholeCall(t *testing.T) {
	tests := []struct {
		name    string
		product string
	}{
		{
			name:    "unparseable price",
			product: `{"id": "cDoy", "slug": "bad", "affiliateFields": {"price": "cheap", "affiliateLink": "https://x.example.com"}}`,
		},
		{
			name:    "rating out of range",
			product: `{"id": "cDoy", "slug": "bad", "affiliateFields": {"price": "10", "affiliateLink": "https://x.example.com", "rating": 7}}`,
		},
		{
			name:    "relative affiliate link",
			product: `{"id": "cDoy", "slug": "bad", "affiliateFields": {"price": "10", "affiliateLink": "/buy"}}`,
		},
		{
			name:    "javascript affiliate link",
			product: `{"id": "cDoy", "slug": "bad", "affiliateFields": {"price": "10", "affiliateLink": "javascript:alert(1)"}}`,
		},
		{
			name:    "ftp affiliate link",
			product: `{"id": "cDoy", "slug": "bad", "affiliateFields": {"price": "10", "affiliateLink": "ftp://files.example.com/widget"}}`,
		},
		{
			name:    "missing slug",
			product: `{"id": "cDoy", "slug": ""}`,
		},
		{
			name:    "bad date",
			product: `{"id": "cDoy", "slug": "bad", "date": "yesterday"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := newFakePort().on("GetProducts", `{"products": {"nodes": [`+widgetProduct+`, `+tt.product+`]}}`)
			g := newGateway(t, port, GatewayOptions{})

			items, err := g.ListCatalogItems(context.Background(), "")
			assert.ErrorIs(t, err, apperrors.ErrBackendProtocol)
			assert.Nil(t, items)
		})
	}
}

func TestListCatalogItems_OneSidedCommercialDataKept(t *testing.T) {
	product := `{"id": "cDoz", "slug": "no-link", "affiliateFields": {"price": 15, "affiliateLink": ""}}`
	port := newFakePort().on("GetProducts", `{"products": {"nodes": [`+product+`]}}`)
	g := newGateway(t, port, GatewayOptions{})

	items, err := g.ListCatalogItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Commercial)
	assert.Equal(t, "15", items[0].Commercial.Price)
	assert.False(t, items[0].Commercial.HasPurchaseLink())
}

func TestGatewayErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "graphql errors",
			err:  &apperrors.BackendProtocolError{Messages: []string{"Cannot query field"}},
			want: apperrors.ErrBackendProtocol,
		},
		{
			name: "unavailable",
			err:  fmt.Errorf("%w: connection refused", apperrors.ErrBackendUnavailable),
			want: apperrors.ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := newFakePort()
			port.err = tt.err
			g := newGateway(t, port, GatewayOptions{})
			ctx := context.Background()

			items, err := g.ListCatalogItems(ctx, "")
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, items)

			item, err := g.GetCatalogItemBySlug(ctx, "widget-9000")
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, item)

			listing, err := g.ListAllSlugs(ctx)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, listing)

			refs, err := g.ListCategories(ctx)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, refs)

			articles, err := g.ListRecentArticles(ctx, 3)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, articles)

			found, err := g.SearchCatalogItems(ctx, "widget")
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, found)
		})
	}
}

func TestMalformedDataIsProtocolError(t *testing.T) {
	port := newFakePort().on("GetCategories", `{"categories": {"nodes": "oops"}}`)
	g := newGateway(t, port, GatewayOptions{})

	refs, err := g.ListCategories(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrBackendProtocol)
	assert.Nil(t, refs)
}

func TestListAllSlugs_Paginates(t *testing.T) {
	port := newFakePort().on("GetAllProductSlugs",
		`{"products": {"nodes": [{"slug": "a"}, {"slug": "b"}], "pageInfo": {"hasNextPage": true, "endCursor": "c1"}}}`,
		`{"products": {"nodes": [{"slug": "c"}], "pageInfo": {"hasNextPage": false, "endCursor": "c2"}}}`,
	)
	g := newGateway(t, port, GatewayOptions{SlugPageSize: 2})

	listing, err := g.ListAllSlugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, listing.Slugs)
	assert.False(t, listing.Truncated)

	require.Len(t, port.requests, 2)
	assert.NotContains(t, port.requests[0].Variables, "after")
	assert.Equal(t, "c1", port.requests[1].Variables["after"])
}

func TestListAllSlugs_Truncated(t *testing.T) {
	port := newFakePort().on("GetAllProductSlugs",
		`{"products": {"nodes": [{"slug": "a"}, {"slug": "b"}], "pageInfo": {"hasNextPage": true, "endCursor": "c1"}}}`,
		`{"products": {"nodes": [{"slug": "c"}], "pageInfo": {"hasNextPage": true, "endCursor": "c2"}}}`,
	)
	g := newGateway(t, port, GatewayOptions{SlugPageSize: 2, SlugBound: 3})

	listing, err := g.ListAllSlugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, listing.Slugs)
	assert.True(t, listing.Truncated)

	require.Len(t, port.requests, 2)
	assert.Equal(t, 1, port.requests[1].Variables["first"])
}

func TestListAllSlugs_EmptySlugIsProtocolError(t *testing.T) {
	port := newFakePort().on("GetAllProductSlugs",
		`{"products": {"nodes": [{"slug": ""}], "pageInfo": {"hasNextPage": false}}}`)
	g := newGateway(t, port, GatewayOptions{})

	_, err := g.ListAllSlugs(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrBackendProtocol)
}

func TestListCategories(t *testing.T) {
	port := newFakePort().on("GetCategories",
		`{"categories": {"nodes": [{"id": "1", "name": "Gadgets", "slug": "gadgets", "description": "All gadgets", "count": 4}, {"id": "2", "name": "Misc", "slug": "misc", "description": "", "count": null}]}}`)
	g := newGateway(t, port, GatewayOptions{})

	refs, err := g.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)

	require.NotNil(t, refs[0].Description)
	assert.Equal(t, "All gadgets", *refs[0].Description)
	require.NotNil(t, refs[0].Count)
	assert.Equal(t, 4, *refs[0].Count)
	assert.Nil(t, refs[1].Description)
	assert.Nil(t, refs[1].Count)
}

func TestListRecentArticles_ZeroMakesNoCall(t *testing.T) {
	port := newFakePort()
	g := newGateway(t, port, GatewayOptions{})

	articles, err := g.ListRecentArticles(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
	assert.Zero(t, port.calls())
}

func TestListRecentArticles_Negative(t *testing.T) {
	g := newGateway(t, newFakePort(), GatewayOptions{})

	_, err := g.ListRecentArticles(context.Background(), -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestListRecentArticles_DescendingAndBounded(t *testing.T) {
	// бэкенд вернул больше записей, чем просили, и не в том порядке
	posts := `{"posts": {"nodes": [
	  {"id": "p1", "slug": "old", "date": "2023-01-01T00:00:00", "author": {"node": {"name": "Ann", "avatar": {"url": "https://a.example.com/ann.png"}}}},
	  {"id": "p2", "slug": "newest", "date": "2024-06-01T00:00:00"},
	  {"id": "p3", "slug": "middle", "date": "2024-01-01T00:00:00"}
	]}}`
	port := newFakePort().on("GetRecentPosts", posts)
	g := newGateway(t, port, GatewayOptions{})

	articles, err := g.ListRecentArticles(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "newest", articles[0].Slug)
	assert.Equal(t, "middle", articles[1].Slug)
	assert.False(t, articles[0].PublishedAt.Before(articles[1].PublishedAt))

	assert.Equal(t, 2, port.requests[0].Variables["count"])
}

func TestListRecentArticles_Author(t *testing.T) {
	posts := `{"posts": {"nodes": [
	  {"id": "p1", "slug": "hello", "date": "2024-01-01T00:00:00Z", "author": {"node": {"name": "Ann", "avatar": {"url": "https://a.example.com/ann.png"}}}, "categories": null}
	]}}`
	g := newGateway(t, newFakePort().on("GetRecentPosts", posts), GatewayOptions{})

	articles, err := g.ListRecentArticles(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Ann", articles[0].Author.Name)
	assert.Equal(t, "https://a.example.com/ann.png", articles[0].Author.AvatarURL)
	assert.NotNil(t, articles[0].Categories)
}

func TestSearchCatalogItems(t *testing.T) {
	port := newFakePort().on("SearchProducts", `{"products": {"nodes": [`+widgetProduct+`]}}`)
	g := newGateway(t, port, GatewayOptions{})

	items, err := g.SearchCatalogItems(context.Background(), "  widget ")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "widget", port.requests[0].Variables["search"])
	assert.Equal(t, 50, port.requests[0].Variables["first"])
}

func TestSearchCatalogItems_BlankTerm(t *testing.T) {
	port := newFakePort()
	g := newGateway(t, port, GatewayOptions{})

	for _, term := range []string{"", "   ", "\t\n"} {
		items, err := g.SearchCatalogItems(context.Background(), term)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		assert.Nil(t, items)
	}
	assert.Zero(t, port.calls())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "invalid_argument", Outcome(apperrors.ErrInvalidArgument))
	assert.Equal(t, "unavailable", Outcome(context.DeadlineExceeded))
	assert.Equal(t, "protocol_error", Outcome(&apperrors.BackendProtocolError{}))
	assert.Equal(t, "error", Outcome(fmt.Errorf("other")))
}
