package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"github.com/athebyme/affiliate-storefront/pkg/utils"
	wp "github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/infrastructure/metrics"
)

// GatewayOptions размеры страниц и ограничения запросов к WPGraphQL
type GatewayOptions struct {
	ListPageSize     int
	SearchPageSize   int
	CategoryPageSize int
	SlugPageSize     int
	SlugBound        int
}

// DefaultGatewayOptions значения по умолчанию
func DefaultGatewayOptions() GatewayOptions {
	return GatewayOptions{
		ListPageSize:     100,
		SearchPageSize:   50,
		CategoryPageSize: 100,
		SlugPageSize:     100,
		SlugBound:        1000,
	}
}

func (o GatewayOptions) withDefaults() GatewayOptions {
	d := DefaultGatewayOptions()
	if o.ListPageSize <= 0 {
		o.ListPageSize = d.ListPageSize
	}
	if o.SearchPageSize <= 0 {
		o.SearchPageSize = d.SearchPageSize
	}
	if o.CategoryPageSize <= 0 {
		o.CategoryPageSize = d.CategoryPageSize
	}
	if o.SlugPageSize <= 0 {
		o.SlugPageSize = d.SlugPageSize
	}
	if o.SlugBound <= 0 {
		o.SlugBound = d.SlugBound
	}
	return o
}

// ContentGateway получает контент из WPGraphQL и нормализует его.
// Состояния не хранит, безопасен для конкурентного использования
type ContentGateway struct {
	port   interfaces.GraphQLPort
	opts   GatewayOptions
	logger interfaces.LoggerPort
	norm   normalizer
}

var _ models.ContentGateway = (*ContentGateway)(nil)

// NewContentGateway создает шлюз поверх GraphQL транспорта
func NewContentGateway(port interfaces.GraphQLPort, opts GatewayOptions, logger interfaces.LoggerPort) (*ContentGateway, error) {
	if port == nil {
		return nil, fmt.Errorf("%w: не задан GraphQL транспорт", apperrors.ErrConfiguration)
	}

	return &ContentGateway{
		port:   port,
		opts:   opts.withDefaults(),
		logger: logger,
		norm:   normalizer{logger: logger},
	}, nil
}

// ListCatalogItems возвращает товары, при непустом categoryFilter только из этой категории
func (g *ContentGateway) ListCatalogItems(ctx context.Context, categoryFilter string) (items []models.CatalogItem, err error) {
	defer observe("list_catalog_items", time.Now(), &err)

	vars := map[string]interface{}{"first": g.opts.ListPageSize}
	if category := strings.TrimSpace(categoryFilter); category != "" {
		vars["where"] = map[string]interface{}{"categoryName": category}
	}

	var data wp.ProductsData
	if err := g.query(ctx, "GetProducts", listProductsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Products == nil {
		return []models.CatalogItem{}, nil
	}

	items, err = g.norm.catalogItems(data.Products.Nodes)
	if err != nil {
		return nil, protocolError("GetProducts", err)
	}
	return items, nil
}

// GetCatalogItemBySlug возвращает товар по точному совпадению slug или nil, nil
func (g *ContentGateway) GetCatalogItemBySlug(ctx context.Context, slug string) (item *models.CatalogItem, err error) {
	start := time.Now()
	defer func() {
		outcome := Outcome(err)
		if err == nil && item == nil {
			outcome = metrics.OutcomeNotFound
		}
		metrics.GatewayDurations.WithLabelValues("get_catalog_item", outcome).Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("%w: пустой slug", apperrors.ErrInvalidArgument)
	}

	var data wp.ProductData
	if err := g.query(ctx, "GetProductBySlug", productBySlugQuery, map[string]interface{}{"slug": slug}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, nil
	}

	// WordPress может найти запись по slug без учета регистра, совпадение должно быть точным
	if data.Product.Slug != slug {
		g.logger.DebugWithContext(ctx, "Slug товара не совпал с запрошенным",
			interfaces.LogField{Key: "requested", Value: slug},
			interfaces.LogField{Key: "returned", Value: data.Product.Slug},
		)
		return nil, nil
	}

	item, err = g.norm.catalogItem(data.Product)
	if err != nil {
		return nil, protocolError("GetProductBySlug", err)
	}
	return item, nil
}

// ListAllSlugs выгружает slug товаров постранично, пока есть страницы и не достигнуто ограничение
func (g *ContentGateway) ListAllSlugs(ctx context.Context) (listing *models.SlugListing, err error) {
	defer observe("list_all_slugs", time.Now(), &err)

	cursor := utils.NewCursor(g.opts.SlugPageSize, g.opts.SlugBound)
	slugs := make([]string, 0, cursor.First())
	var last utils.PageInfo

	for {
		vars := map[string]interface{}{"first": cursor.First()}
		if cursor.After != "" {
			vars["after"] = cursor.After
		}

		var data wp.SlugsData
		if err := g.query(ctx, "GetAllProductSlugs", allSlugsQuery, vars, &data); err != nil {
			return nil, err
		}
		if data.Products == nil {
			break
		}

		for _, node := range data.Products.Nodes {
			if node.Slug == "" {
				return nil, protocolError("GetAllProductSlugs", errors.New("товар без slug"))
			}
			slugs = append(slugs, node.Slug)
		}

		last = data.Products.PageInfo
		if !cursor.Advance(len(data.Products.Nodes), last) {
			break
		}
	}

	listing = &models.SlugListing{Slugs: slugs, Truncated: cursor.Truncated(last)}
	if listing.Truncated {
		g.logger.WarnWithContext(ctx, "Выгрузка slug остановлена на ограничении, часть товаров не получена",
			interfaces.LogField{Key: "bound", Value: g.opts.SlugBound},
			interfaces.LogField{Key: "fetched", Value: len(slugs)},
		)
	}
	return listing, nil
}

// ListCategories возвращает категории
func (g *ContentGateway) ListCategories(ctx context.Context) (refs []models.CategoryRef, err error) {
	defer observe("list_categories", time.Now(), &err)

	var data wp.CategoriesData
	vars := map[string]interface{}{"first": g.opts.CategoryPageSize}
	if err := g.query(ctx, "GetCategories", categoriesQuery, vars, &data); err != nil {
		return nil, err
	}

	return categories(data.Categories), nil
}

// ListRecentArticles возвращает не более count записей, новые первыми. При count == 0 запроса нет
func (g *ContentGateway) ListRecentArticles(ctx context.Context, count int) (articles []models.ArticleItem, err error) {
	defer observe("list_recent_articles", time.Now(), &err)

	if count < 0 {
		return nil, fmt.Errorf("%w: count должен быть неотрицательным, получено %d", apperrors.ErrInvalidArgument, count)
	}
	if count == 0 {
		return []models.ArticleItem{}, nil
	}

	var data wp.PostsData
	if err := g.query(ctx, "GetRecentPosts", recentPostsQuery, map[string]interface{}{"count": count}, &data); err != nil {
		return nil, err
	}
	if data.Posts == nil {
		return []models.ArticleItem{}, nil
	}

	articles = make([]models.ArticleItem, 0, len(data.Posts.Nodes))
	for i := range data.Posts.Nodes {
		article, err := g.norm.article(&data.Posts.Nodes[i])
		if err != nil {
			return nil, protocolError("GetRecentPosts", err)
		}
		articles = append(articles, *article)
	}

	// Порядок задает бэкенд, но контракт требует убывания по дате независимо от него
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > count {
		articles = articles[:count]
	}
	return articles, nil
}

// SearchCatalogItems выполняет полнотекстовый поиск товаров. Пустая строка поиска - ErrInvalidArgument
func (g *ContentGateway) SearchCatalogItems(ctx context.Context, term string) (items []models.CatalogItem, err error) {
	defer observe("search_catalog_items", time.Now(), &err)

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: пустая строка поиска", apperrors.ErrInvalidArgument)
	}

	vars := map[string]interface{}{"search": term, "first": g.opts.SearchPageSize}

	var data wp.ProductsData
	if err := g.query(ctx, "SearchProducts", searchProductsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Products == nil {
		return []models.CatalogItem{}, nil
	}

	items, err = g.norm.catalogItems(data.Products.Nodes)
	if err != nil {
		return nil, protocolError("SearchProducts", err)
	}
	return items, nil
}

// query выполняет запрос и декодирует data в out
func (g *ContentGateway) query(ctx context.Context, operation, document string, vars map[string]interface{}, out interface{}) error {
	data, err := g.port.Execute(ctx, interfaces.GraphQLRequest{
		Query:         document,
		Variables:     vars,
		OperationName: operation,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return protocolError(operation, err)
	}
	return nil
}

func protocolError(operation string, err error) error {
	return fmt.Errorf("%s: %w: %w", operation, apperrors.ErrBackendProtocol, err)
}

// observe записывает длительность и исход операции
func observe(operation string, start time.Time, errp *error) {
	metrics.GatewayDurations.WithLabelValues(operation, Outcome(*errp)).Observe(time.Since(start).Seconds())
}

// Outcome классифицирует ошибку шлюза для метрик и логов
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return metrics.OutcomeInvalid
	case errors.Is(err, apperrors.ErrBackendUnavailable), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeUnavailable
	case errors.Is(err, apperrors.ErrBackendProtocol):
		return metrics.OutcomeProtocol
	default:
		return metrics.OutcomeError
	}
}
