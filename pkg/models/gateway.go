package models

import "context"

// ContentGateway определяет интерфейс получения контента из headless CMS
// Все методы возвращают нормализованные записи, а не ответы бэкенда
type ContentGateway interface {
	// ListCatalogItems возвращает до 100 товаров, опционально только из категории categoryFilter
	// Пустой результат - не ошибка
	ListCatalogItems(ctx context.Context, categoryFilter string) ([]CatalogItem, error)

	// GetCatalogItemBySlug возвращает товар по точному совпадению slug
	// Возвращает nil, nil если товар не найден
	GetCatalogItemBySlug(ctx context.Context, slug string) (*CatalogItem, error)

	// ListAllSlugs выгружает slug всех товаров постранично до ограничения
	ListAllSlugs(ctx context.Context) (*SlugListing, error)

	// ListCategories возвращает категории
	ListCategories(ctx context.Context) ([]CategoryRef, error)

	// ListRecentArticles возвращает не более count последних записей, новые первыми
	// При count == 0 запрос к бэкенду не выполняется
	ListRecentArticles(ctx context.Context, count int) ([]ArticleItem, error)

	// SearchCatalogItems выполняет полнотекстовый поиск товаров (до 50 результатов)
	// Пустая строка поиска считается ошибкой вызывающей стороны
	SearchCatalogItems(ctx context.Context, term string) ([]CatalogItem, error)
}
