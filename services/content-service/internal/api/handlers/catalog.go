package handlers

import (
	"net/http"
	"strings"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler обработчик запросов каталога
type CatalogHandler struct {
	gateway models.ContentGateway
	logger  interfaces.LoggerPort
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(gateway models.ContentGateway, logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// productView товар со значениями, которые рендерер иначе вычислял бы сам
type productView struct {
	*models.CatalogItem
	DiscountPercent *int   `json:"discount_percent,omitempty"`
	CTA             string `json:"cta,omitempty"`
	OutboundPath    string `json:"outbound_path,omitempty"`
}

func newProductView(item *models.CatalogItem) productView {
	view := productView{CatalogItem: item}
	if item.Commercial != nil {
		if pct, ok := item.Commercial.Discount(); ok {
			view.DiscountPercent = &pct
		}
		view.CTA = item.Commercial.CTA()
		if item.Commercial.HasPurchaseLink() {
			view.OutboundPath = "/go/" + item.Slug
		}
	}
	return view
}

func newProductViews(items []models.CatalogItem) []productView {
	views := make([]productView, 0, len(items))
	for i := range items {
		views = append(views, newProductView(&items[i]))
	}
	return views
}

// ListProducts godoc
// @Summary      Список товаров
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Имя категории"
// @Success      200       {object}  response
// @Failure      502       {object}  errorResponse
// @Failure      503       {object}  errorResponse
// @Router       /products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.gateway.ListCatalogItems(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondGatewayError(w, r, h.logger, "list_products", err)
		return
	}

	respondOK(w, r, newProductViews(items), map[string]int{"count": len(items)})
}

// GetProduct godoc
// @Summary      Товар по slug
// @Tags         products
// @Produce      json
// @Param        slug  path      string  true  "Slug товара"
// @Success      200   {object}  response
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /products/{slug} [get]
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	item, err := h.gateway.GetCatalogItemBySlug(r.Context(), slug)
	if err != nil {
		respondGatewayError(w, r, h.logger, "get_product", err)
		return
	}
	if item == nil {
		respondError(w, r, http.StatusNotFound, "not_found", "Товар не найден")
		return
	}

	respondOK(w, r, newProductView(item), nil)
}

// ListSlugs godoc
// @Summary      Все slug товаров для статической генерации страниц
// @Tags         products
// @Produce      json
// @Success      200  {object}  response
// @Failure      502  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /products/slugs [get]
func (h *CatalogHandler) ListSlugs(w http.ResponseWriter, r *http.Request) {
	listing, err := h.gateway.ListAllSlugs(r.Context())
	if err != nil {
		respondGatewayError(w, r, h.logger, "list_slugs", err)
		return
	}

	respondOK(w, r, listing, map[string]int{"count": len(listing.Slugs)})
}

// SearchProducts godoc
// @Summary      Поиск товаров
// @Tags         products
// @Produce      json
// @Param        q    query     string  true  "Строка поиска"
// @Success      200  {object}  response
// @Failure      400  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /products/search [get]
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	items, err := h.gateway.SearchCatalogItems(r.Context(), term)
	if err != nil {
		respondGatewayError(w, r, h.logger, "search_products", err)
		return
	}

	respondOK(w, r, newProductViews(items), map[string]interface{}{"count": len(items), "query": term})
}

// ListCategories godoc
// @Summary      Категории
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response
// @Failure      502  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	refs, err := h.gateway.ListCategories(r.Context())
	if err != nil {
		respondGatewayError(w, r, h.logger, "list_categories", err)
		return
	}

	respondOK(w, r, refs, map[string]int{"count": len(refs)})
}
