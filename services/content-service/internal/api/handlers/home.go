package handlers

import (
	"net/http"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"golang.org/x/sync/errgroup"
)

const (
	homeFeaturedProducts = 6
	homeRecentPosts      = 6
)

// HomeHandler собирает данные главной страницы одним запросом
type HomeHandler struct {
	gateway models.ContentGateway
	logger  interfaces.LoggerPort
}

func NewHomeHandler(gateway models.ContentGateway, logger interfaces.LoggerPort) *HomeHandler {
	return &HomeHandler{
		gateway: gateway,
		logger:  logger,
	}
}

type homeResponse struct {
	Featured   []productView        `json:"featured"`
	Categories []models.CategoryRef `json:"categories"`
	Posts      []models.ArticleItem `json:"posts"`
}

// Home godoc
// @Summary      Данные главной страницы: избранные товары, категории, последние записи
// @Tags         home
// @Produce      json
// @Success      200  {object}  response
// @Failure      502  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /home [get]
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	var (
		products   []models.CatalogItem
		categories []models.CategoryRef
		posts      []models.ArticleItem
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		products, err = h.gateway.ListCatalogItems(ctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.gateway.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = h.gateway.ListRecentArticles(ctx, homeRecentPosts)
		return err
	})

	if err := g.Wait(); err != nil {
		respondGatewayError(w, r, h.logger, "home", err)
		return
	}

	if len(products) > homeFeaturedProducts {
		products = products[:homeFeaturedProducts]
	}

	respondOK(w, r, homeResponse{
		Featured:   newProductViews(products),
		Categories: categories,
		Posts:      posts,
	}, nil)
}
