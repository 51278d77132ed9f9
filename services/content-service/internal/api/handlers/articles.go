package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
)

const (
	defaultRecentPosts = 6
	maxRecentPosts     = 100
)

// ArticleHandler обработчик запросов блога
type ArticleHandler struct {
	gateway models.ContentGateway
	logger  interfaces.LoggerPort
}

func NewArticleHandler(gateway models.ContentGateway, logger interfaces.LoggerPort) *ArticleHandler {
	return &ArticleHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// ListRecentPosts godoc
// @Summary      Последние записи блога
// @Tags         posts
// @Produce      json
// @Param        count  query     int  false  "Количество записей (по умолчанию 6)"
// @Success      200    {object}  response
// @Failure      400    {object}  errorResponse
// @Failure      502    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /posts [get]
func (h *ArticleHandler) ListRecentPosts(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r.URL.Query().Get("count"), defaultRecentPosts, maxRecentPosts)
	if err != nil {
		respondGatewayError(w, r, h.logger, "list_posts", err)
		return
	}

	articles, err := h.gateway.ListRecentArticles(r.Context(), count)
	if err != nil {
		respondGatewayError(w, r, h.logger, "list_posts", err)
		return
	}

	respondOK(w, r, articles, map[string]int{"count": len(articles)})
}

// parseCount разбирает неотрицательное число не больше max, пустое значение дает def
func parseCount(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: count должен быть числом", apperrors.ErrInvalidArgument)
	}
	if n > max {
		return 0, fmt.Errorf("%w: count не может превышать %d", apperrors.ErrInvalidArgument, max)
	}
	return n, nil
}
