package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/api/middleware"
	wp "github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/services"
	"github.com/go-chi/chi/v5"
)

// ClickTracker учитывает переход и возвращает адрес партнера
type ClickTracker interface {
	Track(ctx context.Context, req services.ClickRequest) (string, error)
}

// ClickStatsProvider источник статистики переходов
type ClickStatsProvider interface {
	Stats(ctx context.Context, since time.Time, limit int) ([]wp.ClickStats, error)
}

// ClickHandler обработчик исходящих переходов
type ClickHandler struct {
	tracker ClickTracker
	stats   ClickStatsProvider
	logger  interfaces.LoggerPort
}

// NewClickHandler создает обработчик. stats может быть nil, тогда статистика недоступна
func NewClickHandler(tracker ClickTracker, stats ClickStatsProvider, logger interfaces.LoggerPort) *ClickHandler {
	return &ClickHandler{
		tracker: tracker,
		stats:   stats,
		logger:  logger,
	}
}

// Redirect godoc
// @Summary      Переход по партнерской ссылке товара
// @Tags         clicks
// @Param        slug  path  string  true  "Slug товара"
// @Success      302
// @Failure      404   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /go/{slug} [get]
func (h *ClickHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	destination, err := h.tracker.Track(r.Context(), services.ClickRequest{
		Slug:      chi.URLParam(r, "slug"),
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
		RemoteIP:  middleware.ClientIP(r),
		RequestID: middleware.GetRequestID(r.Context()),
		Bot:       middleware.IsBotRequest(r.Context()),
	})
	if err != nil {
		respondGatewayError(w, r, h.logger, "redirect", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Robots-Tag", "noindex, nofollow")
	http.Redirect(w, r, destination, http.StatusFound)
}

// Stats godoc
// @Summary      Статистика переходов по товарам
// @Tags         clicks
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     string  false  "Начало периода, RFC3339"
// @Param        limit  query     int     false  "Максимум строк"
// @Success      200    {object}  response
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /clicks/stats [get]
func (h *ClickHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		respondError(w, r, http.StatusServiceUnavailable, "unavailable", "Статистика переходов недоступна")
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "bad_request", "since должен быть в формате RFC3339")
			return
		}
		since = t
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondGatewayError(w, r, h.logger, "click_stats",
				fmt.Errorf("%w: limit должен быть неотрицательным числом", apperrors.ErrInvalidArgument))
			return
		}
		limit = n
	}

	stats, err := h.stats.Stats(r.Context(), since, limit)
	if err != nil {
		respondGatewayError(w, r, h.logger, "click_stats", err)
		return
	}

	respondOK(w, r, stats, map[string]int{"count": len(stats)})
}
