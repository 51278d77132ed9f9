package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/auth"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/messaging"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// contentWebhookRequest уведомление WordPress об изменении записи
type contentWebhookRequest struct {
	Type        string `json:"type" validate:"required,oneof=content_published content_updated content_deleted"`
	ContentType string `json:"content_type" validate:"required,oneof=product post"`
	Slug        string `json:"slug" validate:"omitempty,max=200"`
}

// WebhookHandler принимает уведомления CMS и публикует их в content-events
type WebhookHandler struct {
	messaging interfaces.MessagingPort
	topic     string
	validate  *validator.Validate
	logger    interfaces.LoggerPort
}

func NewWebhookHandler(messaging interfaces.MessagingPort, topic string, logger interfaces.LoggerPort) *WebhookHandler {
	return &WebhookHandler{
		messaging: messaging,
		topic:     topic,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ContentChanged godoc
// @Summary      Уведомление об изменении контента в WordPress
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        event  body      contentWebhookRequest  true  "Событие"
// @Success      202    {object}  response
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /webhooks/content [post]
func (h *WebhookHandler) ContentChanged(w http.ResponseWriter, r *http.Request) {
	if h.messaging == nil {
		respondError(w, r, http.StatusServiceUnavailable, "unavailable", "Брокер сообщений не настроен")
		return
	}

	var req contentWebhookRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "bad_request", "Некорректный JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	event := messaging.ContentEvent{
		ID:          uuid.New().String(),
		Type:        req.Type,
		ContentType: req.ContentType,
		Slug:        req.Slug,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err == nil {
		err = h.messaging.PublishWithKey(r.Context(), h.topic, req.ContentType, payload)
	}
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка публикации события контента",
			interfaces.LogField{Key: "error", Value: err.Error()})
		respondError(w, r, http.StatusServiceUnavailable, "unavailable", "Не удалось принять событие")
		return
	}

	subject := ""
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		subject = claims.Subject
	}
	h.logger.InfoWithContext(r.Context(), "Принято событие контента",
		interfaces.LogField{Key: "event_id", Value: event.ID},
		interfaces.LogField{Key: "type", Value: event.Type},
		interfaces.LogField{Key: "content_type", Value: event.ContentType},
		interfaces.LogField{Key: "slug", Value: event.Slug},
		interfaces.LogField{Key: "subject", Value: subject},
	)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response{Success: true, Data: map[string]string{"id": event.ID}})
}
