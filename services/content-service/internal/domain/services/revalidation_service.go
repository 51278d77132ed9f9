package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/messaging"
	"github.com/google/uuid"
)

// Пути страниц, которые пересобирает рендерер
const (
	homePath     = "/"
	blogPath     = "/blog"
	productsPath = "/products/"
)

// Revalidator реагирует на изменения контента: сбрасывает кэш ответов CMS
// и публикует запросы на пересборку затронутых страниц
type Revalidator struct {
	gateway     models.ContentGateway
	invalidator *CacheInvalidator
	messaging   interfaces.MessagingPort
	topic       string
	logger      interfaces.LoggerPort
}

// NewRevalidator создает обработчик. cache может быть nil, если кэширование выключено
func NewRevalidator(gateway models.ContentGateway, cache interfaces.CachePort, messaging interfaces.MessagingPort, topic string, logger interfaces.LoggerPort) *Revalidator {
	return &Revalidator{
		gateway:     gateway,
		invalidator: NewCacheInvalidator(cache, logger),
		messaging:   messaging,
		topic:       topic,
		logger:      logger,
	}
}

// HandleMessage обработчик топика content-events
func (r *Revalidator) HandleMessage(ctx context.Context, msg *interfaces.Message) error {
	var event messaging.ContentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		r.logger.WarnWithContext(ctx, "Отброшено некорректное событие контента",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return nil
	}
	if !messaging.IsValidContentEventType(event.Type) {
		r.logger.WarnWithContext(ctx, "Неизвестный тип события контента",
			interfaces.LogField{Key: "type", Value: event.Type},
		)
		return nil
	}

	return r.Revalidate(ctx, event)
}

// Revalidate сбрасывает кэш и публикует пути страниц для пересборки.
// Для записей блога пересобираются главная и /blog, для товаров все страницы товаров
func (r *Revalidator) Revalidate(ctx context.Context, event messaging.ContentEvent) error {
	if err := r.invalidator.Invalidate(ctx); err != nil {
		return err
	}

	paths := []string{homePath}
	switch event.ContentType {
	case messaging.ContentTypePost:
		paths = append(paths, blogPath)
	default:
		listing, err := r.gateway.ListAllSlugs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list product slugs: %w", err)
		}
		for _, slug := range listing.Slugs {
			paths = append(paths, productsPath+slug)
		}
		// удаленного товара уже нет в выгрузке, но его страницу тоже нужно пересобрать
		if event.Type == messaging.ContentDeletedEvent && event.Slug != "" && !slices.Contains(listing.Slugs, event.Slug) {
			paths = append(paths, productsPath+event.Slug)
		}
	}

	now := time.Now().UTC()
	for _, path := range paths {
		payload, err := json.Marshal(messaging.RevalidateEvent{
			ID:          uuid.New().String(),
			Path:        path,
			Slug:        event.Slug,
			ContentType: event.ContentType,
			Reason:      event.Type,
			RequestedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal revalidate event: %w", err)
		}
		if err := r.messaging.PublishWithKey(ctx, r.topic, path, payload); err != nil {
			return fmt.Errorf("failed to publish revalidate event for %s: %w", path, err)
		}
	}

	r.logger.InfoWithContext(ctx, "Запрошена пересборка страниц",
		interfaces.LogField{Key: "event_id", Value: event.ID},
		interfaces.LogField{Key: "content_type", Value: event.ContentType},
		interfaces.LogField{Key: "paths", Value: len(paths)},
	)
	return nil
}
