package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/graphql"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/messaging"
)

// CacheInvalidator сбрасывает закэшированные ответы CMS при изменении контента.
// Экземпляр API с кэшем в памяти процесса подписывается на content-events своей группой
type CacheInvalidator struct {
	cache  interfaces.CachePort
	logger interfaces.LoggerPort
}

// NewCacheInvalidator создает обработчик. При cache == nil сбрасывать нечего
func NewCacheInvalidator(cache interfaces.CachePort, logger interfaces.LoggerPort) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, logger: logger}
}

// HandleMessage обработчик топика content-events
func (i *CacheInvalidator) HandleMessage(ctx context.Context, msg *interfaces.Message) error {
	var event messaging.ContentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil || !messaging.IsValidContentEventType(event.Type) {
		i.logger.WarnWithContext(ctx, "Отброшено некорректное событие контента",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
		)
		return nil
	}

	if err := i.Invalidate(ctx); err != nil {
		return err
	}

	i.logger.DebugWithContext(ctx, "Кэш ответов CMS сброшен",
		interfaces.LogField{Key: "event_id", Value: event.ID},
		interfaces.LogField{Key: "content_type", Value: event.ContentType},
	)
	return nil
}

// Invalidate удаляет все закэшированные ответы GraphQL
func (i *CacheInvalidator) Invalidate(ctx context.Context) error {
	if i.cache == nil {
		return nil
	}
	if err := i.cache.DeleteByPattern(ctx, graphql.CacheKeyPrefix+"*"); err != nil {
		return fmt.Errorf("failed to invalidate content cache: %w", err)
	}
	return nil
}
