package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"github.com/athebyme/affiliate-storefront/pkg/tx"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/messaging"
	wp "github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/infrastructure/metrics"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/infrastructure/postgres"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/utils"
	"github.com/google/uuid"
)

const (
	clickStatusTracked       = "tracked"
	clickStatusBot           = "bot"
	clickStatusUntracked     = "untracked"
	clickStatusPublishFailed = "publish_failed"
	clickStatusStored        = "stored"

	ipHashLength       = 16
	defaultStatsLimit  = 50
	maxStatsLimit      = 500
	defaultStatsWindow = 30 * 24 * time.Hour
)

// ClickRequest данные входящего перехода по /go/{slug}
type ClickRequest struct {
	Slug      string
	Referrer  string
	UserAgent string
	RemoteIP  string
	RequestID string
	Bot       bool
}

// ClickTracker публикует переходы по партнерским ссылкам в Kafka
type ClickTracker struct {
	gateway   models.ContentGateway
	messaging interfaces.MessagingPort
	topic     string
	logger    interfaces.LoggerPort
}

// NewClickTracker создает трекер. При messaging == nil переходы только перенаправляются
func NewClickTracker(gateway models.ContentGateway, messaging interfaces.MessagingPort, topic string, logger interfaces.LoggerPort) *ClickTracker {
	return &ClickTracker{
		gateway:   gateway,
		messaging: messaging,
		topic:     topic,
		logger:    logger,
	}
}

// Track находит партнерскую ссылку товара и публикует событие перехода.
// Ошибка публикации не мешает перенаправлению: она логируется, а ссылка возвращается
func (t *ClickTracker) Track(ctx context.Context, req ClickRequest) (string, error) {
	item, err := t.gateway.GetCatalogItemBySlug(ctx, req.Slug)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", fmt.Errorf("%w: %s", utils.ErrItemNotFound, req.Slug)
	}
	if !item.Commercial.HasPurchaseLink() {
		return "", fmt.Errorf("%w: %s", utils.ErrNoAffiliateLink, req.Slug)
	}
	destination := item.Commercial.AffiliateLink

	switch {
	case req.Bot:
		metrics.AffiliateClicks.WithLabelValues(clickStatusBot).Inc()
		return destination, nil
	case t.messaging == nil:
		metrics.AffiliateClicks.WithLabelValues(clickStatusUntracked).Inc()
		return destination, nil
	}

	event := messaging.ClickEvent{
		ID:          uuid.New().String(),
		Slug:        item.Slug,
		Destination: destination,
		Referrer:    req.Referrer,
		UserAgent:   req.UserAgent,
		IPHash:      hashIP(req.RemoteIP),
		RequestID:   req.RequestID,
		ClickedAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err == nil {
		err = t.messaging.PublishWithKey(ctx, t.topic, item.Slug, payload)
	}
	if err != nil {
		metrics.AffiliateClicks.WithLabelValues(clickStatusPublishFailed).Inc()
		t.logger.ErrorWithContext(ctx, "Не удалось опубликовать переход по партнерской ссылке",
			interfaces.LogField{Key: "slug", Value: item.Slug},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return destination, nil
	}

	metrics.AffiliateClicks.WithLabelValues(clickStatusTracked).Inc()
	return destination, nil
}

// hashIP хранит только усеченный хэш адреса
func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])[:ipHashLength]
}

// ClickRecorder сохраняет события переходов из Kafka в PostgreSQL
type ClickRecorder struct {
	repository postgres.ClickRepository
	txManager  tx.TxManager
	logger     interfaces.LoggerPort
}

func NewClickRecorder(repository postgres.ClickRepository, txManager tx.TxManager, logger interfaces.LoggerPort) *ClickRecorder {
	return &ClickRecorder{
		repository: repository,
		txManager:  txManager,
		logger:     logger,
	}
}

// HandleMessage обработчик топика affiliate-clicks.
// Некорректное событие подтверждается и отбрасывается, повторная доставка его не исправит
func (r *ClickRecorder) HandleMessage(ctx context.Context, msg *interfaces.Message) error {
	click, err := decodeClick(msg.Value)
	if err != nil {
		r.logger.WarnWithContext(ctx, "Отброшено некорректное событие перехода",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		metrics.AffiliateClicks.WithLabelValues("invalid").Inc()
		return nil
	}

	err = r.txManager.Do(ctx, func(txCtx context.Context) error {
		return r.repository.SaveClick(txCtx, click)
	})
	if err != nil {
		return fmt.Errorf("failed to save click %s: %w", click.ID, err)
	}

	metrics.AffiliateClicks.WithLabelValues(clickStatusStored).Inc()
	return nil
}

func decodeClick(payload []byte) (*wp.Click, error) {
	var event messaging.ClickEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidClickEvent, err)
	}

	click := &wp.Click{
		ID:          event.ID,
		Slug:        strings.TrimSpace(event.Slug),
		Destination: event.Destination,
		Referrer:    event.Referrer,
		UserAgent:   event.UserAgent,
		IPHash:      event.IPHash,
		RequestID:   event.RequestID,
		ClickedAt:   event.ClickedAt,
	}
	if err := validate.Struct(click); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidClickEvent, err)
	}
	return click, nil
}

// ClickStatsService отдает агрегированную статистику переходов
type ClickStatsService struct {
	repository postgres.ClickRepository
}

func NewClickStatsService(repository postgres.ClickRepository) *ClickStatsService {
	return &ClickStatsService{repository: repository}
}

// Stats возвращает статистику начиная с since. Нулевой since означает последние 30 дней
func (s *ClickStatsService) Stats(ctx context.Context, since time.Time, limit int) ([]wp.ClickStats, error) {
	if since.IsZero() {
		since = time.Now().UTC().Add(-defaultStatsWindow)
	}
	if limit <= 0 {
		limit = defaultStatsLimit
	}
	if limit > maxStatsLimit {
		limit = maxStatsLimit
	}

	stats, err := s.repository.ClickStats(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load click stats: %w", err)
	}
	if stats == nil {
		stats = []wp.ClickStats{}
	}
	return stats, nil
}
