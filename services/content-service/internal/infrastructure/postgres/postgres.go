package postgres

import (
	"context"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
)

// ClickRepository журнал переходов по партнерским ссылкам
type ClickRepository interface {
	// SaveClick сохраняет переход, повторная запись с тем же ID игнорируется
	SaveClick(ctx context.Context, click *models.Click) error

	// ClickStats возвращает число переходов по товарам начиная с since, по убыванию
	ClickStats(ctx context.Context, since time.Time, limit int) ([]models.ClickStats, error)
}

// Port хранилище сервиса контента
type Port interface {
	ClickRepository
	interfaces.StoragePort

	// EnsureSchema создает схему и таблицы, если их нет
	EnsureSchema(ctx context.Context) error
}
