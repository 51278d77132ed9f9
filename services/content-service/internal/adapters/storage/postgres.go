package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/tx"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS affiliate;

	CREATE TABLE IF NOT EXISTS affiliate.clicks (
		id          UUID PRIMARY KEY,
		slug        TEXT        NOT NULL,
		destination TEXT        NOT NULL,
		referrer    TEXT        NOT NULL DEFAULT '',
		user_agent  TEXT        NOT NULL DEFAULT '',
		ip_hash     TEXT        NOT NULL DEFAULT '',
		request_id  TEXT        NOT NULL DEFAULT '',
		clicked_at  TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS clicks_slug_clicked_at_idx ON affiliate.clicks (slug, clicked_at DESC);
`

// ClickStorage реализация postgres.Port поверх pgxpool
type ClickStorage struct {
	pool *pgxpool.Pool
}

var _ postgres.Port = (*ClickStorage)(nil)

// NewPostgresStorage создает пул соединений и проверяет доступность БД
func NewPostgresStorage(ctx context.Context, connectionString string, poolSize int) (*ClickStorage, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}
	if poolSize > 0 {
		cfg.MaxConns = int32(poolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return NewPostgresStorageWithPool(ctx, pool)
}

func NewPostgresStorageWithPool(ctx context.Context, pool *pgxpool.Pool) (*ClickStorage, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &ClickStorage{pool: pool}, nil
}

// Pool возвращает пул для менеджера транзакций
func (r *ClickStorage) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *ClickStorage) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *ClickStorage) Close() error {
	r.pool.Close()
	return nil
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает транзакцию из контекста или пул
func (r *ClickStorage) getExecutor(ctx context.Context) executor {
	if txFromCtx, ok := tx.GetTxFromContext(ctx); ok {
		return txFromCtx
	}
	return r.pool
}

func (r *ClickStorage) EnsureSchema(ctx context.Context) error {
	if _, err := r.getExecutor(ctx).Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveClick сохраняет переход. Kafka доставляет сообщения минимум один раз, поэтому дубликаты по ID игнорируются
func (r *ClickStorage) SaveClick(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO affiliate.clicks (id, slug, destination, referrer, user_agent, ip_hash, request_id, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.getExecutor(ctx).Exec(ctx, query,
		click.ID, click.Slug, click.Destination, click.Referrer,
		click.UserAgent, click.IPHash, click.RequestID, click.ClickedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save click: %w", err)
	}
	return nil
}

func (r *ClickStorage) ClickStats(ctx context.Context, since time.Time, limit int) ([]models.ClickStats, error) {
	query := `
		SELECT slug, COUNT(*) AS clicks, MAX(clicked_at) AS last_click_at
		FROM affiliate.clicks
		WHERE clicked_at >= $1
		GROUP BY slug
		ORDER BY clicks DESC, slug
		LIMIT $2
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query click stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.ClickStats, 0)
	for rows.Next() {
		var s models.ClickStats
		if err := rows.Scan(&s.Slug, &s.Clicks, &s.LastClickAt); err != nil {
			return nil, fmt.Errorf("failed to scan click stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate click stats: %w", err)
	}

	return stats, nil
}
