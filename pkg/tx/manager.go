package tx

import (
	"context"
	"fmt"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txKeyType ключ для хранения транзакции в контексте
type txKeyType struct{}

var txKey = txKeyType{}

// TxManager управляет жизненным циклом транзакций БД.
type TxManager interface {
	// Do выполняет fn внутри транзакции.
	// Ошибка из fn откатывает транзакцию, успешное завершение фиксирует ее.
	// Контекст, передаваемый в fn, содержит транзакцию.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Beginner источник транзакций, pgxpool.Pool удовлетворяет ему
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgxTxManager struct {
	db     Beginner
	logger interfaces.LoggerPort
}

// NewTxManager создает новый менеджер транзакций.
func NewTxManager(pool *pgxpool.Pool, logger interfaces.LoggerPort) TxManager {
	return &pgxTxManager{db: pool, logger: logger}
}

// NewTxManagerFrom создает менеджер поверх произвольного источника транзакций
func NewTxManagerFrom(db Beginner, logger interfaces.LoggerPort) TxManager {
	return &pgxTxManager{db: db, logger: logger}
}

func (m *pgxTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tx.Begin failed: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	// Rollback после Commit ничего не делает, defer нужен на случай паники в fn
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(txCtx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			m.logger.WarnWithContext(ctx, "Ошибка отката транзакции",
				interfaces.LogField{Key: "error", Value: rollbackErr.Error()},
				interfaces.LogField{Key: "original_error", Value: err.Error()},
			)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit failed: %w", err)
	}

	return nil
}

// GetTxFromContext извлекает транзакцию из контекста.
func GetTxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}
