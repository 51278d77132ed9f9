package interfaces

import (
	"context"
)

// StoragePort определяет интерфейс постоянного хранилища.
// Шлюз контента состояния не хранит, хранилище используется журналом переходов по партнерским ссылкам.
// Транзакциями управляет tx.TxManager
type StoragePort interface {
	// Ping проверяет соединение с хранилищем
	Ping(ctx context.Context) error

	// Close закрывает соединение с хранилищем
	Close() error
}
