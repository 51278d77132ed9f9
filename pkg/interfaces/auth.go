package interfaces

import (
	"context"
)

// Claims данные, извлеченные из проверенного токена
type Claims struct {
	Subject string
	Roles   []string
}

// AuthPort определяет интерфейс проверки токенов входящих вебхуков
type AuthPort interface {
	// ValidateToken проверяет токен и возвращает claims
	ValidateToken(ctx context.Context, token string) (*Claims, error)

	// HasRole проверяет наличие роли
	HasRole(claims *Claims, role string) bool
}
