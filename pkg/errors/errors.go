package errors

import (
	"errors"
	"strings"
)

// Ошибки шлюза контента. Вызывающая сторона различает их через errors.Is
var (
	// ErrBackendUnavailable транспортная ошибка: DNS, отказ соединения, таймаут, не-2xx ответ без тела GraphQL
	ErrBackendUnavailable = errors.New("content backend unavailable")

	// ErrBackendProtocol бэкенд вернул ошибки GraphQL, некорректный JSON или данные, не прошедшие валидацию
	ErrBackendProtocol = errors.New("content backend protocol error")

	// ErrInvalidArgument вызывающая сторона передала значение вне контракта
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfiguration отсутствует или некорректна обязательная настройка
	ErrConfiguration = errors.New("configuration error")

	// ErrCacheMiss значение не найдено в кэше
	ErrCacheMiss = errors.New("cache miss")
)

// BackendProtocolError содержит сообщения об ошибках, которые вернул GraphQL
type BackendProtocolError struct {
	Messages []string
}

func (e *BackendProtocolError) Error() string {
	return "graphql errors: " + strings.Join(e.Messages, "; ")
}

// Unwrap позволяет сравнивать через errors.Is(err, ErrBackendProtocol)
func (e *BackendProtocolError) Unwrap() error {
	return ErrBackendProtocol
}
