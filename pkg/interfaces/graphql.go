package interfaces

import (
	"context"
	"encoding/json"
)

// GraphQLRequest тело запроса к GraphQL эндпоинту
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// GraphQLPort определяет интерфейс выполнения GraphQL запросов
// Реализация возвращает поле data ответа без ошибок GraphQL или ошибку:
// errors.ErrBackendUnavailable для транспортных сбоев, errors.ErrBackendProtocol для ошибок протокола
type GraphQLPort interface {
	Execute(ctx context.Context, req GraphQLRequest) (json.RawMessage, error)
}
