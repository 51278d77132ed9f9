package handlers

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/utils"
	"github.com/go-chi/render"
)

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// response представляет структуру успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func respondOK(w http.ResponseWriter, r *http.Request, data, meta interface{}) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: code, Code: status, Message: message})
}

// respondGatewayError переводит ошибку шлюза в HTTP статус
func respondGatewayError(w http.ResponseWriter, r *http.Request, logger interfaces.LoggerPort, op string, err error) {
	status, code := statusFor(err)

	fields := []interface{}{
		interfaces.LogField{Key: "operation", Value: op},
		interfaces.LogField{Key: "status", Value: status},
		interfaces.LogField{Key: "error", Value: err.Error()},
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorWithContext(r.Context(), "Ошибка получения контента", fields...)
	} else {
		logger.DebugWithContext(r.Context(), "Запрос отклонен", fields...)
	}

	respondError(w, r, status, code, message(status, err))
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, utils.ErrItemNotFound), errors.Is(err, utils.ErrNoAffiliateLink):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrBackendProtocol):
		return http.StatusBadGateway, "backend_protocol_error"
	case errors.Is(err, apperrors.ErrBackendUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "backend_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// message не раскрывает детали ответа бэкенда клиенту
func message(status int, err error) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	return http.StatusText(status)
}
