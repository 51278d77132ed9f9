package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultTimeout таймаут запроса к WPGraphQL
	DefaultTimeout = 10 * time.Second

	// maxResponseSize ограничение на размер ответа
	maxResponseSize = 16 << 20

	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
)

// ClientOptions параметры GraphQL клиента
type ClientOptions struct {
	Endpoint   string        // полный адрес, например https://cms.example.com/graphql
	Timeout    time.Duration // применяется, если HTTPClient не задан
	HTTPClient *http.Client
	UserAgent  string
}

// Client выполняет GraphQL запросы по HTTP POST
type Client struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	logger     interfaces.LoggerPort
}

var _ interfaces.GraphQLPort = (*Client)(nil)

// NewHTTPClient создает http.Client с таймаутом и метриками Prometheus
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: promhttp.InstrumentRoundTripperInFlight(metrics.GraphQLInFlight,
			promhttp.InstrumentRoundTripperDuration(metrics.GraphQLRoundTrips, transport),
		),
	}
}

// NewClient создает клиента. Пустой Endpoint является ошибкой конфигурации
func NewClient(opts ClientOptions, logger interfaces.LoggerPort) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("%w: не задан GraphQL эндпоинт", apperrors.ErrConfiguration)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(opts.Timeout)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "content-service"
	}

	return &Client{
		endpoint:   opts.Endpoint,
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logger,
	}, nil
}

type graphQLError struct {
	Message string `json:"message"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Execute отправляет запрос и возвращает поле data
func (c *Client) Execute(ctx context.Context, req interfaces.GraphQLRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка создания запроса: %w", apperrors.ErrBackendUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if reqID, ok := ctx.Value(interfaces.RequestIDKey).(string); ok && reqID != "" {
		httpReq.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения ответа: %w", apperrors.ErrBackendUnavailable, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Ответ с телом GraphQL считается ошибкой протокола, остальное недоступностью
		if decodeErr == nil && len(env.Errors) > 0 {
			return nil, newProtocolError(env.Errors)
		}
		c.logger.WarnWithContext(ctx, "WPGraphQL вернул неуспешный статус",
			interfaces.LogField{Key: "status", Value: resp.StatusCode},
			interfaces.LogField{Key: "operation", Value: req.OperationName},
		)
		return nil, fmt.Errorf("%w: статус %d", apperrors.ErrBackendUnavailable, resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: некорректный JSON: %w", apperrors.ErrBackendProtocol, decodeErr)
	}

	if len(env.Errors) > 0 {
		return nil, newProtocolError(env.Errors)
	}

	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil, fmt.Errorf("%w: в ответе нет поля data", apperrors.ErrBackendProtocol)
	}

	return env.Data, nil
}

func newProtocolError(errs []graphQLError) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return &apperrors.BackendProtocolError{Messages: messages}
}
