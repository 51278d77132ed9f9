package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// метрики для Prometheus
var (
	HTTPDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_durations_seconds",
		Help:    "Длительность HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	RequestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Общее количество HTTP запросов",
	}, []string{"path", "method", "status"})

	ActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_requests",
		Help: "Количество активных HTTP запросов",
	})

	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_operations_total",
		Help: "Количество операций с кэшем",
	}, []string{"operation", "status"})

	GatewayDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "content_gateway_duration_seconds",
		Help:    "Длительность операций шлюза контента",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	GraphQLRoundTrips = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphql_round_trip_seconds",
		Help:    "Длительность HTTP запросов к WPGraphQL",
		Buckets: prometheus.DefBuckets,
	}, []string{"code", "method"})

	GraphQLInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphql_in_flight_requests",
		Help: "Количество запросов к WPGraphQL в процессе выполнения",
	})

	AffiliateClicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "affiliate_clicks_total",
		Help: "Переходы по партнерским ссылкам",
	}, []string{"status"})

	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_processed_total",
		Help: "Общее количество обработанных сообщений",
	}, []string{"topic", "status"})

	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_message_processing_duration_seconds",
		Help:    "Длительность обработки сообщений",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_goroutines",
		Help: "Количество активных горутин-обработчиков",
	})
)

// Исходы операций шлюза
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid_argument"
	OutcomeUnavailable = "unavailable"
	OutcomeProtocol    = "protocol_error"
	OutcomeError       = "error"
)
