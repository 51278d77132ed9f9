// Package app собирает адаптеры сервиса из конфигурации, общие для api и worker
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/auth"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/config"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/cache"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/graphql"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/messaging"
	storage "github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/storage"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/services"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/utils"
)

// NewCache создает кэш по cache.driver. Для "none" возвращает nil
func NewCache(ctx context.Context, cfg *config.Config) (interfaces.CachePort, error) {
	switch cfg.Cache.Driver {
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Host:            cfg.Redis.Host,
			Port:            cfg.Redis.Port,
			Password:        cfg.Redis.Password,
			DB:              cfg.Redis.DB,
			PoolSize:        cfg.Redis.PoolSize,
			MinIdleConns:    cfg.Redis.MinIdleConns,
			MaxRetries:      cfg.Redis.MaxRetries,
			MinRetryBackoff: cfg.Redis.MinRetryBackoff,
			MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
			DialTimeout:     cfg.Redis.ConnectTimeout,
			ReadTimeout:     cfg.Redis.ReadTimeout,
			WriteTimeout:    cfg.Redis.WriteTimeout,
			PoolTimeout:     cfg.Redis.PoolTimeout,
			IdleTimeout:     cfg.Redis.IdleTimeout,
		})
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("неизвестный драйвер кэша %q", cfg.Cache.Driver)
	}
}

// NewGateway собирает цепочку: HTTP клиент с авторизацией, GraphQL клиент, кэш, шлюз
func NewGateway(ctx context.Context, cfg *config.Config, cachePort interfaces.CachePort, logger interfaces.LoggerPort) (*services.ContentGateway, error) {
	if err := cfg.WordPress.Validate(); err != nil {
		return nil, err
	}

	httpClient := graphql.NewHTTPClient(cfg.WordPress.Timeout)
	if creds := cfg.WordPress.GetCredentialsConfig(); creds.Enabled() {
		httpClient = auth.NewHTTPClient(ctx, creds, httpClient)
		logger.Info("Запросы к WordPress выполняются с авторизацией")
	}

	client, err := graphql.NewClient(graphql.ClientOptions{
		Endpoint:   cfg.WordPress.Endpoint(),
		Timeout:    cfg.WordPress.Timeout,
		HTTPClient: httpClient,
		UserAgent:  fmt.Sprintf("%s/%s", cfg.AppName, cfg.Version),
	}, logger)
	if err != nil {
		return nil, err
	}

	var port interfaces.GraphQLPort = client
	if cachePort != nil {
		port = graphql.NewCachedClient(client, cachePort, cfg.Cache.TTL, logger)
	}

	return services.NewContentGateway(port, services.GatewayOptions{
		ListPageSize:     cfg.WordPress.ListPageSize,
		SearchPageSize:   cfg.WordPress.SearchPageSize,
		CategoryPageSize: cfg.WordPress.CategoryPageSize,
		SlugPageSize:     cfg.WordPress.SlugPageSize,
		SlugBound:        cfg.WordPress.SlugBound,
	}, logger)
}

// NewMessaging подключается к Kafka. При kafka.enabled = false возвращает nil
func NewMessaging(cfg *config.Config, clientID string, logger interfaces.LoggerPort) (interfaces.MessagingPort, error) {
	return NewMessagingWithGroup(cfg, clientID, cfg.Kafka.GroupID, logger)
}

// NewMessagingWithGroup как NewMessaging, но подписки читают топики своей группой потребителей
func NewMessagingWithGroup(cfg *config.Config, clientID, groupID string, logger interfaces.LoggerPort) (interfaces.MessagingPort, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	return messaging.NewKafkaMessaging(messaging.KafkaOptions{
		Brokers:           cfg.Kafka.Brokers,
		GroupID:           groupID,
		ClientID:          clientID,
		AutoOffsetReset:   cfg.Kafka.AutoOffsetReset,
		SessionTimeout:    cfg.Kafka.SessionTimeout,
		PollTimeout:       cfg.Kafka.PollTimeout,
		EnableIdempotence: cfg.Kafka.EnableIdempotence,
		CompressionType:   cfg.Kafka.CompressionType,
	}, logger)
}

// NewClickStorage подключается к Postgres и создает схему журнала переходов
func NewClickStorage(ctx context.Context, cfg *config.Config) (*storage.ClickStorage, error) {
	connectionStr, err := utils.GenerateConnectionString(utils.PostgresParams{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		ApplicationName: cfg.AppName,
		PoolSize:        cfg.Postgres.PoolSize,
		Timeout:         cfg.Postgres.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации строки подключения: %w", err)
	}

	clickStorage, err := storage.NewPostgresStorage(ctx, connectionStr, 0)
	if err != nil {
		return nil, err
	}

	if err := clickStorage.EnsureSchema(ctx); err != nil {
		_ = clickStorage.Close()
		return nil, fmt.Errorf("ошибка создания схемы: %w", err)
	}

	return clickStorage, nil
}

// LocalCacheGroupID группа потребителей экземпляра API с кэшем в памяти процесса.
// Группа уникальна, чтобы каждый экземпляр получал все события и сбрасывал свой кэш
func LocalCacheGroupID(cfg *config.Config, instanceID string) string {
	return cfg.Kafka.GroupID + "-cache-" + instanceID
}

// NeedsLocalInvalidation сообщает, что API держит кэш в памяти и должен сам слушать content-events
func NeedsLocalInvalidation(cfg *config.Config) bool {
	return cfg.Cache.Driver == "memory" && cfg.Kafka.Enabled
}

// CheckCache проверяет кэш записью и чтением служебного ключа
func CheckCache(ctx context.Context, cachePort interfaces.CachePort) error {
	testKey := "health:connection"
	testValue := []byte("ok")

	if err := cachePort.Set(ctx, testKey, testValue, 10*time.Second); err != nil {
		return fmt.Errorf("ошибка записи в кэш: %w", err)
	}

	value, err := cachePort.Get(ctx, testKey)
	if err != nil {
		return fmt.Errorf("ошибка чтения из кэша: %w", err)
	}
	if string(value) != string(testValue) {
		return fmt.Errorf("некорректное значение из кэша: получено %s, ожидалось %s", value, testValue)
	}

	return cachePort.Delete(ctx, testKey)
}
