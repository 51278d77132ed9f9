package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		BodyLimit       int // максимальный размер запроса в МБ
	}

	WordPress WordPressConfig

	Cache struct {
		Driver string        // redis, memory (только одиночный API) или none
		TTL    time.Duration // время жизни закэшированного ответа GraphQL
	}

	Postgres struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Host            string
		Port            int
		Password        string
		DB              int
		PoolSize        int           // размер пула соединений
		MinIdleConns    int           // минимальное количество неактивных соединений
		ConnectTimeout  time.Duration // таймаут соединения
		ReadTimeout     time.Duration // таймаут чтения
		WriteTimeout    time.Duration // таймаут записи
		PoolTimeout     time.Duration // таймаут ожидания соединения из пула
		IdleTimeout     time.Duration // таймаут неактивного соединения
		MaxRetries      int           // максимальное количество повторных попыток
		MinRetryBackoff time.Duration
		MaxRetryBackoff time.Duration
	}

	Kafka struct {
		Enabled           bool          `mapstructure:"enabled"`
		Brokers           []string      `mapstructure:"brokers"`
		GroupID           string        `mapstructure:"groupID"`
		ContentTopic      string        `mapstructure:"contentTopic"`
		RevalidateTopic   string        `mapstructure:"revalidateTopic"`
		ClickTopic        string        `mapstructure:"clickTopic"`
		AutoOffsetReset   string        `mapstructure:"autoOffsetReset"`
		SessionTimeout    time.Duration `mapstructure:"sessionTimeout"`
		PollTimeout       time.Duration `mapstructure:"pollTimeout"`
		EnableIdempotence bool          `mapstructure:"enableIdempotence"`
		CompressionType   string        `mapstructure:"compressionType"`
	}

	Metrics struct {
		Enabled  bool
		Endpoint string
		Port     int // порт HTTP сервера метрик воркера
	}

	Security struct {
		JWTSecret        string
		WebhookRole      string // роль, которую должен нести токен вебхука
		CORSAllowOrigins []string
	}

	RateLimit struct {
		Enabled bool
		RPS     float64 // запросов в секунду на клиента
		Burst   int
	}
}

// Validate проверяет обязательные настройки
func (c *Config) Validate() error {
	if err := c.WordPress.Validate(); err != nil {
		return err
	}

	switch c.Cache.Driver {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("%w: неизвестный драйвер кэша %q", apperrors.ErrConfiguration, c.Cache.Driver)
	}

	if c.Cache.Driver != "none" && c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl должен быть положительным", apperrors.ErrConfiguration)
	}

	return nil
}

// ValidateWorker проверяет настройки, без которых воркер не сможет сбросить кэш API.
// Кэш в памяти процесса принадлежит одному процессу, поэтому воркеру нужен общий redis или отсутствие кэша
func (c *Config) ValidateWorker() error {
	if c.Cache.Driver == "memory" {
		return fmt.Errorf("%w: воркер не может сбросить кэш в памяти процесса API, используйте cache.driver=redis или none", apperrors.ErrConfiguration)
	}
	if !c.Kafka.Enabled {
		return fmt.Errorf("%w: воркеру требуется kafka.enabled=true", apperrors.ErrConfiguration)
	}
	return nil
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	v := viper.New()

	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Файл не найден, используем значения по умолчанию и переменные окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = v.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "content-service")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "15s")
	v.SetDefault("server.shutdownTimeout", "5s")
	v.SetDefault("server.bodyLimit", 1)

	// Настройки WordPress
	v.SetDefault("wordpress.baseUrl", "")
	v.SetDefault("wordpress.timeout", "10s")
	v.SetDefault("wordpress.listPageSize", 100)
	v.SetDefault("wordpress.searchPageSize", 50)
	v.SetDefault("wordpress.categoryPageSize", 100)
	v.SetDefault("wordpress.slugPageSize", 100)
	v.SetDefault("wordpress.slugBound", 1000)
	v.SetDefault("wordpress.auth.tokenUrl", "")
	v.SetDefault("wordpress.auth.clientId", "")
	v.SetDefault("wordpress.auth.clientSecret", "")
	v.SetDefault("wordpress.auth.staticToken", "")

	// Настройки кэша
	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.ttl", "60s")

	// Настройки Postgres
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "postgres")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timeout", "5s")
	v.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.connectTimeout", "1s")
	v.SetDefault("redis.readTimeout", "1s")
	v.SetDefault("redis.writeTimeout", "1s")
	v.SetDefault("redis.poolTimeout", "4s")
	v.SetDefault("redis.idleTimeout", "300s")
	v.SetDefault("redis.maxRetries", 3)
	v.SetDefault("redis.minRetryBackoff", "8ms")
	v.SetDefault("redis.maxRetryBackoff", "512ms")

	// Настройки Kafka
	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "content-service")
	v.SetDefault("kafka.contentTopic", "content-events")
	v.SetDefault("kafka.revalidateTopic", "page-revalidate")
	v.SetDefault("kafka.clickTopic", "affiliate-clicks")
	v.SetDefault("kafka.autoOffsetReset", "latest")
	v.SetDefault("kafka.sessionTimeout", "10s")
	v.SetDefault("kafka.pollTimeout", "100ms")
	v.SetDefault("kafka.enableIdempotence", true)
	v.SetDefault("kafka.compressionType", "snappy")

	// Настройки метрик
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.endpoint", "/metrics")
	v.SetDefault("metrics.port", 9090)

	// Настройки безопасности
	v.SetDefault("security.jwtSecret", "")
	v.SetDefault("security.webhookRole", "content-publisher")
	v.SetDefault("security.corsAllowOrigins", []string{"*"})

	// Ограничение частоты запросов
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.rps", 20)
	v.SetDefault("rateLimit.burst", 40)
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	// Основные настройки
	_ = v.BindEnv("appName", "APP_NAME")
	_ = v.BindEnv("version", "APP_VERSION")
	_ = v.BindEnv("logLevel", "LOG_LEVEL")
	_ = v.BindEnv("env", "APP_ENV")

	// Настройки сервера
	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	_ = v.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	_ = v.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("server.bodyLimit", "SERVER_BODY_LIMIT")

	// Настройки WordPress, второе имя оставлено для совместимости с фронтендом
	_ = v.BindEnv("wordpress.baseUrl", "WORDPRESS_API_URL", "NEXT_PUBLIC_WORDPRESS_API_URL")
	_ = v.BindEnv("wordpress.timeout", "WORDPRESS_TIMEOUT")
	_ = v.BindEnv("wordpress.slugBound", "WORDPRESS_SLUG_BOUND")
	_ = v.BindEnv("wordpress.auth.tokenUrl", "WORDPRESS_TOKEN_URL")
	_ = v.BindEnv("wordpress.auth.clientId", "WORDPRESS_CLIENT_ID")
	_ = v.BindEnv("wordpress.auth.clientSecret", "WORDPRESS_CLIENT_SECRET")
	_ = v.BindEnv("wordpress.auth.staticToken", "WORDPRESS_AUTH_TOKEN")

	// Настройки кэша
	_ = v.BindEnv("cache.driver", "CACHE_DRIVER")
	_ = v.BindEnv("cache.ttl", "CACHE_TTL")

	// Настройки Postgres
	_ = v.BindEnv("postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("postgres.dbname", "POSTGRES_DBNAME")
	_ = v.BindEnv("postgres.sslmode", "POSTGRES_SSLMODE")
	_ = v.BindEnv("postgres.timeout", "POSTGRES_TIMEOUT")
	_ = v.BindEnv("postgres.poolSize", "POSTGRES_POOL_SIZE")

	// Настройки Redis
	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("redis.poolSize", "REDIS_POOL_SIZE")

	// Настройки Kafka
	_ = v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("kafka.groupID", "KAFKA_GROUP_ID")
	_ = v.BindEnv("kafka.contentTopic", "KAFKA_CONTENT_TOPIC")
	_ = v.BindEnv("kafka.revalidateTopic", "KAFKA_REVALIDATE_TOPIC")
	_ = v.BindEnv("kafka.clickTopic", "KAFKA_CLICK_TOPIC")
	_ = v.BindEnv("kafka.autoOffsetReset", "KAFKA_AUTO_OFFSET_RESET")

	// Настройки метрик
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("metrics.endpoint", "METRICS_ENDPOINT")
	_ = v.BindEnv("metrics.port", "METRICS_PORT")

	// Настройки безопасности
	_ = v.BindEnv("security.jwtSecret", "JWT_SECRET")
	_ = v.BindEnv("security.webhookRole", "WEBHOOK_ROLE")
	_ = v.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")

	// Ограничение частоты запросов
	_ = v.BindEnv("rateLimit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rateLimit.rps", "RATE_LIMIT_RPS")
	_ = v.BindEnv("rateLimit.burst", "RATE_LIMIT_BURST")
}
