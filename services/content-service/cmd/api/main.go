package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/services/content-service/config"
	_ "github.com/athebyme/affiliate-storefront/services/content-service/docs"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/logger"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/api"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/api/handlers"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/api/middleware"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/app"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/services"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/security"
	"github.com/google/uuid"
)

// @title           Content Service API
// @version         1.0
// @description     Нормализованный контент WordPress для рендерера витрины
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
		interfaces.LogField{Key: "wordpress", Value: cfg.WordPress.Endpoint()},
	)

	cacheClient, err := app.NewCache(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	if cacheClient != nil {
		testCtx, testCancel := context.WithTimeout(ctx, 5*time.Second)
		err := app.CheckCache(testCtx, cacheClient)
		testCancel()
		if err != nil {
			log.Fatal("Кэш недоступен", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("Кэш инициализирован", interfaces.LogField{Key: "driver", Value: cfg.Cache.Driver})
	}

	gateway, err := app.NewGateway(ctx, cfg, cacheClient, log)
	if err != nil {
		log.Fatal("Ошибка инициализации шлюза контента", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Шлюз контента инициализирован")

	// без Kafka сайт работает, но переходы не учитываются, а вебхуки отклоняются
	messagingClient, err := app.NewMessaging(cfg, cfg.AppName+"-api", log)
	if err != nil {
		log.Error("Система обмена сообщениями недоступна", interfaces.LogField{Key: "error", Value: err.Error()})
		messagingClient = nil
	} else if messagingClient != nil {
		log.Info("Система обмена сообщениями инициализирована")
	}

	// кэш в памяти процесса воркер сбросить не может, экземпляр слушает content-events сам
	var invalidationClient interfaces.MessagingPort
	if app.NeedsLocalInvalidation(cfg) {
		groupID := app.LocalCacheGroupID(cfg, uuid.NewString()[:8])
		invalidationClient, err = app.NewMessagingWithGroup(cfg, cfg.AppName+"-api-cache", groupID, log)
		if err != nil {
			log.Error("Подписка на сброс кэша недоступна, ответы CMS устаревают до истечения TTL",
				interfaces.LogField{Key: "error", Value: err.Error()})
			invalidationClient = nil
		} else {
			invalidator := services.NewCacheInvalidator(cacheClient, log)
			if _, err := invalidationClient.Subscribe(ctx, cfg.Kafka.ContentTopic, invalidator.HandleMessage); err != nil {
				log.Fatal("Ошибка подписки на события контента",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
			log.Info("Подписка на сброс кэша установлена",
				interfaces.LogField{Key: "topic", Value: cfg.Kafka.ContentTopic},
				interfaces.LogField{Key: "group_id", Value: groupID})
		}
	}

	var authPort interfaces.AuthPort
	if cfg.Security.JWTSecret != "" {
		jwtManager, err := security.NewJWTManager(cfg.Security.JWTSecret, 0, "")
		if err != nil {
			log.Fatal("Ошибка инициализации проверки токенов", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		authPort = jwtManager
	}

	// статистика переходов доступна только при работающем Postgres
	var clickStats handlers.ClickStatsProvider
	clickStorage, err := app.NewClickStorage(ctx, cfg)
	if err != nil {
		log.Warn("Postgres недоступен, статистика переходов отключена",
			interfaces.LogField{Key: "error", Value: err.Error()})
	} else {
		defer clickStorage.Close()
		clickStats = services.NewClickStatsService(clickStorage)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 3*time.Minute)
		go limiter.Run(ctx)
	}

	metricsEndpoint := ""
	if cfg.Metrics.Enabled {
		metricsEndpoint = cfg.Metrics.Endpoint
	}

	router := api.SetupRouter(api.RouterOptions{
		Gateway:          gateway,
		Clicks:           services.NewClickTracker(gateway, messagingClient, cfg.Kafka.ClickTopic, log),
		ClickStats:       clickStats,
		Messaging:        messagingClient,
		Auth:             authPort,
		RateLimiter:      limiter,
		Logger:           log,
		CORSAllowOrigins: cfg.Security.CORSAllowOrigins,
		ContentTopic:     cfg.Kafka.ContentTopic,
		WebhookRole:      cfg.Security.WebhookRole,
		MetricsEndpoint:  metricsEndpoint,
		RequestTimeout:   cfg.Server.WriteTimeout,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      http.MaxBytesHandler(router, int64(cfg.Server.BodyLimit)<<20),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")

		if invalidationClient != nil {
			if err := invalidationClient.Close(); err != nil {
				log.Error("Ошибка при закрытии подписки на сброс кэша", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		if messagingClient != nil {
			if err := messagingClient.Close(); err != nil {
				log.Error("Ошибка при закрытии Kafka", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		if cacheClient != nil {
			if err := cacheClient.Close(); err != nil {
				log.Error("Ошибка при закрытии кэша", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}
