package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/tx"
	"github.com/athebyme/affiliate-storefront/services/content-service/config"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/logger"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/app"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/services"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.ValidateWorker(); err != nil {
		fmt.Printf("Некорректная конфигурация воркера: %v\n", err)
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

	log.Info("Инициализация воркера",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	// Запускаем HTTP сервер для метрик если они включены
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("OK"))
			})

			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			log.Info("Запуск HTTP сервера для метрик",
				interfaces.LogField{Key: "addr", Value: addr})

			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error("Ошибка запуска HTTP сервера для метрик",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}()
	}

	clickStorage, err := app.NewClickStorage(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer clickStorage.Close()
	log.Info("Хранилище инициализировано")

	txManager := tx.NewTxManager(clickStorage.Pool(), log)

	cacheClient, err := app.NewCache(ctx, cfg)
	if err != nil {
		log.Fatal("Ошибка инициализации кэша",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	if cacheClient != nil {
		defer cacheClient.Close()
		log.Info("Кэш инициализирован", interfaces.LogField{Key: "driver", Value: cfg.Cache.Driver})
	}

	gateway, err := app.NewGateway(ctx, cfg, cacheClient, log)
	if err != nil {
		log.Fatal("Ошибка инициализации шлюза контента",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}

	messagingClient, err := app.NewMessaging(cfg, cfg.AppName+"-worker", log)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer messagingClient.Close()
	log.Info("Система обмена сообщениями инициализирована")

	revalidator := services.NewRevalidator(gateway, cacheClient, messagingClient, cfg.Kafka.RevalidateTopic, log)
	recorder := services.NewClickRecorder(clickStorage, txManager, log)

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	subscribe(ctx, messagingClient, cfg.Kafka.ContentTopic, instrument(revalidator.HandleMessage, log), log, &wg)
	subscribe(ctx, messagingClient, cfg.Kafka.ClickTopic, instrument(recorder.HandleMessage, log), log, &wg)

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		cancel()
		wg.Wait()
		close(done)
	}()

	log.Info("Воркер запущен и готов к обработке сообщений")
	<-done
	log.Info("Воркер корректно завершил работу")
}

// instrument оборачивает обработчик метриками и логированием
func instrument(handler interfaces.MessageHandler, logger interfaces.LoggerPort) interfaces.MessageHandler {
	return func(ctx context.Context, msg *interfaces.Message) error {
		startTime := time.Now()
		metrics.ActiveWorkers.Inc()
		defer metrics.ActiveWorkers.Dec()

		logger.DebugWithContext(ctx, "Получено сообщение",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "topic", Value: msg.Topic},
		)

		if err := handler(ctx, msg); err != nil {
			logger.ErrorWithContext(ctx, "Ошибка обработки сообщения",
				interfaces.LogField{Key: "message_id", Value: msg.ID},
				interfaces.LogField{Key: "topic", Value: msg.Topic},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
			metrics.MessagesProcessed.WithLabelValues(msg.Topic, "error").Inc()
			return err
		}

		duration := time.Since(startTime).Seconds()
		metrics.MessageProcessingDuration.WithLabelValues(msg.Topic).Observe(duration)
		metrics.MessagesProcessed.WithLabelValues(msg.Topic, "success").Inc()

		logger.InfoWithContext(ctx, "Сообщение успешно обработано",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "topic", Value: msg.Topic},
			interfaces.LogField{Key: "duration", Value: duration},
		)

		return nil
	}
}

func subscribe(ctx context.Context, messagingClient interfaces.MessagingPort, topic string,
	handler interfaces.MessageHandler, logger interfaces.LoggerPort, wg *sync.WaitGroup) {

	wg.Add(1)

	go func() {
		defer wg.Done()

		unsubscribe, err := messagingClient.Subscribe(ctx, topic, handler)
		if err != nil {
			logger.Error("Ошибка подписки на топик",
				interfaces.LogField{Key: "topic", Value: topic},
				interfaces.LogField{Key: "error", Value: err.Error()})
			return
		}
		defer unsubscribe()

		logger.Info("Подписка установлена", interfaces.LogField{Key: "topic", Value: topic})

		<-ctx.Done()
		logger.Info("Отмена подписки", interfaces.LogField{Key: "topic", Value: topic})
	}()
}
