package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

// Служебные заголовки сообщений
const (
	headerMessageID = "message_id"
	headerTimestamp = "timestamp"
)

// KafkaOptions параметры подключения к Kafka
type KafkaOptions struct {
	Brokers           []string
	GroupID           string
	ClientID          string
	AutoOffsetReset   string
	SessionTimeout    time.Duration
	PollTimeout       time.Duration
	EnableIdempotence bool
	CompressionType   string
}

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer       *kafka.Producer
	unsubscribers  map[string]func() error
	consumersMutex sync.Mutex
	opts           KafkaOptions
	logger         interfaces.LoggerPort
	wg             sync.WaitGroup
}

// NewKafkaMessaging создает продюсера и запускает чтение отчетов о доставке
func NewKafkaMessaging(opts KafkaOptions, logger interfaces.LoggerPort) (interfaces.MessagingPort, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("не заданы брокеры Kafka")
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 100 * time.Millisecond
	}
	if opts.AutoOffsetReset == "" {
		opts.AutoOffsetReset = "latest"
	}
	if opts.CompressionType == "" {
		opts.CompressionType = "snappy"
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            strings.Join(opts.Brokers, ","),
		"client.id":                    opts.ClientID + "-producer",
		"acks":                         "all",
		"enable.idempotence":           opts.EnableIdempotence,
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             opts.CompressionType,
		"linger.ms":                    10,
		"batch.size":                   16384,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer:      producer,
		unsubscribers: make(map[string]func() error),
		opts:          opts,
		logger:        logger,
	}

	k.wg.Add(1)
	go k.handleDeliveryReports()

	return k, nil
}

// handleDeliveryReports логирует сообщения, которые брокер не принял
func (k *KafkaMessaging) handleDeliveryReports() {
	defer k.wg.Done()

	for ev := range k.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				k.logger.Error("Сообщение не доставлено в Kafka",
					interfaces.LogField{Key: "topic", Value: topicName(e)},
					interfaces.LogField{Key: "error", Value: e.TopicPartition.Error.Error()},
				)
			}
		case kafka.Error:
			k.logger.Warn("Ошибка продюсера Kafka",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
		}
	}
}

// messageToKafkaMessage преобразует данные публикации в kafka.Message
func messageToKafkaMessage(topic string, message []byte, key string, headers map[string]string, now time.Time) *kafka.Message {
	kafkaHeaders := make([]kafka.Header, 0, len(headers)+2)
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: headerMessageID, Value: []byte(uuid.New().String())},
		kafka.Header{Key: headerTimestamp, Value: []byte(now.UTC().Format(time.RFC3339Nano))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        kafkaHeaders,
	}
}

// kafkaMessageToMessage преобразует kafka.Message в Message
func kafkaMessageToMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	var key string
	if msg.Key != nil {
		key = string(msg.Key)
	}

	publishedAt := msg.Timestamp
	if tsStr, ok := headers[headerTimestamp]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, tsStr); err == nil {
			publishedAt = ts
		}
	}

	return &interfaces.Message{
		ID:          headers[headerMessageID],
		Topic:       topicName(msg),
		Key:         key,
		Value:       msg.Value,
		Headers:     headers,
		Metadata:    make(map[string]interface{}),
		PublishedAt: publishedAt,
	}
}

func topicName(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}

// Publish публикует сообщение в указанную тему
func (k *KafkaMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	return k.PublishWithKey(ctx, topic, "", message)
}

// PublishWithKey публикует сообщение с ключом партиционирования
func (k *KafkaMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := map[string]string{}
	if reqID, ok := ctx.Value(interfaces.RequestIDKey).(string); ok && reqID != "" {
		headers[string(interfaces.RequestIDKey)] = reqID
	}

	msg := messageToKafkaMessage(topic, message, key, headers, time.Now())
	if err := k.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("ошибка публикации в топик %s: %w", topic, err)
	}
	return nil
}

// Subscribe подписывается на тему и обрабатывает сообщения в отдельной горутине
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	config := &interfaces.ConsumerConfig{
		GroupID:            k.opts.GroupID,
		AutoCommit:         false,
		AutoCommitInterval: 5 * time.Second,
		PollTimeout:        k.opts.PollTimeout,
		AutoOffsetReset:    k.opts.AutoOffsetReset,
	}
	return k.subscribeWithConfig(ctx, topic, handler, config)
}

func (k *KafkaMessaging) subscribeWithConfig(ctx context.Context, topic string, handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) (func() error, error) {
	handlerID := uuid.New().String()

	sessionTimeout := k.opts.SessionTimeout
	if sessionTimeout <= 0 {
		sessionTimeout = 10 * time.Second
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":        strings.Join(k.opts.Brokers, ","),
		"client.id":                k.opts.ClientID + "-consumer",
		"group.id":                 config.GroupID,
		"auto.offset.reset":        config.AutoOffsetReset,
		"enable.auto.commit":       config.AutoCommit,
		"auto.commit.interval.ms":  int(config.AutoCommitInterval.Milliseconds()),
		"session.timeout.ms":       int(sessionTimeout.Milliseconds()),
		"max.poll.interval.ms":     300000,
		"heartbeat.interval.ms":    3000,
		"fetch.wait.max.ms":        500,
		"reconnect.backoff.ms":     50,
		"reconnect.backoff.max.ms": 10000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("ошибка подписки на топик %s: %w", topic, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		k.consumeMessages(consumeCtx, consumer, topic, handler, config)
	}()

	var once sync.Once
	unsubscribe := func() error {
		var closeErr error
		once.Do(func() {
			cancel()
			<-done

			k.consumersMutex.Lock()
			delete(k.unsubscribers, handlerID)
			k.consumersMutex.Unlock()

			closeErr = consumer.Close()
		})
		return closeErr
	}

	k.consumersMutex.Lock()
	k.unsubscribers[handlerID] = unsubscribe
	k.consumersMutex.Unlock()

	return unsubscribe, nil
}

// consumeMessages читает сообщения до отмены контекста
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, topic string, handler interfaces.MessageHandler, config *interfaces.ConsumerConfig) {
	log := k.logger.WithField("topic", topic)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := consumer.Poll(int(config.PollTimeout.Milliseconds()))
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msg := kafkaMessageToMessage(e)

			msgCtx := ctx
			if reqID := msg.Headers[string(interfaces.RequestIDKey)]; reqID != "" {
				msgCtx = context.WithValue(ctx, interfaces.RequestIDKey, reqID)
			}

			if err := handler(msgCtx, msg); err != nil {
				log.ErrorWithContext(msgCtx, "Ошибка обработки сообщения",
					interfaces.LogField{Key: "message_id", Value: msg.ID},
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
				// Необработанное сообщение не подтверждаем
				continue
			}

			if !config.AutoCommit {
				if _, err := consumer.CommitMessage(e); err != nil {
					log.Warn("Ошибка подтверждения сообщения",
						interfaces.LogField{Key: "message_id", Value: msg.ID},
						interfaces.LogField{Key: "error", Value: err.Error()},
					)
				}
			}

		case kafka.Error:
			log.Warn("Ошибка Kafka consumer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
			if e.Code() == kafka.ErrAllBrokersDown {
				log.Error("Все брокеры Kafka недоступны, чтение остановлено")
				return
			}

		case kafka.PartitionEOF:
			log.Debug("Достигнут конец партиции")
		}
	}
}

// Close закрывает потребителей и дожидается отправки буфера продюсера
func (k *KafkaMessaging) Close() error {
	k.consumersMutex.Lock()
	unsubscribers := make([]func() error, 0, len(k.unsubscribers))
	for _, unsubscribe := range k.unsubscribers {
		unsubscribers = append(unsubscribers, unsubscribe)
	}
	k.consumersMutex.Unlock()

	for _, unsubscribe := range unsubscribers {
		if err := unsubscribe(); err != nil {
			k.logger.Warn("Ошибка закрытия Kafka consumer",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	if remaining := k.producer.Flush(15 * 1000); remaining > 0 {
		k.logger.Warn("Не все сообщения отправлены в Kafka",
			interfaces.LogField{Key: "remaining", Value: remaining})
	}
	k.producer.Close()
	k.wg.Wait()

	return nil
}
