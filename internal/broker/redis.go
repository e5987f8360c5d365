package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisClient — клиент брокера поверх Redis pub/sub.
//
// На каждый вид task'ов воркер подписывается на канал
// "<namespace>:<kind>". У pub/sub нет подтверждений и повторной
// доставки: сообщение, опубликованное без подключённого подписчика,
// теряется. Это документированное ограничение транспорта, а не дефект.
type RedisClient struct {
	cfg      Config
	workerID uuid.UUID
	logger   *slog.Logger

	mu        sync.Mutex
	client    *redis.Client
	connected bool
}

// NewRedisClient создаёт клиент Redis. Соединение не устанавливается.
func NewRedisClient(cfg Config, workerID uuid.UUID, logger *slog.Logger) *RedisClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisClient{
		cfg:      cfg,
		workerID: workerID,
		logger:   logger,
	}
}

// channelName — имя pub/sub канала для вида task'ов.
func (c *RedisClient) channelName(kind string) string {
	return c.cfg.Namespace + ":" + kind
}

// Connect открывает клиентскую сессию и проверяет её ping'ом.
// Идемпотентен при успехе.
func (c *RedisClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	opt, err := redis.ParseURL(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("ping redis: %w", err)
	}

	c.client = client
	c.connected = true

	c.logger.Info("connected to Redis", "worker_id", c.workerID)
	return nil
}

// Disconnect закрывает клиент; активные подписки завершаются.
// Безопасен не более одного вызова на успешный Connect.
func (c *RedisClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	c.connected = false

	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}

	c.logger.Info("disconnected from Redis")
	return nil
}

// Consume подписывается на канал вида и обрабатывает сообщения
// до отмены контекста или закрытия подписки.
func (c *RedisClient) Consume(ctx context.Context, kind string, h Handler) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	client := c.client
	c.mu.Unlock()

	channel := c.channelName(kind)
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	// Дожидаемся подтверждения подписки: до него публикации теряются.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	c.logger.Info("consuming", "kind", kind, "channel", channel)

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("%w: channel %s", ErrStreamClosed, channel)
			}
			c.handleMessage(ctx, kind, msg, h)
		}
	}
}

// handleMessage обрабатывает одно опубликованное сообщение.
func (c *RedisClient) handleMessage(ctx context.Context, kind string, msg *redis.Message, h Handler) {
	env, err := decodeEnvelope([]byte(msg.Payload))
	if err != nil {
		c.logger.Error("failed to decode message",
			"kind", kind,
			"error", err,
			"payload", msg.Payload,
		)
		return
	}

	if err := h(ctx, env); err != nil {
		// Повторной доставки у pub/sub нет — только логируем
		c.logger.Error("envelope handler failed",
			"kind", kind,
			"task_id", env.TaskID,
			"error", err,
		)
	}
}
