package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitClient — клиент брокера поверх RabbitMQ.
//
// Маршрутизация: на каждый вид task'ов объявляется direct exchange,
// именованный по виду; очередь воркера именуется по его identity и
// привязывается к exchange с routing key = identity. Так координатор
// раздаёт работу по виду, а каждый воркер получает её в свою очередь.
//
// Подтверждение — ack-after-process: сообщение ack'ается только после
// завершения handler'а, поэтому падение посреди обработки оставляет
// сообщение для повторной доставки (at-least-once).
type RabbitClient struct {
	cfg      Config
	workerID uuid.UUID
	logger   *slog.Logger

	mu        sync.Mutex
	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
}

// NewRabbitClient создаёт клиент RabbitMQ. Соединение не устанавливается.
func NewRabbitClient(cfg Config, workerID uuid.UUID, logger *slog.Logger) *RabbitClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RabbitClient{
		cfg:      cfg,
		workerID: workerID,
		logger:   logger,
	}
}

// queueName — имя очереди воркера: его identity.
func (c *RabbitClient) queueName() string {
	return c.workerID.String()
}

// Connect устанавливает соединение и открывает канал.
// Идемпотентен при успехе.
func (c *RabbitClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch
	c.connected = true

	c.logger.Info("connected to RabbitMQ", "queue", c.queueName())
	return nil
}

// Disconnect освобождает ресурсы сессии.
//
// Очередь воркера удаляется best-effort: она принадлежит только этому
// воркеру, а exchanges по видам task'ов общие и остаются. Безопасен
// не более одного вызова на успешный Connect.
func (c *RabbitClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	c.connected = false

	if _, err := c.channel.QueueDelete(c.queueName(), false, false, false); err != nil {
		c.logger.Warn("failed to delete worker queue", "queue", c.queueName(), "error", err)
	}

	var errs []error
	if err := c.channel.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close channel: %w", err))
	}
	if err := c.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close connection: %w", err))
	}
	if len(errs) > 0 {
		return errs[0]
	}

	c.logger.Info("disconnected from RabbitMQ")
	return nil
}

// Consume потребляет task'и данного вида до отмены контекста.
//
// Открывает собственный AMQP-канал, чтобы циклы разных видов не
// влияли друг на друга: медленный handler одного вида не задерживает
// доставку другого. Prefetch = 1 — не более одного сообщения в
// обработке на цикл.
func (c *RabbitClient) Consume(ctx context.Context, kind string, h Handler) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	conn := c.conn
	c.mu.Unlock()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open consume channel: %w", err)
	}
	defer ch.Close()

	deliveries, err := c.setupConsume(ch, kind)
	if err != nil {
		return err
	}

	c.logger.Info("consuming", "kind", kind, "queue", c.queueName())

	for {
		select {
		case <-ctx.Done():
			return nil

		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%w: kind %s", ErrStreamClosed, kind)
			}
			c.handleDelivery(ctx, kind, raw, h)
		}
	}
}

// setupConsume объявляет топологию вида и начинает потребление.
func (c *RabbitClient) setupConsume(ch *amqp.Channel, kind string) (<-chan amqp.Delivery, error) {
	err := ch.ExchangeDeclare(
		kind,     // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", kind, err)
	}

	queue := c.queueName()
	if _, err := ch.QueueDeclare(
		queue, // name
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(
		queue, // queue name
		queue, // routing key: worker identity
		kind,  // exchange
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return nil, fmt.Errorf("bind queue %s to %s: %w", queue, kind, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		queue, // queue
		"",    // consumer tag (auto-generated)
		false, // auto-ack (ack вручную, после обработки)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}

	return deliveries, nil
}

// handleDelivery обрабатывает одно сообщение.
func (c *RabbitClient) handleDelivery(ctx context.Context, kind string, raw amqp.Delivery, h Handler) {
	env, err := decodeEnvelope(raw.Body)
	if err != nil {
		c.logger.Error("failed to decode message",
			"kind", kind,
			"error", err,
			"body", string(raw.Body),
		)
		// Некорректное сообщение — повторная доставка не поможет
		raw.Nack(false, false)
		return
	}

	if err := h(ctx, env); err != nil {
		c.logger.Error("envelope handler failed",
			"kind", kind,
			"task_id", env.TaskID,
			"error", err,
		)
		// Обработка не состоялась — возвращаем в очередь
		raw.Nack(false, true)
		return
	}

	raw.Ack(false)
}
