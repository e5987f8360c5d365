package broker

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Transport — тип транспорта брокера.
type Transport string

const (
	// TransportRabbit — exchange/queue брокер на RabbitMQ.
	TransportRabbit Transport = "rabbitmq"

	// TransportRedis — pub/sub брокер на Redis.
	TransportRedis Transport = "redis"
)

// defaultNamespace — префикс каналов pub/sub брокера.
const defaultNamespace = "conveyor"

// Handler — функция обработки одного Envelope.
//
// Транспорт подтверждает (ack) сообщение только после возврата handler'а,
// поэтому в каждом цикле потребления находится не более одного
// сообщения в обработке.
type Handler func(ctx context.Context, env *Envelope) error

// Client — абстракция клиента брокера.
//
// Контракт:
//   - Connect идемпотентен при успехе; при недоступном брокере
//     возвращает ошибку соединения.
//   - Disconnect освобождает все ресурсы сессии; вызывается не более
//     одного раза на успешный Connect.
//   - Consume блокируется на время жизни потока доставки для данного
//     вида task'ов. Возвращает nil при отмене контекста и ошибку
//     соединения при обрыве транспорта — обрыв фатален только для
//     этого цикла, не для процесса.
//
// Движок вызывает Consume по одному разу на каждый поддерживаемый
// вид task'ов.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Consume(ctx context.Context, kind string, h Handler) error
}

// Config — разобранная конфигурация брокера.
//
// Единственный источник — URL брокера; схема выбирает транспорт.
type Config struct {
	// URL — адрес брокера, включая credentials, если есть.
	URL string

	// Transport — транспорт, выбранный по схеме URL.
	Transport Transport

	// Namespace — префикс имён каналов для pub/sub транспорта.
	Namespace string
}

// ParseConfig разбирает URL брокера и выбирает транспорт по схеме.
//
// Не выполняет никакого сетевого I/O: неподдерживаемая схема — это
// ошибка конфигурации, обнаруживаемая до первого соединения.
func ParseConfig(rawURL string) (Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Config{}, fmt.Errorf("parse broker url: %w", err)
	}

	cfg := Config{
		URL:       rawURL,
		Namespace: defaultNamespace,
	}

	switch strings.ToLower(u.Scheme) {
	case "amqp", "amqps":
		cfg.Transport = TransportRabbit
	case "redis", "rediss":
		cfg.Transport = TransportRedis
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	return cfg, nil
}

// New создаёт клиент брокера для разобранной конфигурации.
//
// Чистая фабрика: транспорт уже выбран в ParseConfig, соединение
// не устанавливается. Очередь/каналы воркера именуются по workerID.
func New(cfg Config, workerID uuid.UUID, logger *slog.Logger) (Client, error) {
	switch cfg.Transport {
	case TransportRabbit:
		return NewRabbitClient(cfg, workerID, logger), nil
	case TransportRedis:
		return NewRedisClient(cfg, workerID, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, cfg.Transport)
	}
}
