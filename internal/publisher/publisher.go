package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/conveyor/internal/coordinator"
	"github.com/shaiso/conveyor/internal/domain"
)

// defaultPollInterval — интервал опроса координатора в Wait.
const defaultPollInterval = time.Second

// Client — тонкий клиент публикации task'ов.
//
// Публикует task через координатор и опрашивает его до завершения.
// Вся логика постановки в очередь и маршрутизации — на стороне
// координатора; здесь только удобная обёртка.
type Client struct {
	coordinator  *coordinator.Client
	pollInterval time.Duration
	logger       *slog.Logger
}

// Config — конфигурация клиента публикации.
type Config struct {
	// CoordinatorURL — адрес HTTP API координатора.
	CoordinatorURL string

	// PollInterval — интервал опроса в Wait (default: 1s).
	PollInterval time.Duration

	// Logger (опционально; если nil — slog.Default()).
	Logger *slog.Logger
}

// New создаёт клиент публикации.
func New(cfg Config) *Client {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		coordinator:  coordinator.NewClient(cfg.CoordinatorURL),
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Publish создаёт task указанного вида.
func (c *Client) Publish(ctx context.Context, kind string, input domain.TaskInput) (*domain.Task, error) {
	task, err := c.coordinator.PublishTask(ctx, kind, input)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("task published", "task_id", task.ID, "kind", kind)
	return task, nil
}

// Get возвращает текущее состояние task'а.
func (c *Client) Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	return c.coordinator.GetTask(ctx, taskID)
}

// Wait опрашивает координатор, пока task не завершится или контекст
// не будет отменён.
func (c *Client) Wait(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := c.coordinator.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsFinished() {
		return task, nil
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
			task, err := c.coordinator.GetTask(ctx, taskID)
			if err != nil {
				return nil, err
			}
			if task.IsFinished() {
				return task, nil
			}
		}
	}
}

// Run публикует task и ждёт его завершения.
func (c *Client) Run(ctx context.Context, kind string, input domain.TaskInput) (*domain.Task, error) {
	task, err := c.Publish(ctx, kind, input)
	if err != nil {
		return nil, err
	}
	return c.Wait(ctx, task.ID)
}
