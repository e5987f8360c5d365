package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/conveyor/internal/broker"
	"github.com/shaiso/conveyor/internal/coordinator"
	"github.com/shaiso/conveyor/internal/domain"
	"github.com/shaiso/conveyor/internal/telemetry"
)

// teardownTimeout — бюджет на disconnect брокера и снятие регистрации.
// Родительский контекст к этому моменту уже отменён, поэтому teardown
// идёт на собственном контексте.
const teardownTimeout = 10 * time.Second

// State — состояние жизненного цикла движка.
//
// Переходы:
//
//	unregistered → registering → active → draining → unregistered
type State string

const (
	// StateUnregistered — движок не зарегистрирован у координатора.
	// Единственное состояние, в котором разрешён RegisterHandler.
	StateUnregistered State = "unregistered"

	// StateRegistering — идёт регистрация у координатора и
	// подключение к брокеру. Набор видов task'ов заморожен.
	StateRegistering State = "registering"

	// StateActive — циклы потребления работают, по одному на вид.
	StateActive State = "active"

	// StateDraining — получен сигнал завершения; новые Envelope не
	// берутся, in-flight handler'ы дорабатывают.
	StateDraining State = "draining"
)

// BrokerFactory — фабрика клиента брокера. Подменяется в тестах.
type BrokerFactory func(cfg broker.Config, workerID uuid.UUID, logger *slog.Logger) (broker.Client, error)

// Engine — движок воркера.
//
// Управляет жизненным циклом: регистрация у координатора, один
// конкурентный цикл потребления на каждый зарегистрированный вид
// task'ов, выполнение handler'ов с изоляцией отказов, graceful
// shutdown с гарантированным снятием регистрации.
type Engine struct {
	name        string
	coordinator *coordinator.Client
	brokerCfg   broker.Config
	newBroker   BrokerFactory
	logger      *slog.Logger
	metrics     *telemetry.Metrics

	mu       sync.Mutex
	state    State
	frozen   bool
	handlers map[string]domain.Handler
	workerID uuid.UUID
}

// Config — конфигурация движка.
type Config struct {
	// Name — имя воркера, передаётся координатору при регистрации.
	Name string

	// CoordinatorURL — адрес HTTP API координатора.
	CoordinatorURL string

	// BrokerURL — адрес брокера; схема выбирает транспорт.
	BrokerURL string

	// Logger (опционально; если nil — slog.Default()).
	Logger *slog.Logger

	// Metrics (опционально; если nil — создаются незарегистрированные).
	Metrics *telemetry.Metrics

	// NewBroker — фабрика клиента брокера (для тестов; по умолчанию
	// broker.New).
	NewBroker BrokerFactory
}

// New создаёт движок.
//
// Схема URL брокера проверяется здесь же, до какого-либо сетевого
// I/O: неподдерживаемая схема — ошибка конфигурации, и движок с ней
// не создаётся.
func New(cfg Config) (*Engine, error) {
	brokerCfg, err := broker.ParseConfig(cfg.BrokerURL)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics(nil)
	}

	newBroker := cfg.NewBroker
	if newBroker == nil {
		newBroker = broker.New
	}

	return &Engine{
		name:        cfg.Name,
		coordinator: coordinator.NewClient(cfg.CoordinatorURL),
		brokerCfg:   brokerCfg,
		newBroker:   newBroker,
		logger:      logger,
		metrics:     metrics,
		state:       StateUnregistered,
		handlers:    make(map[string]domain.Handler),
	}, nil
}

// RegisterHandler регистрирует handler для вида task'ов.
//
// Разрешён только до начала Run: как только регистрация у
// координатора началась, набор видов заморожен, и попытка добавить
// новый вид возвращает ErrRegistrationClosed.
func (e *Engine) RegisterHandler(kind string, h domain.Handler) error {
	if h == nil {
		return ErrNilHandler
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen || e.state != StateUnregistered {
		return fmt.Errorf("%w (kind %s)", ErrRegistrationClosed, kind)
	}
	if _, exists := e.handlers[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}

	e.handlers[kind] = h
	return nil
}

// Kinds возвращает отсортированный список зарегистрированных видов.
func (e *Engine) Kinds() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	kinds := make([]string, 0, len(e.handlers))
	for kind := range e.handlers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// State возвращает текущее состояние жизненного цикла.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// WorkerID возвращает identity, присвоенный координатором.
// uuid.Nil до завершения регистрации.
func (e *Engine) WorkerID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workerID
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run — единственная долгоживущая точка входа воркера.
//
// Выполняет регистрацию, запускает циклы потребления и блокируется
// до отмены контекста (graceful shutdown) или до завершения всех
// циклов. Возвращает ошибку только при неудаче запуска; после
// успешной регистрации её снятие гарантировано на любом пути выхода.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateUnregistered {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	if len(e.handlers) == 0 {
		e.mu.Unlock()
		return ErrNoHandlers
	}
	e.state = StateRegistering
	// Набор видов заморожен с этого момента и навсегда
	e.frozen = true
	e.mu.Unlock()

	kinds := e.Kinds()

	workerID, err := e.coordinator.RegisterWorker(ctx, e.name, kinds)
	if err != nil {
		e.setState(StateUnregistered)
		return err
	}

	e.mu.Lock()
	e.workerID = workerID
	e.mu.Unlock()

	logger := telemetry.WithWorkerID(e.logger, workerID.String())
	logger.Info("worker registered", "name", e.name, "kinds", kinds)

	// Снятие регистрации — гарантированный путь: выполняется ровно
	// один раз на любом выходе после успешной регистрации.
	defer e.unregister(workerID, logger)

	bc, err := e.newBroker(e.brokerCfg, workerID, logger)
	if err != nil {
		return err
	}
	if err := bc.Connect(ctx); err != nil {
		return fmt.Errorf("connect broker: %w", err)
	}
	defer e.disconnect(bc, logger)

	e.setState(StateActive)
	logger.Info("worker active", "transport", e.brokerCfg.Transport)

	// Один независимый цикл потребления на вид. Циклы не делят
	// ничего, кроме read-only реестра handler'ов и клиента
	// координатора. Обрыв потока фатален для своего цикла,
	// остальные продолжают работать.
	var wg sync.WaitGroup
	for _, kind := range kinds {
		wg.Add(1)
		go func(kind string) {
			defer wg.Done()
			log := telemetry.WithKind(logger, kind)
			if err := bc.Consume(ctx, kind, e.envelopeHandler(kind, log)); err != nil {
				log.Error("consume loop terminated", "error", err)
			}
		}(kind)
	}

	loopsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(loopsDone)
	}()

	select {
	case <-ctx.Done():
		e.setState(StateDraining)
		logger.Info("draining: waiting for in-flight tasks")
		<-loopsDone
	case <-loopsDone:
		// Все циклы умерли от ошибок транспорта — тоже дренаж
		e.setState(StateDraining)
		logger.Warn("all consume loops terminated")
	}

	return nil
}

// envelopeHandler строит обработчик Envelope для цикла данного вида.
//
// Ровно один отчёт о результате на каждый полученный Envelope.
// Ошибки отчёта логируются, но не валят цикл — он переходит к
// следующему Envelope.
func (e *Engine) envelopeHandler(kind string, logger *slog.Logger) broker.Handler {
	return func(ctx context.Context, env *broker.Envelope) error {
		log := telemetry.WithTaskID(logger, env.TaskID.String())

		e.metrics.TasksInFlight.Inc()
		defer e.metrics.TasksInFlight.Dec()

		// In-flight task обязан отчитаться и во время дренажа,
		// когда родительский контекст уже отменён.
		rpcCtx := context.WithoutCancel(ctx)

		if err := e.coordinator.UpdateTaskStatus(rpcCtx, env.TaskID, domain.TaskStatusRunning); err != nil {
			log.Warn("failed to report running status", "error", err)
		}

		// Вид из Envelope выбирает handler; вид цикла — запасной
		// вариант для сообщений без task_kind.
		taskKind := env.Kind
		if taskKind == "" {
			taskKind = kind
		}

		outcome := e.execute(ctx, taskKind, env.Input)

		if outcome.IsError() {
			e.metrics.TasksProcessed.WithLabelValues(kind, "failed").Inc()
			log.Info("task failed", "error", outcome.Error)
		} else {
			e.metrics.TasksProcessed.WithLabelValues(kind, "completed").Inc()
			log.Info("task completed")
		}

		if err := e.coordinator.SubmitTaskResult(rpcCtx, env.TaskID, outcome.ResultData(), outcome.IsError()); err != nil {
			e.metrics.ReportFailures.Inc()
			log.Error("failed to submit task result", "error", err)
		}

		return nil
	}
}

// execute выполняет handler вида и нормализует любой его отказ —
// ошибку или panic — в Outcome. Ошибки handler'ов не покидают эту
// границу.
func (e *Engine) execute(ctx context.Context, kind string, input domain.TaskInput) (outcome domain.Outcome) {
	// Реестр заморожен после начала регистрации, читаем без блокировки
	h, ok := e.handlers[kind]
	if !ok {
		e.logger.Error("task routed to worker without handler", "kind", kind)
		return domain.Failed(fmt.Sprintf("%v: %s", ErrNoHandler, kind))
	}

	defer func() {
		if r := recover(); r != nil {
			e.metrics.HandlerPanics.Inc()
			outcome = domain.Failed(fmt.Sprintf("handler panic: %v", r))
		}
	}()

	output, err := h(ctx, input)
	if err != nil {
		return domain.Failed(err.Error())
	}
	return domain.Succeeded(output)
}

// disconnect освобождает соединение с брокером (best-effort).
func (e *Engine) disconnect(bc broker.Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := bc.Disconnect(ctx); err != nil {
		logger.Warn("broker disconnect failed", "error", err)
	}
}

// unregister снимает регистрацию у координатора (best-effort) и
// возвращает движок в unregistered.
func (e *Engine) unregister(workerID uuid.UUID, logger *slog.Logger) {
	defer e.setState(StateUnregistered)

	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := e.coordinator.UnregisterWorker(ctx, workerID); err != nil {
		logger.Error("failed to unregister worker", "error", err)
		return
	}
	logger.Info("worker unregistered")
}
