package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus-метрики воркера.
type Metrics struct {
	// TasksProcessed — счётчик обработанных task'ов по виду и исходу.
	// outcome: "completed" или "failed".
	TasksProcessed *prometheus.CounterVec

	// TasksInFlight — количество task'ов в обработке прямо сейчас.
	TasksInFlight prometheus.Gauge

	// HandlerPanics — счётчик panic'ов в handler'ах.
	HandlerPanics prometheus.Counter

	// ReportFailures — счётчик неудавшихся отправок результата
	// координатору.
	ReportFailures prometheus.Counter
}

// NewMetrics создаёт и регистрирует метрики воркера.
// При reg == nil метрики создаются без регистрации (для тестов).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TasksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_tasks_processed_total",
			Help: "Number of task envelopes processed, by kind and outcome.",
		}, []string{"kind", "outcome"}),

		TasksInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "conveyor_tasks_in_flight",
			Help: "Number of task envelopes currently being executed.",
		}),

		HandlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "conveyor_handler_panics_total",
			Help: "Number of recovered panics raised by task handlers.",
		}),

		ReportFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "conveyor_result_report_failures_total",
			Help: "Number of task results that could not be reported to the coordinator.",
		}),
	}
}
