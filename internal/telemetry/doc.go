// Package telemetry обеспечивает наблюдаемость воркера.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Все бинарники используют единый формат логирования;
// воркер экспортирует метрики на /metrics endpoint.
package telemetry
