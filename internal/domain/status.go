package domain

// TaskStatus — статус выполнения task.
//
// Жизненный цикл:
//
//	pending → queued → running → completed
//	                           ↘ failed
//	         (или) → cancelled (из pending или queued)
//
// Строковые значения совпадают с wire-форматом координатора,
// поэтому нижний регистр.
type TaskStatus string

const (
	// TaskStatusPending — task создан, но ещё не попал в очередь брокера.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusQueued — task опубликован в брокер, ожидает воркера.
	TaskStatusQueued TaskStatus = "queued"

	// TaskStatusRunning — task выполняется воркером.
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusCompleted — task успешно завершён.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed — task завершился с ошибкой.
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusCancelled — task отменён до выполнения.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// IsTerminal возвращает true, если статус финальный (task завершён).
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseTaskStatus парсит строку в TaskStatus.
// Неизвестное значение трактуется как pending.
func ParseTaskStatus(s string) TaskStatus {
	switch s {
	case "queued":
		return TaskStatusQueued
	case "running":
		return TaskStatusRunning
	case "completed":
		return TaskStatusCompleted
	case "failed":
		return TaskStatusFailed
	case "cancelled":
		return TaskStatusCancelled
	default:
		return TaskStatusPending
	}
}
