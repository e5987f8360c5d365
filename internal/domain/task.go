package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskInput — входные данные task: произвольный JSON-документ без схемы.
// Формат согласуется между публикующей и исполняющей сторонами.
type TaskInput = map[string]any

// TaskOutput — результат выполнения task, той же формы что и TaskInput.
type TaskOutput = map[string]any

// Task — запись о task'е в координаторе.
//
// Создаётся координатором при публикации, обновляется воркером
// через status/result вызовы. Воркер получает из брокера только
// Envelope (id, kind, input) — полную запись хранит координатор.
type Task struct {
	// ID — уникальный идентификатор task.
	ID uuid.UUID `json:"id"`

	// Kind — вид task'а; определяет, какой handler его выполняет.
	Kind string `json:"task_kind"`

	// Status — текущий статус task.
	Status TaskStatus `json:"status"`

	// InputData — входные данные, переданные при публикации.
	InputData TaskInput `json:"input_data,omitempty"`

	// ResultData — результат выполнения (или описание ошибки, если IsError).
	ResultData TaskOutput `json:"result_data,omitempty"`

	// IsError — true, если ResultData описывает ошибку handler'а.
	IsError bool `json:"is_error"`

	// CreatedAt — время создания task координатором.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt — время, когда воркер начал выполнение.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// IsFinished возвращает true, если task завершён.
func (t *Task) IsFinished() bool {
	return t.Status.IsTerminal()
}

// Duration возвращает продолжительность выполнения.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.FinishedAt == nil {
		return 0
	}
	return t.FinishedAt.Sub(*t.StartedAt)
}
