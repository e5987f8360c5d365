package broker

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/conveyor/internal/domain"
)

// Envelope — единица работы, полученная из брокера.
//
// Связывает входные данные с идентификатором task'а (запись о нём
// хранит координатор) и видом task'а (выбирает handler).
type Envelope struct {
	// TaskID — идентификатор task'а у координатора.
	TaskID uuid.UUID `json:"task_id"`

	// Kind — вид task'а.
	Kind string `json:"task_kind"`

	// Input — входные данные task'а.
	Input domain.TaskInput `json:"input_data"`
}

// decodeEnvelope разбирает тело сообщения брокера.
func decodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.TaskID == uuid.Nil {
		return nil, fmt.Errorf("unmarshal envelope: missing task_id")
	}
	return &env, nil
}
