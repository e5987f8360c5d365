package coordinator

import "fmt"

// StatusError — не-2xx ответ координатора.
type StatusError struct {
	// Code — HTTP-статус ответа.
	Code int

	// Body — тело ответа (усечённое), обычно текст ошибки.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("coordinator returned status %d", e.Code)
	}
	return fmt.Sprintf("coordinator returned status %d: %s", e.Code, e.Body)
}
