package engine

import "errors"

// Ошибки движка.
var (
	// ErrRegistrationClosed — попытка зарегистрировать handler после
	// начала регистрации у координатора. Набор видов заморожен.
	ErrRegistrationClosed = errors.New("handler registration is closed: worker registration has begun")

	// ErrDuplicateKind — handler для этого вида уже зарегистрирован.
	ErrDuplicateKind = errors.New("handler already registered for kind")

	// ErrNilHandler — попытка зарегистрировать nil handler.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrNoHandlers — запуск без единого зарегистрированного handler'а.
	ErrNoHandlers = errors.New("no handlers registered")

	// ErrAlreadyRunning — повторный запуск движка.
	ErrAlreadyRunning = errors.New("engine is already running")

	// ErrNoHandler — координатор направил task вида, который воркер
	// не объявлял. Ошибка конфигурации/состояния, не теряется молча.
	ErrNoHandler = errors.New("no handler registered for task kind")
)
