package broker

import "errors"

// Ошибки брокера.
var (
	// ErrUnsupportedScheme — схема URL брокера не поддерживается.
	// Ошибка конфигурации: обнаруживается до любого сетевого I/O.
	ErrUnsupportedScheme = errors.New("unsupported broker url scheme")

	// ErrNotConnected — операция требует установленного соединения.
	ErrNotConnected = errors.New("broker is not connected")

	// ErrStreamClosed — поток доставки закрылся со стороны транспорта.
	// Фатально для цикла потребления, вызвавшего Consume, но не для
	// остальных циклов и не для процесса.
	ErrStreamClosed = errors.New("delivery stream closed")
)
