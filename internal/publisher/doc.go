// Package publisher — клиент публикации task'ов.
//
// Тонкая обёртка над API координатора: publish + опрос до завершения.
// Используется приложениями, которым нужен результат task'а, и CLI.
package publisher
