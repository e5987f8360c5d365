// Package broker предоставляет абстракцию клиента брокера сообщений.
//
// Структура:
//   - broker.go   — интерфейс Client, Config, фабрика по схеме URL
//   - envelope.go — Envelope: единица работы из брокера
//   - rabbit.go   — транспорт RabbitMQ (exchange/queue, ack-after-process)
//   - redis.go    — транспорт Redis pub/sub (без подтверждений)
//
// Транспорт выбирается по схеме URL брокера:
//   - amqp, amqps   → RabbitMQ
//   - redis, rediss → Redis
//
// Неподдерживаемая схема — ошибка конфигурации, возвращаемая из
// ParseConfig до любого сетевого I/O.
//
// Маршрутизация едина для всех транспортов: работа раздаётся по виду
// task'а (exchange или pub/sub канал, именованные по виду), а адрес
// конкретного воркера выводится из его identity (очередь, именованная
// по worker id). Движок об этом не знает — он только вызывает Consume
// по одному разу на вид.
package broker
