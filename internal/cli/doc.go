// Package cli реализует инструмент командной строки Conveyor.
//
// CLI — клиентская утилита публикации и просмотра task'ов через
// HTTP API координатора. Команды:
//   - task publish <kind> [--input JSON] [--wait]
//   - task get <task-id>
//   - task wait <task-id>
//
// Вывод — таблица (tabwriter) или JSON с флагом --json; данные идут
// в stdout, сообщения — в stderr, что позволяет использовать pipe:
// conveyor task get <id> --json | jq .
//
// Команды создаются через фабричные функции (NewTaskCmd), принимающие
// clientFn и outputFn — замыкания для ленивого создания клиента и
// Output после парсинга PersistentFlags.
package cli
