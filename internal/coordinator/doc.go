// Package coordinator реализует HTTP-клиент API координатора —
// внешнего сервиса-реестра воркеров и task'ов.
//
// Операции:
//   - POST   /workers            — регистрация воркера (имя + виды task'ов)
//   - DELETE /workers/{id}       — снятие регистрации
//   - GET    /tasks/{id}         — чтение task'а
//   - POST   /tasks              — публикация task'а
//   - PUT    /tasks/{id}/status  — обновление статуса
//   - PUT    /tasks/{id}/result  — отправка результата ({data, is_error})
//
// Семантика этих операций принадлежит координатору; пакет только
// оборачивает вызовы и нормализует не-2xx ответы в *StatusError.
package coordinator
