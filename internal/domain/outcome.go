package domain

import "context"

// Handler — функция, выполняющая task одного вида.
//
// Получает входные данные, возвращает результат той же формы или ошибку.
// Любая ошибка (включая panic) нормализуется движком в Outcome —
// за границу цикла потребления она не выходит.
type Handler func(ctx context.Context, input TaskInput) (TaskOutput, error)

// Outcome — нормализованный результат выполнения handler'а.
//
// Либо успех с выходными данными, либо неудача с текстовым описанием.
// Ровно один Outcome отправляется координатору на каждый полученный
// из брокера Envelope.
type Outcome struct {
	// Output — выходные данные при успехе.
	Output TaskOutput

	// Error — описание ошибки при неудаче. Пустая строка при успехе.
	Error string
}

// Succeeded создаёт успешный Outcome.
func Succeeded(output TaskOutput) Outcome {
	return Outcome{Output: output}
}

// Failed создаёт неуспешный Outcome с описанием ошибки.
func Failed(desc string) Outcome {
	return Outcome{Error: desc}
}

// IsError возвращает true, если handler завершился неудачей.
func (o Outcome) IsError() bool {
	return o.Error != ""
}

// ResultData возвращает данные для отправки координатору.
// При ошибке — документ с полем error, чтобы результат
// оставался той же формы, что и успешный.
func (o Outcome) ResultData() TaskOutput {
	if o.IsError() {
		return TaskOutput{"error": o.Error}
	}
	return o.Output
}
