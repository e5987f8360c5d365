package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shaiso/conveyor/internal/domain"
)

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        os.Stdout,
		errW:     os.Stderr,
	}
}

// Task выводит один task: таблицу полей или JSON в зависимости от режима.
func (o *Output) Task(task *domain.Task) {
	if o.jsonMode {
		o.JSON(task)
		return
	}

	rows := [][]string{
		{"ID", task.ID.String()},
		{"KIND", task.Kind},
		{"STATUS", string(task.Status)},
		{"CREATED", task.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	if task.IsFinished() {
		rows = append(rows, []string{"DURATION", task.Duration().String()})
	}
	if len(task.ResultData) > 0 {
		result, _ := json.Marshal(task.ResultData)
		label := "RESULT"
		if task.IsError {
			label = "ERROR"
		}
		rows = append(rows, []string{label, string(result)})
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}
