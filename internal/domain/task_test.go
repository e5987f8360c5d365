package domain

import (
	"testing"
	"time"
)

func TestTaskStatus_IsTerminal(t *testing.T) {
	terminal := []TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	active := []TaskStatus{TaskStatusPending, TaskStatusQueued, TaskStatusRunning}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestParseTaskStatus(t *testing.T) {
	if got := ParseTaskStatus("completed"); got != TaskStatusCompleted {
		t.Errorf("ParseTaskStatus(completed) = %s", got)
	}
	// Неизвестный статус трактуется как pending
	if got := ParseTaskStatus("definitely-not-a-status"); got != TaskStatusPending {
		t.Errorf("ParseTaskStatus(unknown) = %s, want pending", got)
	}
}

func TestOutcome(t *testing.T) {
	ok := Succeeded(TaskOutput{"x": 1})
	if ok.IsError() {
		t.Error("Succeeded should not be an error")
	}
	if ok.ResultData()["x"] != 1 {
		t.Errorf("result = %v, want x=1", ok.ResultData())
	}

	bad := Failed("bad input")
	if !bad.IsError() {
		t.Error("Failed should be an error")
	}
	// Ошибка отправляется той же формы, что и успешный результат
	if bad.ResultData()["error"] != "bad input" {
		t.Errorf("result = %v, want error=bad input", bad.ResultData())
	}
}

func TestTask_Duration(t *testing.T) {
	task := &Task{}
	if task.Duration() != 0 {
		t.Error("duration without timestamps should be 0")
	}

	start := time.Now()
	finish := start.Add(3 * time.Second)
	task.StartedAt = &start
	task.FinishedAt = &finish
	if task.Duration() != 3*time.Second {
		t.Errorf("duration = %s, want 3s", task.Duration())
	}
}
