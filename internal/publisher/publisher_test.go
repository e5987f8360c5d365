package publisher

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/conveyor/internal/domain"
)

func TestPublish(t *testing.T) {
	taskID := uuid.New()
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":        taskID.String(),
			"task_kind": "echo",
			"status":    "pending",
		})
	}))
	defer server.Close()

	client := New(Config{CoordinatorURL: server.URL, Logger: discardLogger()})
	task, err := client.Publish(t.Context(), "echo", domain.TaskInput{"x": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != taskID {
		t.Errorf("task id = %s, want %s", task.ID, taskID)
	}
	if gotBody["task_kind_name"] != "echo" {
		t.Errorf("task_kind_name = %v, want echo", gotBody["task_kind_name"])
	}
}

func TestWait_PollsUntilFinished(t *testing.T) {
	taskID := uuid.New()

	var mu sync.Mutex
	polls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		polls++
		n := polls
		mu.Unlock()

		// Первые два опроса — ещё running, третий — завершён
		status := "running"
		if n >= 3 {
			status = "completed"
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":          taskID.String(),
			"task_kind":   "echo",
			"status":      status,
			"result_data": map[string]any{"done": true},
		})
	}))
	defer server.Close()

	client := New(Config{
		CoordinatorURL: server.URL,
		PollInterval:   10 * time.Millisecond,
		Logger:         discardLogger(),
	})

	task, err := client.Wait(t.Context(), taskID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != domain.TaskStatusCompleted {
		t.Errorf("status = %s, want completed", task.Status)
	}
	if task.ResultData["done"] != true {
		t.Errorf("result = %v, want done=true", task.ResultData)
	}

	mu.Lock()
	defer mu.Unlock()
	if polls < 3 {
		t.Errorf("polls = %d, want at least 3", polls)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":        uuid.New().String(),
			"task_kind": "echo",
			"status":    "running",
		})
	}))
	defer server.Close()

	client := New(Config{
		CoordinatorURL: server.URL,
		PollInterval:   10 * time.Millisecond,
		Logger:         discardLogger(),
	})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Wait(ctx, uuid.New()); err == nil {
		t.Fatal("expected error after context cancellation")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
