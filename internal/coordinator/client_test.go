package coordinator

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/conveyor/internal/domain"
)

func TestRegisterWorker(t *testing.T) {
	workerID := uuid.New()
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/workers" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s, want application/json", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": workerID.String(), "name": gotBody["name"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	id, err := client.RegisterWorker(t.Context(), "test-worker", []string{"echo", "resize"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != workerID {
		t.Errorf("worker id = %s, want %s", id, workerID)
	}
	if gotBody["name"] != "test-worker" {
		t.Errorf("name = %v, want test-worker", gotBody["name"])
	}
	kinds, _ := gotBody["task_kinds"].([]any)
	if len(kinds) != 2 || kinds[0] != "echo" || kinds[1] != "resize" {
		t.Errorf("task_kinds = %v, want [echo resize]", gotBody["task_kinds"])
	}
}

func TestUnregisterWorker(t *testing.T) {
	workerID := uuid.New()
	called := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/workers/"+workerID.String() {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.UnregisterWorker(t.Context(), workerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("server was not called")
	}
}

func TestGetTask(t *testing.T) {
	taskID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/"+taskID.String() {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":          taskID.String(),
			"task_kind":   "echo",
			"status":      "completed",
			"result_data": map[string]any{"x": 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	task, err := client.GetTask(t.Context(), taskID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != taskID {
		t.Errorf("task id = %s, want %s", task.ID, taskID)
	}
	if task.Status != domain.TaskStatusCompleted {
		t.Errorf("status = %s, want completed", task.Status)
	}
	if !task.IsFinished() {
		t.Error("task should be finished")
	}
	if task.ResultData["x"] != float64(1) {
		t.Errorf("result x = %v, want 1", task.ResultData["x"])
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	taskID := uuid.New()
	var gotStatus string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tasks/"+taskID.String()+"/status" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotStatus)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.UpdateTaskStatus(t.Context(), taskID, domain.TaskStatusRunning); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != "running" {
		t.Errorf("status body = %q, want %q", gotStatus, "running")
	}
}

func TestSubmitTaskResult(t *testing.T) {
	taskID := uuid.New()
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tasks/"+taskID.String()+"/result" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SubmitTaskResult(t.Context(), taskID, domain.TaskOutput{"error": "boom"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["is_error"] != true {
		t.Errorf("is_error = %v, want true", gotBody["is_error"])
	}
	data, _ := gotBody["data"].(map[string]any)
	if data["error"] != "boom" {
		t.Errorf("data = %v, want error=boom", gotBody["data"])
	}
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "task not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetTask(t.Context(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", statusErr.Code)
	}
}

func TestConnectionRefused(t *testing.T) {
	// Закрытый сервер — соединение отклоняется
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetTask(t.Context(), uuid.New()); err == nil {
		t.Fatal("expected connection error")
	}
}
