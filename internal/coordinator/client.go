package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/conveyor/internal/domain"
)

// Базовые пути API координатора.
const (
	workerPath = "/workers"
	taskPath   = "/tasks"
)

// defaultTimeout — таймаут одного HTTP-вызова к координатору.
const defaultTimeout = 10 * time.Second

// Client — HTTP-клиент API координатора.
//
// Координатор — внешний сервис-реестр воркеров и task'ов; клиент
// только оборачивает его вызовы. Не-2xx ответ превращается в
// *StatusError и пробрасывается вызывающему.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент координатора.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// --- Workers ---

// registerWorkerRequest — тело запроса регистрации воркера.
type registerWorkerRequest struct {
	Name      string   `json:"name"`
	TaskKinds []string `json:"task_kinds"`
}

// registeredWorker — запись о воркере из ответа координатора.
type registeredWorker struct {
	ID uuid.UUID `json:"id"`
}

// RegisterWorker регистрирует воркера с его именем и списком
// поддерживаемых видов task'ов. Возвращает identity, присвоенный
// координатором; он действителен до успешного UnregisterWorker.
func (c *Client) RegisterWorker(ctx context.Context, name string, kinds []string) (uuid.UUID, error) {
	var worker registeredWorker
	req := registerWorkerRequest{Name: name, TaskKinds: kinds}
	if err := c.do(ctx, http.MethodPost, workerPath, req, &worker); err != nil {
		return uuid.Nil, fmt.Errorf("register worker: %w", err)
	}
	return worker.ID, nil
}

// UnregisterWorker снимает регистрацию воркера. Вызывается при
// graceful shutdown; после успеха identity недействителен.
func (c *Client) UnregisterWorker(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, workerPath+"/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("unregister worker: %w", err)
	}
	return nil
}

// --- Tasks ---

// publishTaskRequest — тело запроса публикации task'а.
type publishTaskRequest struct {
	TaskKindName string           `json:"task_kind_name"`
	InputData    domain.TaskInput `json:"input_data,omitempty"`
}

// submitResultRequest — тело запроса отправки результата.
type submitResultRequest struct {
	Data    domain.TaskOutput `json:"data"`
	IsError bool              `json:"is_error"`
}

// GetTask возвращает task по его идентификатору.
func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, taskPath+"/"+id.String(), nil, &task); err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// PublishTask создаёт новый task указанного вида.
func (c *Client) PublishTask(ctx context.Context, kind string, input domain.TaskInput) (*domain.Task, error) {
	var task domain.Task
	req := publishTaskRequest{TaskKindName: kind, InputData: input}
	if err := c.do(ctx, http.MethodPost, taskPath, req, &task); err != nil {
		return nil, fmt.Errorf("publish task: %w", err)
	}
	return &task, nil
}

// UpdateTaskStatus обновляет статус task'а.
func (c *Client) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	if err := c.do(ctx, http.MethodPut, taskPath+"/"+id.String()+"/status", status, nil); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

// SubmitTaskResult отправляет результат выполнения task'а.
// isError=true означает, что data описывает ошибку handler'а.
func (c *Client) SubmitTaskResult(ctx context.Context, id uuid.UUID, data domain.TaskOutput, isError bool) error {
	req := submitResultRequest{Data: data, IsError: isError}
	if err := c.do(ctx, http.MethodPut, taskPath+"/"+id.String()+"/result", req, nil); err != nil {
		return fmt.Errorf("submit task result: %w", err)
	}
	return nil
}

// --- HTTP helpers ---

// do выполняет запрос и декодирует JSON-ответ в result (если не nil).
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
