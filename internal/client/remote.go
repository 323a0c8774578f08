package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ekagra-app/ekagra/pkg/models"
)

// Remote talks to the ekagra server. No timeouts or retries: failures
// surface immediately, matching the rest of the system.
type Remote struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewRemote creates a REST-backed session service.
func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
	}
}

// envelope mirrors the server's response shape.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (r *Remote) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if env.Status != "success" {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return fmt.Errorf("server: %s", msg)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Start implements SessionService.
func (r *Remote) Start(ctx context.Context, kind models.TimerKind, durationMinutes int, taskID *string) (*models.Timer, error) {
	req := map[string]interface{}{
		"type":     kind,
		"duration": durationMinutes,
	}
	if taskID != nil {
		req["task"] = *taskID
	}

	var out struct {
		Timer *models.Timer `json:"timer"`
	}
	if err := r.do(ctx, http.MethodPost, "/api/timer/start", req, &out); err != nil {
		return nil, err
	}
	return out.Timer, nil
}

// End implements SessionService.
func (r *Remote) End(ctx context.Context, id string) (*models.Timer, error) {
	var out struct {
		Timer *models.Timer `json:"timer"`
	}
	if err := r.do(ctx, http.MethodPost, "/api/timer/end/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Timer, nil
}

// History implements SessionService.
func (r *Remote) History(ctx context.Context, filter models.HistoryFilter) ([]models.Timer, error) {
	params := url.Values{}
	if filter.Kind != nil {
		params.Set("type", string(*filter.Kind))
	}
	if filter.Start != nil {
		params.Set("startDate", filter.Start.Format(time.RFC3339))
	}
	if filter.End != nil {
		params.Set("endDate", filter.End.Format(time.RFC3339))
	}

	path := "/api/timer/history"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out struct {
		Timers []models.Timer `json:"timers"`
	}
	if err := r.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Timers, nil
}

// Stats implements SessionService.
func (r *Remote) Stats(ctx context.Context, start, end *time.Time) ([]models.KindStats, error) {
	params := url.Values{}
	if start != nil {
		params.Set("startDate", start.Format(time.RFC3339))
	}
	if end != nil {
		params.Set("endDate", end.Format(time.RFC3339))
	}

	path := "/api/timer/stats"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out struct {
		Stats []models.KindStats `json:"stats"`
	}
	if err := r.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Stats, nil
}

// Register creates an account and returns the issued token.
func (r *Remote) Register(ctx context.Context, email, password, name string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	req := map[string]string{"email": email, "password": password, "name": name}
	if err := r.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Login authenticates and returns the issued token.
func (r *Remote) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	req := map[string]string{"email": email, "password": password}
	if err := r.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// CreateTask creates a task for the authenticated user.
func (r *Remote) CreateTask(ctx context.Context, title, category string, priority models.TaskPriority, estimated int) (*models.Task, error) {
	req := map[string]interface{}{
		"title":    title,
		"category": category,
	}
	if priority != "" {
		req["priority"] = priority
	}
	if estimated > 0 {
		req["estimatedPomodoros"] = estimated
	}

	var out struct {
		Task *models.Task `json:"task"`
	}
	if err := r.do(ctx, http.MethodPost, "/api/tasks/", req, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

// ListTasks lists the authenticated user's tasks.
func (r *Remote) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", string(filter.Status))
	}
	if filter.Category != "" {
		params.Set("category", filter.Category)
	}
	if filter.Priority != "" {
		params.Set("priority", string(filter.Priority))
	}

	path := "/api/tasks/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := r.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// CompleteTask transitions a task to completed.
func (r *Remote) CompleteTask(ctx context.Context, id string) (*models.Task, error) {
	var out struct {
		Task *models.Task `json:"task"`
	}
	req := map[string]string{"status": string(models.StatusCompleted)}
	if err := r.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id)+"/status", req, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}
