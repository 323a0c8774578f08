package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/ekagra-app/ekagra/pkg/models"
)

type taskRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Priority           string     `json:"priority"`
	EstimatedPomodoros int        `json:"estimatedPomodoros"`
	DueDate            *time.Time `json:"dueDate"`
}

func (s *Service) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Task title is required")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "Task category is required")
		return
	}
	if req.Priority != "" && !models.TaskPriority(req.Priority).Valid() {
		writeError(w, http.StatusBadRequest, "Invalid priority")
		return
	}
	if req.EstimatedPomodoros < 0 {
		writeError(w, http.StatusBadRequest, "estimatedPomodoros must be positive")
		return
	}

	task := &models.Task{
		OwnerID:            ownerFromContext(r.Context()),
		Title:              req.Title,
		Description:        strings.TrimSpace(req.Description),
		Category:           req.Category,
		Priority:           models.TaskPriority(req.Priority),
		EstimatedPomodoros: req.EstimatedPomodoros,
		DueDate:            req.DueDate,
	}
	if err := s.tasks.Create(r.Context(), task); err != nil {
		writeEngineError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{"task": task})
}

func (s *Service) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := models.TaskFilter{
		Status:   models.TaskStatus(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
		Priority: models.TaskPriority(r.URL.Query().Get("priority")),
	}

	tasks, err := s.tasks.List(r.Context(), ownerFromContext(r.Context()), filter)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (s *Service) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.FindOwned(r.Context(), chi.URLParam(r, "id"), ownerFromContext(r.Context()))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"task": task})
}

// taskUpdateRequest uses pointers so absent fields are distinguishable
// from empty ones: description can be cleared with "" and dueDate with an
// explicit null. Title and category stay required.
type taskUpdateRequest struct {
	Title              *string         `json:"title"`
	Description        *string         `json:"description"`
	Category           *string         `json:"category"`
	Priority           *string         `json:"priority"`
	EstimatedPomodoros *int            `json:"estimatedPomodoros"`
	DueDate            json.RawMessage `json:"dueDate"`
}

func (s *Service) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			writeError(w, http.StatusBadRequest, "Task title is required")
			return
		}
		changes["title"] = title
	}
	if req.Description != nil {
		changes["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			writeError(w, http.StatusBadRequest, "Task category is required")
			return
		}
		changes["category"] = category
	}
	if req.Priority != nil {
		if !models.TaskPriority(*req.Priority).Valid() {
			writeError(w, http.StatusBadRequest, "Invalid priority")
			return
		}
		changes["priority"] = *req.Priority
	}
	if req.EstimatedPomodoros != nil {
		if *req.EstimatedPomodoros <= 0 {
			writeError(w, http.StatusBadRequest, "estimatedPomodoros must be positive")
			return
		}
		changes["estimated_pomodoros"] = *req.EstimatedPomodoros
	}
	if len(req.DueDate) > 0 {
		if string(req.DueDate) == "null" {
			changes["due_date"] = nil
		} else {
			var due time.Time
			if err := json.Unmarshal(req.DueDate, &due); err != nil {
				writeError(w, http.StatusBadRequest, "invalid dueDate")
				return
			}
			changes["due_date"] = due
		}
	}
	if len(changes) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	task, err := s.tasks.Update(r.Context(), chi.URLParam(r, "id"), ownerFromContext(r.Context()), changes)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"task": task})
}

func (s *Service) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.tasks.Delete(r.Context(), chi.URLParam(r, "id"), ownerFromContext(r.Context()))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	// Explicit null keeps the data key in the envelope.
	writeSuccess(w, http.StatusOK, json.RawMessage("null"))
}

func (s *Service) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := models.TaskStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	task, err := s.tasks.UpdateStatus(r.Context(), chi.URLParam(r, "id"), ownerFromContext(r.Context()), status, time.Now())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"task": task})
}
