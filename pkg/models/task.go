package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskPriority is the priority of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the workflow status of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a todo item that pomodoro sessions can link to.
type Task struct {
	ID      string `gorm:"primaryKey;type:text" json:"id"`
	OwnerID string `gorm:"index:idx_tasks_owner_status,priority:1;not null" json:"user,omitempty"`

	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description,omitempty"`
	Category    string       `gorm:"not null" json:"category"`
	Priority    TaskPriority `gorm:"type:text;default:'medium';check:priority IN ('low', 'medium', 'high')" json:"priority"`
	Status      TaskStatus   `gorm:"type:text;default:'todo';check:status IN ('todo', 'in-progress', 'completed');index:idx_tasks_owner_status,priority:2" json:"status"`

	EstimatedPomodoros int `gorm:"default:1" json:"estimatedPomodoros"`
	CompletedPomodoros int `gorm:"default:0" json:"completedPomodoros"`

	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }

// BeforeCreate hook to ensure ID and defaults are set.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.EstimatedPomodoros == 0 {
		t.EstimatedPomodoros = 1
	}
	return nil
}

// TaskView is the lightweight task projection attached to history rows.
type TaskView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	Status   TaskStatus
	Category string
	Priority TaskPriority
}
