// Package models defines the domain types shared by the server, the
// stores and the client.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimerKind is the kind of a timer session.
type TimerKind string

const (
	KindPomodoro   TimerKind = "pomodoro"
	KindShortBreak TimerKind = "shortBreak"
	KindLongBreak  TimerKind = "longBreak"
)

// Valid reports whether k is one of the fixed timer kinds.
func (k TimerKind) Valid() bool {
	switch k {
	case KindPomodoro, KindShortBreak, KindLongBreak:
		return true
	}
	return false
}

// Timer represents one timer session with a fixed planned duration.
// A timer is created by the start operation, mutated exactly once by the
// end operation and never deleted.
type Timer struct {
	ID      string  `gorm:"primaryKey;type:text" json:"id"`
	OwnerID string  `gorm:"index:idx_timers_owner_started,priority:1;index:idx_timers_owner_kind_completed,priority:1;not null" json:"user,omitempty"`
	TaskID  *string `gorm:"index" json:"task,omitempty"`

	Kind            TimerKind  `gorm:"type:text;check:kind IN ('pomodoro', 'shortBreak', 'longBreak');index:idx_timers_owner_kind_completed,priority:2;not null" json:"type"`
	StartedAt       time.Time  `gorm:"index:idx_timers_owner_started,priority:2,sort:desc;not null" json:"startTime"`
	EndedAt         *time.Time `json:"endTime,omitempty"`
	DurationMinutes int        `gorm:"not null" json:"duration"`
	Completed       bool       `gorm:"default:false;index:idx_timers_owner_kind_completed,priority:3" json:"completed"`

	// Interruption fields exist in the schema and wire shape but are not
	// written by any operation.
	Interrupted        bool    `gorm:"default:false" json:"interrupted"`
	InterruptionReason *string `json:"interruptionReason,omitempty"`

	// TaskView is a denormalized view of the linked task, resolved at
	// query time for history responses. Never persisted.
	TaskView *TaskView `gorm:"-" json:"taskDetails,omitempty"`
}

func (Timer) TableName() string { return "timers" }

// BeforeCreate hook to ensure ID and start time are set.
func (t *Timer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = time.Now()
	}
	return nil
}

// HistoryFilter narrows a timer history query. Filters are conjunctive
// and range bounds apply inclusively to StartedAt.
type HistoryFilter struct {
	Kind  *TimerKind
	Start *time.Time
	End   *time.Time
}

// KindStats aggregates completed sessions of one kind. TotalMinutes sums
// the planned duration, not elapsed wall-clock time.
type KindStats struct {
	Kind            TimerKind `json:"_id"`
	TotalSessions   int       `json:"totalSessions"`
	TotalMinutes    int       `json:"totalMinutes"`
	AverageDuration float64   `json:"averageDuration"`
}
