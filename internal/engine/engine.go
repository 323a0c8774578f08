// Package engine implements the timer session lifecycle: start, end,
// history and stats. A session has exactly two states, in-progress and
// completed, and exactly one transition between them.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ekagra-app/ekagra/internal/db"
	"github.com/ekagra-app/ekagra/pkg/models"
)

// Engine enforces the session state machine and its side effects.
type Engine struct {
	timers *db.TimerStore
	tasks  *db.TaskStore
	log    zerolog.Logger
	now    func() time.Time
}

// New creates an engine over the given stores.
func New(timers *db.TimerStore, tasks *db.TaskStore, log zerolog.Logger) *Engine {
	return &Engine{
		timers: timers,
		tasks:  tasks,
		log:    log.With().Str("component", "engine").Logger(),
		now:    time.Now,
	}
}

// StartSession validates input, resolves the optional task reference and
// persists a new in-progress session.
//
// The engine does not enforce one active session per owner; that remains
// the client's responsibility.
func (e *Engine) StartSession(ctx context.Context, ownerID string, kind models.TimerKind, durationMinutes int, taskID *string) (*models.Timer, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown timer type %q", ErrInvalidInput, kind)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be at least 1 minute", ErrInvalidInput)
	}

	if taskID != nil {
		task, err := e.tasks.FindOwned(ctx, *taskID, ownerID)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, &NotFoundError{Entity: "task", Reason: ReasonMissing}
		}
	}

	timer := &models.Timer{
		OwnerID:         ownerID,
		TaskID:          taskID,
		Kind:            kind,
		StartedAt:       e.now(),
		DurationMinutes: durationMinutes,
	}
	if err := e.timers.Create(ctx, timer); err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("timerId", timer.ID).
		Str("type", string(kind)).
		Int("duration", durationMinutes).
		Msg("session started")
	return timer, nil
}

// EndSession transitions an in-progress session to completed. The store
// guards the transition with a completed = false compare-and-swap and
// increments the linked task's pomodoro counter in the same transaction,
// so a session can never produce two increments.
//
// A missing session and an already-ended one collapse into ErrNotFound;
// the internal reason is kept for logs only.
func (e *Engine) EndSession(ctx context.Context, ownerID, id string) (*models.Timer, error) {
	ended, err := e.timers.MarkEnded(ctx, id, ownerID, e.now())
	if err != nil {
		return nil, err
	}
	if ended == nil {
		reason := ReasonMissing
		if existing, ferr := e.timers.FindOwned(ctx, id, ownerID); ferr == nil && existing != nil {
			reason = ReasonAlreadyEnded
		}
		e.log.Debug().Str("timerId", id).Str("reason", reason).Msg("end rejected")
		return nil, &NotFoundError{Entity: "timer", Reason: reason}
	}

	e.log.Debug().
		Str("timerId", ended.ID).
		Str("type", string(ended.Kind)).
		Msg("session ended")
	return ended, nil
}

// QueryHistory returns the owner's sessions newest first, each carrying a
// denormalized view of its linked task when the task still resolves.
func (e *Engine) QueryHistory(ctx context.Context, ownerID string, filter models.HistoryFilter) ([]models.Timer, error) {
	timers, err := e.timers.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(timers))
	for _, t := range timers {
		if t.TaskID != nil {
			ids = append(ids, *t.TaskID)
		}
	}

	tasks, err := e.tasks.FindByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}
	for i := range timers {
		if timers[i].TaskID == nil {
			continue
		}
		if task, ok := tasks[*timers[i].TaskID]; ok {
			timers[i].TaskView = &models.TaskView{
				ID:       task.ID,
				Title:    task.Title,
				Category: task.Category,
			}
		}
	}
	return timers, nil
}

// ComputeStats aggregates the owner's completed sessions by kind.
// In-progress sessions never count.
func (e *Engine) ComputeStats(ctx context.Context, ownerID string, start, end *time.Time) ([]models.KindStats, error) {
	return e.timers.Stats(ctx, ownerID, start, end)
}
