package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ekagra-app/ekagra/pkg/models"
)

// TimerStore provides timer-session database operations. Sessions are
// append-only from the engine's perspective: created once, ended once,
// never deleted.
type TimerStore struct {
	store *Store
}

// NewTimerStore creates a new timer store.
func NewTimerStore(store *Store) *TimerStore {
	return &TimerStore{store: store}
}

// Create inserts a new timer session.
func (s *TimerStore) Create(ctx context.Context, timer *models.Timer) error {
	return s.store.DB.WithContext(ctx).Create(timer).Error
}

// FindOwned returns the session with the given ID belonging to ownerID,
// or nil if none.
func (s *TimerStore) FindOwned(ctx context.Context, id, ownerID string) (*models.Timer, error) {
	var timer models.Timer
	err := s.store.DB.WithContext(ctx).
		First(&timer, "id = ? AND owner_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &timer, nil
}

// MarkEnded flips an in-progress session to completed and, for a pomodoro
// linked to a task, increments that task's completed counter in the same
// transaction.
//
// The WHERE clause carries the completed = false guard: concurrent end
// requests race on it, exactly one observes an affected row, and the
// loser gets a nil session back (missing and already-ended are
// indistinguishable here). The guard is what prevents a double increment.
func (s *TimerStore) MarkEnded(ctx context.Context, id, ownerID string, now time.Time) (*models.Timer, error) {
	var ended *models.Timer

	err := s.store.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Timer{}).
			Where("id = ? AND owner_id = ? AND completed = ?", id, ownerID, false).
			Updates(map[string]interface{}{
				"ended_at":  now,
				"completed": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var timer models.Timer
		if err := tx.First(&timer, "id = ?", id).Error; err != nil {
			return err
		}

		if timer.Kind == models.KindPomodoro && timer.TaskID != nil {
			err := tx.Model(&models.Task{}).
				Where("id = ?", *timer.TaskID).
				UpdateColumn("completed_pomodoros", gorm.Expr("completed_pomodoros + 1")).Error
			if err != nil {
				return err
			}
		}

		ended = &timer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

// List returns the owner's sessions ordered by start time descending.
// Filters are conjunctive; range bounds are inclusive on started_at.
func (s *TimerStore) List(ctx context.Context, ownerID string, filter models.HistoryFilter) ([]models.Timer, error) {
	q := s.store.DB.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.Kind != nil {
		q = q.Where("kind = ?", *filter.Kind)
	}
	if filter.Start != nil {
		q = q.Where("started_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("started_at <= ?", *filter.End)
	}

	var timers []models.Timer
	if err := q.Order("started_at DESC").Find(&timers).Error; err != nil {
		return nil, err
	}
	return timers, nil
}

// Stats aggregates completed sessions by kind within the optional range.
// Minutes sum the planned duration, not elapsed time.
func (s *TimerStore) Stats(ctx context.Context, ownerID string, start, end *time.Time) ([]models.KindStats, error) {
	q := s.store.DB.WithContext(ctx).
		Model(&models.Timer{}).
		Select("kind, COUNT(*) AS total_sessions, SUM(duration_minutes) AS total_minutes, AVG(duration_minutes) AS average_duration").
		Where("owner_id = ? AND completed = ?", ownerID, true)
	if start != nil {
		q = q.Where("started_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("started_at <= ?", *end)
	}

	var stats []models.KindStats
	if err := q.Group("kind").Order("kind ASC").Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
