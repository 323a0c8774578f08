package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ekagra-app/ekagra/pkg/models"
)

// TaskStore provides task-related database operations. Every lookup is
// scoped to an owner; tasks are never visible across accounts.
type TaskStore struct {
	store *Store
}

// NewTaskStore creates a new task store.
func NewTaskStore(store *Store) *TaskStore {
	return &TaskStore{store: store}
}

// Create inserts a new task.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	return s.store.DB.WithContext(ctx).Create(task).Error
}

// FindOwned returns the task with the given ID belonging to ownerID, or
// nil if none.
func (s *TaskStore) FindOwned(ctx context.Context, id, ownerID string) (*models.Task, error) {
	var task models.Task
	err := s.store.DB.WithContext(ctx).
		First(&task, "id = ? AND owner_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns the owner's tasks, newest first, narrowed by filter.
func (s *TaskStore) List(ctx context.Context, ownerID string, filter models.TaskFilter) ([]models.Task, error) {
	q := s.store.DB.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}

	var tasks []models.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByIDs returns the subset of ids that exist for the owner, keyed by
// task ID. Used to resolve history task views.
func (s *TaskStore) FindByIDs(ctx context.Context, ownerID string, ids []string) (map[string]models.Task, error) {
	if len(ids) == 0 {
		return map[string]models.Task{}, nil
	}

	var tasks []models.Task
	err := s.store.DB.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return byID, nil
}

// Update applies the given column changes to an owned task and returns
// the updated row, or nil if the task does not exist.
func (s *TaskStore) Update(ctx context.Context, id, ownerID string, changes map[string]interface{}) (*models.Task, error) {
	res := s.store.DB.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(changes)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindOwned(ctx, id, ownerID)
}

// UpdateStatus transitions an owned task to the given status. Moving to
// completed stamps completedAt; moving away clears it.
func (s *TaskStore) UpdateStatus(ctx context.Context, id, ownerID string, status models.TaskStatus, now time.Time) (*models.Task, error) {
	changes := map[string]interface{}{
		"status":       status,
		"completed_at": nil,
	}
	if status == models.StatusCompleted {
		changes["completed_at"] = now
	}
	return s.Update(ctx, id, ownerID, changes)
}

// Delete removes an owned task. Returns false if the task does not exist.
// Sessions referencing the task are left in place; their weak reference
// simply stops resolving.
func (s *TaskStore) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	res := s.store.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Task{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
