package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekagra-app/ekagra/pkg/models"
)

func TestTaskStore_CreateDefaults(t *testing.T) {
	store := testStore(t)
	ownerID := createTestUser(t, store, "tasks@example.com")
	tasks := NewTaskStore(store)

	task := &models.Task{OwnerID: ownerID, Title: "Plan sprint"}
	require.NoError(t, tasks.Create(context.Background(), task))

	assert.NotEmpty(t, task.ID)
	found, err := tasks.FindOwned(context.Background(), task.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.StatusTodo, found.Status)
	assert.Equal(t, 1, found.EstimatedPomodoros)
	assert.Equal(t, 0, found.CompletedPomodoros)
}

func TestTaskStore_FindOwnedWrongOwner(t *testing.T) {
	store := testStore(t)
	ownerID := createTestUser(t, store, "a@example.com")
	otherID := createTestUser(t, store, "b@example.com")
	task := createTestTask(t, store, ownerID, "Private task")
	tasks := NewTaskStore(store)

	found, err := tasks.FindOwned(context.Background(), task.ID, otherID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTaskStore_ListWithFilters(t *testing.T) {
	store := testStore(t)
	ownerID := createTestUser(t, store, "listtasks@example.com")
	tasks := NewTaskStore(store)
	ctx := context.Background()

	seed := []models.Task{
		{OwnerID: ownerID, Title: "Work thing", Category: "work", Priority: models.PriorityHigh},
		{OwnerID: ownerID, Title: "Home thing", Category: "home", Priority: models.PriorityLow},
		{OwnerID: ownerID, Title: "Another work thing", Category: "work", Priority: models.PriorityLow},
	}
	for i := range seed {
		require.NoError(t, tasks.Create(ctx, &seed[i]))
	}

	all, err := tasks.List(ctx, ownerID, models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	work, err := tasks.List(ctx, ownerID, models.TaskFilter{Category: "work"})
	require.NoError(t, err)
	assert.Len(t, work, 2)

	high, err := tasks.List(ctx, ownerID, models.TaskFilter{Priority: models.PriorityHigh})
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "Work thing", high[0].Title)
}

func TestTaskStore_FindByIDs(t *testing.T) {
	store := testStore(t)
	ownerID := createTestUser(t, store, "byids@example.com")
	otherID := createTestUser(t, store, "byids-other@example.com")
	tasks := NewTaskStore(store)
	ctx := context.Background()

	mine := createTestTask(t, store, ownerID, "Mine")
	theirs := createTestTask(t, store, otherID, "Theirs")

	byID, err := tasks.FindByIDs(ctx, ownerID, []string{mine.ID, theirs.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Mine", byID[mine.ID].Title)

	empty, err := tasks.FindByIDs(ctx, ownerID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTaskStore_UpdateMissingReturnsNil(t *testing.T) {
	store := testStore(t)
	ownerID := createTestUser(t, store, "upd@example.com")
	tasks := NewTaskStore(store)

	updated, err := tasks.Update(context.Background(), "no-such-task", ownerID,
		map[string]interface{}{"title": "x"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestTaskStore_UpdateStatusStampsCompletedAt(t *testing.T) {
	store := testStore(t)
	ownerID := createTestUser(t, store, "status@example.com")
	task := createTestTask(t, store, ownerID, "Finish draft")
	tasks := NewTaskStore(store)
	ctx := context.Background()

	now := time.Now()
	updated, err := tasks.UpdateStatus(ctx, task.ID, ownerID, models.StatusCompleted, now)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	// Reopening clears the stamp.
	updated, err = tasks.UpdateStatus(ctx, task.ID, ownerID, models.StatusInProgress, now)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Nil(t, updated.CompletedAt)
}

func TestTaskStore_DeleteLeavesSessions(t *testing.T) {
	store := testStore(t)
	ownerID := createTestUser(t, store, "del@example.com")
	task := createTestTask(t, store, ownerID, "Doomed")
	tasks := NewTaskStore(store)
	timers := NewTimerStore(store)
	ctx := context.Background()

	timer := &models.Timer{
		OwnerID: ownerID, TaskID: &task.ID,
		Kind: models.KindPomodoro, DurationMinutes: 25,
	}
	require.NoError(t, timers.Create(ctx, timer))

	deleted, err := tasks.Delete(ctx, task.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = tasks.Delete(ctx, task.ID, ownerID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// The session survives with its dangling reference.
	found, err := timers.FindOwned(ctx, timer.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.TaskID)
	assert.Equal(t, task.ID, *found.TaskID)
}

func TestUserStore_EmailUnique(t *testing.T) {
	store := testStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	first := &models.User{Email: "dup@example.com", PasswordHash: "h", Name: "First"}
	require.NoError(t, users.Create(ctx, first))

	second := &models.User{Email: "dup@example.com", PasswordHash: "h", Name: "Second"}
	assert.Error(t, users.Create(ctx, second))
}

func TestUserStore_UpdatePreferences(t *testing.T) {
	store := testStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	user := &models.User{Email: "prefs@example.com", PasswordHash: "h", Name: "Prefs"}
	require.NoError(t, users.Create(ctx, user))

	updated, err := users.UpdatePreferences(ctx, user.ID, models.Preferences{
		PomodoroMinutes:   50,
		ShortBreakMinutes: 10,
		LongBreakMinutes:  20,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 50, updated.Preferences.PomodoroMinutes)

	missing, err := users.UpdatePreferences(ctx, "no-such-user", models.DefaultPreferences())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
