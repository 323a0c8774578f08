package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/ekagra-app/ekagra/pkg/models"
)

// testStore creates a Store backed by a temp SQLite database with
// migrations applied.
func testStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(Config{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// createTestUser inserts a user and returns its ID.
func createTestUser(t *testing.T, store *Store, email string) string {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Name:         "Test User",
	}
	require.NoError(t, NewUserStore(store).Create(context.Background(), user))
	return user.ID
}

// createTestTask inserts a task for the owner and returns it.
func createTestTask(t *testing.T, store *Store, ownerID, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		OwnerID:  ownerID,
		Title:    title,
		Category: "work",
	}
	require.NoError(t, NewTaskStore(store).Create(context.Background(), task))
	return task
}

func TestStore_PingAfterOpen(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Ping())
}

func TestStore_MigrationsCreateTables(t *testing.T) {
	store := testStore(t)

	for _, table := range []string{"users", "tasks", "timers"} {
		require.True(t, store.DB.Migrator().HasTable(table), "missing table %s", table)
	}
}
