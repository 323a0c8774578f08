package countdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekagra-app/ekagra/internal/client"
	"github.com/ekagra-app/ekagra/pkg/models"
)

// fakeService records backend calls so tests can count end transitions.
type fakeService struct {
	startCalls int
	endCalls   int
	endErr     error

	sessions map[string]*models.Timer
	history  []models.Timer
}

func newFakeService() *fakeService {
	return &fakeService{sessions: map[string]*models.Timer{}}
}

func (f *fakeService) Start(ctx context.Context, kind models.TimerKind, durationMinutes int, taskID *string) (*models.Timer, error) {
	f.startCalls++
	timer := &models.Timer{
		ID:              uuid.NewString(),
		Kind:            kind,
		StartedAt:       time.Now(),
		DurationMinutes: durationMinutes,
		TaskID:          taskID,
	}
	f.sessions[timer.ID] = timer
	return timer, nil
}

func (f *fakeService) End(ctx context.Context, id string) (*models.Timer, error) {
	f.endCalls++
	if f.endErr != nil {
		return nil, f.endErr
	}
	timer, ok := f.sessions[id]
	if !ok || timer.Completed {
		return nil, client.ErrNotFound
	}
	now := time.Now()
	timer.Completed = true
	timer.EndedAt = &now
	f.history = append([]models.Timer{*timer}, f.history...)
	return timer, nil
}

func (f *fakeService) History(ctx context.Context, filter models.HistoryFilter) ([]models.Timer, error) {
	return f.history, nil
}

func (f *fakeService) Stats(ctx context.Context, start, end *time.Time) ([]models.KindStats, error) {
	return nil, nil
}

func TestControllerStart(t *testing.T) {
	svc := newFakeService()
	c := New(svc)

	err := c.Start(context.Background(), models.KindPomodoro, 25, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.startCalls)
	assert.NotNil(t, c.Active())
	assert.Equal(t, 25*60, c.RemainingSeconds())
	assert.True(t, c.Running())
}

func TestControllerStartWhileActive(t *testing.T) {
	svc := newFakeService()
	c := New(svc)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, models.KindPomodoro, 25, nil))

	err := c.Start(ctx, models.KindShortBreak, 5, nil)
	assert.ErrorIs(t, err, ErrTimerActive)
	assert.Equal(t, 1, svc.startCalls, "rejected start must not reach the backend")
}

func TestControllerTickCountsDown(t *testing.T) {
	svc := newFakeService()
	c := New(svc)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, models.KindShortBreak, 1, nil))
	require.Equal(t, 60, c.RemainingSeconds())

	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, 59, c.RemainingSeconds())
	assert.Equal(t, 59*time.Second, c.Remaining())
}

func TestControllerExpiryFiresExactlyOnce(t *testing.T) {
	svc := newFakeService()
	c := New(svc)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, models.KindShortBreak, 1, nil))
	c.remaining = 1

	// The 1 -> 0 tick triggers the end transition.
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, 1, svc.endCalls)
	assert.Nil(t, c.Active())
	assert.False(t, c.Running())

	// Further ticks at zero are no-ops.
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, 1, svc.endCalls)
}

func TestControllerExpiryNotRetriedAfterFailedEnd(t *testing.T) {
	svc := newFakeService()
	c := New(svc)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, models.KindShortBreak, 1, nil))
	c.remaining = 1
	svc.endErr = errors.New("backend down")

	err := c.Tick(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, svc.endCalls)
	assert.NotNil(t, c.Active(), "failed end keeps the session for manual retry")

	// Ticks never re-fire the automatic end.
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, 1, svc.endCalls)

	// A manual retry still works once the backend recovers.
	svc.endErr = nil
	require.NoError(t, c.End(ctx))
	assert.Equal(t, 2, svc.endCalls)
	assert.Nil(t, c.Active())
}

func TestControllerPauseResume(t *testing.T) {
	svc := newFakeService()
	c := New(svc)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, models.KindPomodoro, 25, nil))
	require.NoError(t, c.Tick(ctx))
	before := c.RemainingSeconds()

	c.Pause()
	assert.False(t, c.Running())

	// Paused ticks do not count down.
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, before, c.RemainingSeconds())

	c.Resume()
	assert.True(t, c.Running())
	require.NoError(t, c.Tick(ctx))
	assert.Equal(t, before-1, c.RemainingSeconds())
}

func TestControllerEndWithoutSession(t *testing.T) {
	c := New(newFakeService())

	assert.ErrorIs(t, c.End(context.Background()), ErrNoActiveTimer)
	assert.ErrorIs(t, c.Skip(context.Background()), ErrNoActiveTimer)
}

func TestControllerSkipEndsEarly(t *testing.T) {
	svc := newFakeService()
	c := New(svc)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, models.KindPomodoro, 25, nil))
	require.NoError(t, c.Tick(ctx))

	require.NoError(t, c.Skip(ctx))
	assert.Equal(t, 1, svc.endCalls)
	assert.Nil(t, c.Active())
	assert.Equal(t, 0, c.RemainingSeconds())

	// A new session can start after a skip.
	require.NoError(t, c.Start(ctx, models.KindShortBreak, 5, nil))
	assert.Equal(t, 5*60, c.RemainingSeconds())
}

func TestControllerEndRefreshesHistory(t *testing.T) {
	svc := newFakeService()
	c := New(svc)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, models.KindPomodoro, 25, nil))
	require.NoError(t, c.End(ctx))

	require.Len(t, c.History(), 1)
	assert.True(t, c.History()[0].Completed)
}
