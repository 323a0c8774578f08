package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekagra-app/ekagra/pkg/models"
)

func testGuest(t *testing.T) *Guest {
	t.Helper()
	return NewGuest(filepath.Join(t.TempDir(), "guest_timers.json"))
}

func TestGuestStartValidation(t *testing.T) {
	g := testGuest(t)
	ctx := context.Background()

	_, err := g.Start(ctx, "nap", 25, nil)
	assert.Error(t, err)

	_, err = g.Start(ctx, models.KindPomodoro, 0, nil)
	assert.Error(t, err)
}

func TestGuestStartDoesNotWriteFile(t *testing.T) {
	g := testGuest(t)

	timer, err := g.Start(context.Background(), models.KindPomodoro, 25, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, timer.ID)
	require.NotNil(t, g.Active())

	// In-progress sessions live in memory only.
	_, err = os.Stat(g.path)
	assert.True(t, os.IsNotExist(err))

	history, err := g.History(context.Background(), models.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGuestEndPersistsCompletedRecord(t *testing.T) {
	g := testGuest(t)
	ctx := context.Background()

	timer, err := g.Start(ctx, models.KindPomodoro, 25, nil)
	require.NoError(t, err)

	ended, err := g.End(ctx, timer.ID)
	require.NoError(t, err)
	assert.True(t, ended.Completed)
	require.NotNil(t, ended.EndedAt)
	assert.Nil(t, g.Active())

	// The file holds exactly the completed record.
	data, err := os.ReadFile(g.path)
	require.NoError(t, err)
	var stored []models.Timer
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, timer.ID, stored[0].ID)
	assert.True(t, stored[0].Completed)
}

func TestGuestEndUnknownID(t *testing.T) {
	g := testGuest(t)
	ctx := context.Background()

	_, err := g.End(ctx, "no-such-timer")
	assert.ErrorIs(t, err, ErrNotFound)

	timer, err := g.Start(ctx, models.KindPomodoro, 25, nil)
	require.NoError(t, err)

	_, err = g.End(ctx, "some-other-id")
	assert.ErrorIs(t, err, ErrNotFound)

	// Replaying a successful end also fails: the session is gone.
	_, err = g.End(ctx, timer.ID)
	require.NoError(t, err)
	_, err = g.End(ctx, timer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuestHistoryNewestFirst(t *testing.T) {
	g := testGuest(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := base
	g.now = func() time.Time {
		clock = clock.Add(30 * time.Minute)
		return clock
	}

	for _, kind := range []models.TimerKind{models.KindPomodoro, models.KindShortBreak, models.KindPomodoro} {
		timer, err := g.Start(ctx, kind, 10, nil)
		require.NoError(t, err)
		_, err = g.End(ctx, timer.ID)
		require.NoError(t, err)
	}

	history, err := g.History(ctx, models.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].StartedAt.Before(history[i-1].StartedAt),
			"history must be ordered newest first")
	}

	kind := models.KindPomodoro
	filtered, err := g.History(ctx, models.HistoryFilter{Kind: &kind})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	start := base.Add(time.Hour)
	ranged, err := g.History(ctx, models.HistoryFilter{Start: &start})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestGuestStats(t *testing.T) {
	g := testGuest(t)
	ctx := context.Background()

	for _, d := range []int{25, 15} {
		timer, err := g.Start(ctx, models.KindPomodoro, d, nil)
		require.NoError(t, err)
		_, err = g.End(ctx, timer.ID)
		require.NoError(t, err)
	}
	brk, err := g.Start(ctx, models.KindLongBreak, 15, nil)
	require.NoError(t, err)
	_, err = g.End(ctx, brk.ID)
	require.NoError(t, err)

	// In-progress sessions never reach the aggregate.
	_, err = g.Start(ctx, models.KindPomodoro, 25, nil)
	require.NoError(t, err)

	stats, err := g.Stats(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byKind := make(map[models.TimerKind]models.KindStats, len(stats))
	for _, s := range stats {
		byKind[s.Kind] = s
	}
	pom := byKind[models.KindPomodoro]
	assert.Equal(t, 2, pom.TotalSessions)
	assert.Equal(t, 40, pom.TotalMinutes)
	assert.InDelta(t, 20.0, pom.AverageDuration, 0.001)
}

func TestGuestSurvivesMissingAndEmptyFile(t *testing.T) {
	g := testGuest(t)
	ctx := context.Background()

	history, err := g.History(ctx, models.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, os.MkdirAll(filepath.Dir(g.path), 0o755))
	require.NoError(t, os.WriteFile(g.path, nil, 0o600))

	stats, err := g.Stats(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
}
