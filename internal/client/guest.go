package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ekagra-app/ekagra/pkg/models"
)

// Guest is the unauthenticated session backend. Sessions live only in a
// local JSON file: in-progress sessions are held in memory and appended
// to the file when ended, mirroring the web client's localStorage
// behavior. It never touches the network.
type Guest struct {
	path    string
	current *models.Timer
	now     func() time.Time
}

// NewGuest creates a guest backend persisting to the given file.
func NewGuest(path string) *Guest {
	return &Guest{
		path: path,
		now:  time.Now,
	}
}

// Start implements SessionService. Sessions get locally-generated IDs and
// the same field shapes as server sessions; owner is implicitly the local
// device.
func (g *Guest) Start(ctx context.Context, kind models.TimerKind, durationMinutes int, taskID *string) (*models.Timer, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown timer type %q", kind)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be at least 1 minute")
	}

	timer := &models.Timer{
		ID:              uuid.NewString(),
		TaskID:          taskID,
		Kind:            kind,
		StartedAt:       g.now(),
		DurationMinutes: durationMinutes,
	}
	g.current = timer
	return timer, nil
}

// End implements SessionService. The completed record is prepended to the
// local history file; ending anything other than the in-progress session
// fails with ErrNotFound.
func (g *Guest) End(ctx context.Context, id string) (*models.Timer, error) {
	if g.current == nil || g.current.ID != id {
		return nil, fmt.Errorf("timer %w", ErrNotFound)
	}

	now := g.now()
	ended := *g.current
	ended.EndedAt = &now
	ended.Completed = true

	history, err := g.load()
	if err != nil {
		return nil, err
	}
	if err := g.save(append([]models.Timer{ended}, history...)); err != nil {
		return nil, err
	}

	g.current = nil
	return &ended, nil
}

// History implements SessionService.
func (g *Guest) History(ctx context.Context, filter models.HistoryFilter) ([]models.Timer, error) {
	history, err := g.load()
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Timer, 0, len(history))
	for _, t := range history {
		if filter.Kind != nil && t.Kind != *filter.Kind {
			continue
		}
		if filter.Start != nil && t.StartedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && t.StartedAt.After(*filter.End) {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})
	return filtered, nil
}

// Stats implements SessionService. Only completed sessions count and
// minutes sum the planned duration, matching the server.
func (g *Guest) Stats(ctx context.Context, start, end *time.Time) ([]models.KindStats, error) {
	history, err := g.load()
	if err != nil {
		return nil, err
	}

	byKind := map[models.TimerKind]*models.KindStats{}
	for _, t := range history {
		if !t.Completed {
			continue
		}
		if start != nil && t.StartedAt.Before(*start) {
			continue
		}
		if end != nil && t.StartedAt.After(*end) {
			continue
		}
		entry, ok := byKind[t.Kind]
		if !ok {
			entry = &models.KindStats{Kind: t.Kind}
			byKind[t.Kind] = entry
		}
		entry.TotalSessions++
		entry.TotalMinutes += t.DurationMinutes
	}

	stats := make([]models.KindStats, 0, len(byKind))
	for _, entry := range byKind {
		entry.AverageDuration = float64(entry.TotalMinutes) / float64(entry.TotalSessions)
		stats = append(stats, *entry)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Kind < stats[j].Kind })
	return stats, nil
}

// Active returns the in-progress guest session, if any.
func (g *Guest) Active() *models.Timer {
	return g.current
}

func (g *Guest) load() ([]models.Timer, error) {
	data, err := os.ReadFile(g.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var history []models.Timer
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parse guest history: %w", err)
	}
	return history, nil
}

func (g *Guest) save(history []models.Timer) error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(g.path, data, 0o600)
}
