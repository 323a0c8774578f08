// Package client provides the two session backends the countdown
// controller runs against: the REST API for authenticated use and a
// local file for guest mode. Both implement the same contract; they are
// never reconciled with each other.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/ekagra-app/ekagra/pkg/models"
)

// ErrNotFound marks a session or task the backend does not know, or a
// session that was already ended.
var ErrNotFound = errors.New("not found")

// SessionService is the session store contract shared by the remote and
// guest backends.
type SessionService interface {
	// Start creates a new in-progress session.
	Start(ctx context.Context, kind models.TimerKind, durationMinutes int, taskID *string) (*models.Timer, error)

	// End marks the session completed. Ending a missing or already-ended
	// session fails with ErrNotFound.
	End(ctx context.Context, id string) (*models.Timer, error)

	// History returns sessions newest first.
	History(ctx context.Context, filter models.HistoryFilter) ([]models.Timer, error)

	// Stats aggregates completed sessions by kind.
	Stats(ctx context.Context, start, end *time.Time) ([]models.KindStats, error)
}
