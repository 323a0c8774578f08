// Package countdown implements the client-side countdown controller. It
// tracks one session at a time, counts down at one-second granularity and
// guarantees the end-of-session transition fires at most once even when
// several ticks observe zero.
package countdown

import (
	"context"
	"errors"
	"time"

	"github.com/ekagra-app/ekagra/internal/client"
	"github.com/ekagra-app/ekagra/pkg/models"
)

var (
	// ErrTimerActive is returned by Start while a countdown is active.
	ErrTimerActive = errors.New("a timer is already active")

	// ErrNoActiveTimer is returned by End/Skip with nothing to end.
	ErrNoActiveTimer = errors.New("no active timer")
)

// Controller owns the single visible countdown. It is driven
// cooperatively from one goroutine (the TUI event loop); it is not safe
// for concurrent use.
type Controller struct {
	svc client.SessionService

	session   *models.Timer
	remaining int // seconds
	running   bool

	// expiryFired guards the automatic end transition: set before the
	// first end attempt at zero so later ticks never call End again,
	// even if that attempt failed and the user must retry manually.
	expiryFired bool

	history []models.Timer
}

// New creates a controller over the given session backend.
func New(svc client.SessionService) *Controller {
	return &Controller{svc: svc}
}

// Start requests a new session and begins counting down from
// durationMinutes * 60 seconds. Starting while a countdown is active is
// a precondition failure.
func (c *Controller) Start(ctx context.Context, kind models.TimerKind, durationMinutes int, taskID *string) error {
	if c.session != nil {
		return ErrTimerActive
	}

	session, err := c.svc.Start(ctx, kind, durationMinutes, taskID)
	if err != nil {
		return err
	}

	c.session = session
	c.remaining = durationMinutes * 60
	c.running = true
	c.expiryFired = false
	return nil
}

// Pause stops the countdown without contacting the backend. Time elapsed
// while paused does not count down.
func (c *Controller) Pause() {
	c.running = false
}

// Resume restarts a paused countdown. Resuming a running or finished
// countdown is a no-op.
func (c *Controller) Resume() {
	if c.session != nil && c.remaining > 0 {
		c.running = true
	}
}

// Tick advances the countdown by one second. Reaching zero triggers the
// end transition exactly once; further ticks at zero are no-ops.
func (c *Controller) Tick(ctx context.Context) error {
	if c.session == nil || !c.running {
		return nil
	}

	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 || c.expiryFired {
		return nil
	}

	c.expiryFired = true
	c.running = false
	return c.End(ctx)
}

// End resolves the active session: it asks the backend to mark it ended,
// clears the countdown and refreshes history. On failure the local state
// is left untouched so the user can retry.
func (c *Controller) End(ctx context.Context) error {
	if c.session == nil {
		return ErrNoActiveTimer
	}

	if _, err := c.svc.End(ctx, c.session.ID); err != nil {
		return err
	}

	c.session = nil
	c.remaining = 0
	c.running = false

	return c.RefreshHistory(ctx)
}

// Skip is a user-facing label for End: same terminal action before
// natural expiry.
func (c *Controller) Skip(ctx context.Context) error {
	return c.End(ctx)
}

// RefreshHistory reloads the session history from the backend.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	history, err := c.svc.History(ctx, models.HistoryFilter{})
	if err != nil {
		return err
	}
	c.history = history
	return nil
}

// Active returns the session the countdown tracks, or nil.
func (c *Controller) Active() *models.Timer {
	return c.session
}

// Remaining returns the remaining time.
func (c *Controller) Remaining() time.Duration {
	return time.Duration(c.remaining) * time.Second
}

// RemainingSeconds returns the remaining whole seconds.
func (c *Controller) RemainingSeconds() int {
	return c.remaining
}

// Running reports whether the countdown is ticking.
func (c *Controller) Running() bool {
	return c.running
}

// History returns the most recently fetched session history.
func (c *Controller) History() []models.Timer {
	return c.history
}
