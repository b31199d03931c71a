// Package reminder fires due task reminders. The scheduler polls the remote
// store; a reminder fires once, when enabled, due and not yet sent, and is
// then marked sent so other devices skip it.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"spaces/internal/models"
	"spaces/internal/remote"
)

// NotifyFunc delivers one reminder to the user. The browser notification is
// the UI's concern; this layer only decides when.
type NotifyFunc func(userID string, task models.Task)

// Scheduler scans for due reminders on a fixed interval.
type Scheduler struct {
	store    remote.TaskStore
	notify   NotifyFunc
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a scheduler polling at the given interval.
func New(store remote.TaskStore, notify NotifyFunc, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		store:    store,
		notify:   notify,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run polls until ctx ends. Errors are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context, userID string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(ctx, userID); err != nil {
				s.logger.Warn("reminder scan failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Tick runs one scan: every enabled, due, unsent reminder on an uncompleted
// task fires and is marked sent.
func (s *Scheduler) Tick(ctx context.Context, userID string) error {
	tasks, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now()
	for _, t := range tasks {
		if !due(t, now) {
			continue
		}

		if s.notify != nil {
			s.notify(userID, t)
		}

		reminder := t.Reminder
		reminder.Sent = true
		if _, err := s.store.UpdateTask(ctx, t.ID, remote.TaskFields{"reminder": reminder}, userID); err != nil {
			// Not marked sent; the next tick fires it again rather than
			// losing it.
			return err
		}
		s.logger.Info("reminder fired", slog.String("user", userID), slog.Int64("task", t.ID))
	}
	return nil
}

func due(t models.Task, now time.Time) bool {
	r := t.Reminder
	return r.Enabled && !r.Sent && !t.Completed && r.At != nil && !r.At.After(now)
}
