// Package reconcile merges a locally-held task list with the remote store.
// Local edits made while offline or during a guest session win over stale
// remote copies by last-write-wins timestamp; the remote copy wins ties.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spaces/internal/models"
	"spaces/internal/remote"
)

// Reconciler synchronizes local tasks into the remote store.
type Reconciler struct {
	store  remote.TaskStore
	logger *slog.Logger
}

// New builds a reconciler over the given remote task store.
func New(store remote.TaskStore, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

// Sync merges local into the user's remote task set and returns the
// reconciled set. Local tasks unknown to the remote store are created there;
// local tasks with a newer UpdatedAt than their remote counterpart are pushed
// as updates; everything else keeps the remote version. Remote calls are
// issued one at a time, in order, and the first failure aborts the whole sync.
func (r *Reconciler) Sync(ctx context.Context, userID string, local []models.Task) ([]models.Task, error) {
	remoteTasks, err := r.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	remoteByID := make(map[int64]models.Task, len(remoteTasks))
	for _, t := range remoteTasks {
		remoteByID[t.ID] = t
	}

	var newTasks, updatedTasks []models.Task
	for _, t := range local {
		if _, ok := remoteByID[t.ID]; ok {
			updatedTasks = append(updatedTasks, t)
		} else {
			newTasks = append(newTasks, t)
		}
	}

	result := make([]models.Task, 0, len(remoteTasks)+len(newTasks))
	localIDs := make(map[int64]struct{}, len(updatedTasks))

	for _, t := range newTasks {
		created, err := r.store.CreateTask(ctx, stripServerFields(t), userID)
		if err != nil {
			return nil, fmt.Errorf("sync: create %q: %w", t.Title, err)
		}
		result = append(result, created)
	}

	for _, t := range updatedTasks {
		localIDs[t.ID] = struct{}{}
		current := remoteByID[t.ID]

		// A missing local timestamp ranks as epoch, so it can never beat a
		// stamped remote copy; equal timestamps keep the remote copy too.
		if !t.UpdatedAt.After(current.UpdatedAt) {
			result = append(result, current)
			continue
		}

		synced, err := r.store.UpdateTask(ctx, t.ID, taskFields(t), userID)
		if err != nil {
			return nil, fmt.Errorf("sync: update %d: %w", t.ID, err)
		}
		result = append(result, synced)
	}

	for _, t := range remoteTasks {
		if _, ok := localIDs[t.ID]; !ok {
			result = append(result, t)
		}
	}

	r.logger.Info("sync complete",
		slog.String("user", userID),
		slog.Int("created", len(newTasks)),
		slog.Int("reconciled", len(updatedTasks)),
		slog.Int("total", len(result)))

	return result, nil
}

// stripServerFields clears the identifier and timestamps so the remote store
// assigns its own on creation.
func stripServerFields(t models.Task) models.Task {
	t.ID = 0
	t.CreatedAt = time.Time{}
	t.UpdatedAt = time.Time{}
	return t
}

// taskFields flattens a task into the partial-update shape of the remote API.
func taskFields(t models.Task) remote.TaskFields {
	return remote.TaskFields{
		"title":        t.Title,
		"description":  t.Description,
		"category":     t.Category,
		"completed":    t.Completed,
		"checklist":    t.Checklist,
		"due_date":     t.DueDate,
		"reminder":     t.Reminder,
		"team_id":      t.TeamID,
		"is_team_task": t.IsTeamTask,
		"assigned_to":  t.AssignedTo,
	}
}
