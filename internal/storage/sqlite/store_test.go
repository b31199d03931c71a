package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spaces/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "spaces.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestUpsertAndListRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	due := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	remindAt := due.Add(-time.Hour)
	task := models.Task{
		ID:          42,
		Title:       "water plants",
		Description: "the big ones first",
		Category:    "personal",
		Checklist: []models.ChecklistItem{
			{ID: 1, Text: "ficus", Done: true},
			{ID: 2, Text: "monstera"},
		},
		DueDate:   &due,
		Reminder:  models.ReminderSettings{Enabled: true, At: &remindAt},
		UpdatedAt: time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.UpsertTask(ctx, "u1", task))

	tasks, err := store.ListTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Checklist, got.Checklist)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.True(t, got.Reminder.Enabled)
	require.NotNil(t, got.Reminder.At)
	assert.True(t, got.Reminder.At.Equal(remindAt))
}

func TestUpsertReplacesSameRemoteID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTask(ctx, "u1", models.Task{ID: 7, Title: "v1"}))
	require.NoError(t, store.UpsertTask(ctx, "u1", models.Task{ID: 7, Title: "v2"}))

	tasks, err := store.ListTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "v2", tasks[0].Title)
}

func TestUnsyncedTasksAccumulate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTask(ctx, "u1", models.Task{Title: "draft one"}))
	require.NoError(t, store.UpsertTask(ctx, "u1", models.Task{Title: "draft two"}))

	tasks, err := store.ListTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestUpsertRejectsInvalidTask(t *testing.T) {
	store := openTestStore(t)

	err := store.UpsertTask(context.Background(), "u1", models.Task{Title: ""})
	assert.Error(t, err)

	err = store.UpsertTask(context.Background(), "u1", models.Task{Title: "x", AssignedTo: "u2"})
	assert.Error(t, err, "assignee without a team must be rejected")
}

func TestListTasksScopedByUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTask(ctx, "u1", models.Task{Title: "mine"}))
	require.NoError(t, store.UpsertTask(ctx, "u2", models.Task{Title: "theirs"}))

	tasks, err := store.ListTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Title)
}

func TestDeleteTask(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTask(ctx, "u1", models.Task{ID: 5, Title: "gone soon"}))
	require.NoError(t, store.DeleteTask(ctx, "u1", 5))

	tasks, err := store.ListTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestReplaceAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTask(ctx, "u1", models.Task{Title: "old local"}))
	require.NoError(t, store.UpsertTask(ctx, "u2", models.Task{Title: "other user"}))

	reconciled := []models.Task{
		{ID: 1, Title: "synced one"},
		{ID: 2, Title: "synced two"},
	}
	require.NoError(t, store.ReplaceAll(ctx, "u1", reconciled))

	tasks, err := store.ListTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "synced one", tasks[0].Title)
	assert.Equal(t, "synced two", tasks[1].Title)

	other, err := store.ListTasks(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1, "other users' caches stay untouched")
}
