package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spaces/internal/models"
	"spaces/internal/remote"
)

var (
	t1 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
)

func TestSyncEmptyLocalKeepsRemoteUnchanged(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 5, Title: "five", UpdatedAt: t1})
	mock.SeedTask(models.Task{ID: 6, Title: "six", UpdatedAt: t1})

	got, err := New(mock, nil).Sync(context.Background(), "u1", nil)
	require.NoError(t, err)

	assert.Len(t, got, 2)
	ids := map[int64]string{}
	for _, task := range got {
		ids[task.ID] = task.Title
	}
	assert.Equal(t, map[int64]string{5: "five", 6: "six"}, ids)
	assert.Empty(t, mock.CreatedTasks)
	assert.Empty(t, mock.UpdatedTasks)
}

func TestSyncCreatesLocalOnlyTaskOnce(t *testing.T) {
	mock := remote.NewMockClient()
	localOnly := models.Task{ID: 3, Title: "offline note", UpdatedAt: t1}

	got, err := New(mock, nil).Sync(context.Background(), "u1", []models.Task{localOnly})
	require.NoError(t, err)

	require.Len(t, mock.CreatedTasks, 1)
	created := mock.CreatedTasks[0]
	assert.Equal(t, "offline note", created.Title)
	assert.NotEqual(t, int64(3), created.ID, "server assigns the id")

	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
}

func TestSyncNewerLocalWins(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 1, Title: "stale", UpdatedAt: t1})
	local := models.Task{ID: 1, Title: "fresh", UpdatedAt: t2}

	got, err := New(mock, nil).Sync(context.Background(), "u1", []models.Task{local})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Title)
	assert.Equal(t, []int64{1}, mock.UpdatedTasks)
}

func TestSyncOlderLocalLoses(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 1, Title: "current", UpdatedAt: t2})
	local := models.Task{ID: 1, Title: "outdated", UpdatedAt: t1}

	got, err := New(mock, nil).Sync(context.Background(), "u1", []models.Task{local})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "current", got[0].Title)
	assert.Empty(t, mock.UpdatedTasks)
}

func TestSyncTieFavorsRemote(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 1, Title: "remote", UpdatedAt: t1})
	local := models.Task{ID: 1, Title: "local", UpdatedAt: t1}

	got, err := New(mock, nil).Sync(context.Background(), "u1", []models.Task{local})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "remote", got[0].Title)
	assert.Empty(t, mock.UpdatedTasks)
}

func TestSyncMissingLocalTimestampAlwaysLoses(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 1, Title: "remote", UpdatedAt: t1})
	local := models.Task{ID: 1, Title: "local"} // zero UpdatedAt

	got, err := New(mock, nil).Sync(context.Background(), "u1", []models.Task{local})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "remote", got[0].Title)
}

func TestSyncNoDuplicateIdentifiers(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 1, Title: "shared", UpdatedAt: t2})
	mock.SeedTask(models.Task{ID: 2, Title: "remote only", UpdatedAt: t1})
	local := []models.Task{
		{ID: 1, Title: "shared stale", UpdatedAt: t1},
		{Title: "brand new", UpdatedAt: t2},
	}

	got, err := New(mock, nil).Sync(context.Background(), "u1", local)
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, task := range got {
		seen[task.ID]++
	}
	assert.Len(t, got, 3)
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %d appears %d times", id, count)
	}
}

func TestSyncCreateFailureAbortsWholeSync(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 1, Title: "remote", UpdatedAt: t1})
	mock.SetCreateTaskError(errors.New("insert rejected"))
	local := []models.Task{{Title: "doomed", UpdatedAt: t2}}

	got, err := New(mock, nil).Sync(context.Background(), "u1", local)
	require.Error(t, err)
	assert.Nil(t, got, "a failed create must not surface a partial result")
	assert.Contains(t, err.Error(), "insert rejected")
}

func TestSyncUpdateFailureAbortsWholeSync(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SeedTask(models.Task{ID: 1, Title: "remote", UpdatedAt: t1})
	mock.SetUpdateTaskError(errors.New("conflict"))
	local := []models.Task{{ID: 1, Title: "newer", UpdatedAt: t2}}

	got, err := New(mock, nil).Sync(context.Background(), "u1", local)
	require.Error(t, err)
	assert.Nil(t, got)
}

func TestSyncListFailurePropagates(t *testing.T) {
	mock := remote.NewMockClient()
	mock.SetError(errors.New("network down"))

	_, err := New(mock, nil).Sync(context.Background(), "u1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestSyncCreatesPreserveLocalOrder(t *testing.T) {
	mock := remote.NewMockClient()
	local := []models.Task{
		{Title: "first", UpdatedAt: t1},
		{Title: "second", UpdatedAt: t1},
		{Title: "third", UpdatedAt: t1},
	}

	_, err := New(mock, nil).Sync(context.Background(), "u1", local)
	require.NoError(t, err)

	require.Len(t, mock.CreatedTasks, 3)
	assert.Equal(t, "first", mock.CreatedTasks[0].Title)
	assert.Equal(t, "second", mock.CreatedTasks[1].Title)
	assert.Equal(t, "third", mock.CreatedTasks[2].Title)
}
