package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *TaskRepository {
	t.Helper()
	repo, err := NewTaskRepository(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	return repo
}

func TestTaskLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Add(ctx, "rebalance portfolio")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Nil(t, created.DoneAt)

	open, err := repo.Open(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "rebalance portfolio", open[0].Title)

	require.NoError(t, repo.MarkDone(ctx, created.ID))

	open, err = repo.Open(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestOpenOrdersOldestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Add(ctx, "first")
	require.NoError(t, err)
	_, err = repo.Add(ctx, "second")
	require.NoError(t, err)

	open, err := repo.Open(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, first.ID, open[0].ID)
}

func TestMarkDoneUnknownID(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.MarkDone(context.Background(), 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkDoneTwice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	task, err := repo.Add(ctx, "once")
	require.NoError(t, err)
	require.NoError(t, repo.MarkDone(ctx, task.ID))

	err = repo.MarkDone(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
