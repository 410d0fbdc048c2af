package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/mock"
	"github.com/m-mizutani/honeybadger/pkg/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLockService(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewRepository()
	svc := service.NewRunLockService(repo, "aggregate", time.Minute)

	release, err := svc.Acquire(ctx, "run-1")
	require.NoError(t, err)
	lock := repo.RunLock("aggregate")
	require.NotNil(t, lock)
	assert.Equal(t, "run-1", lock.RunID)
	assert.Equal(t, int64(60), lock.ExpiresAt-lock.AcquiredAt)

	_, err = svc.Acquire(ctx, "run-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRunInProgress))

	release()
	assert.Nil(t, repo.RunLock("aggregate"))

	release2, err := svc.Acquire(ctx, "run-2")
	require.NoError(t, err)
	release2()
}

func TestRunLockServiceExpired(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewRepository()

	// lease of a crashed run, never released
	stale := service.NewRunLockService(repo, "aggregate", time.Nanosecond)
	_, err := stale.Acquire(ctx, "crashed-run")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	svc := service.NewRunLockService(repo, "aggregate", time.Minute)
	release, err := svc.Acquire(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, "run-2", repo.RunLock("aggregate").RunID)
	release()
}
