package service

import (
	"context"
	"time"

	"github.com/m-mizutani/honeybadger/pkg/adaptor"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/logging"
)

// DefaultRunLockTTL bounds how long a crashed run can hold the slot
const DefaultRunLockTTL = 5 * time.Minute

// RunLockService is a run guard shared by every process using the same repository. The lock is a
// lease that expires after ttl so a run killed before releasing does not block forever.
type RunLockService struct {
	repo adaptor.Repository
	name string
	ttl  time.Duration
	now  func() time.Time
}

// NewRunLockService is constructor of RunLockService. ttl <= 0 means DefaultRunLockTTL.
func NewRunLockService(repo adaptor.Repository, name string, ttl time.Duration) *RunLockService {
	if ttl <= 0 {
		ttl = DefaultRunLockTTL
	}
	return &RunLockService{
		repo: repo,
		name: name,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Acquire takes the lease for runID. It fails with errors.ErrRunInProgress if another run holds
// an unexpired lease.
func (x *RunLockService) Acquire(ctx context.Context, runID string) (func(), error) {
	now := x.now()
	lock := &adaptor.RunLock{
		Name:       x.name,
		RunID:      runID,
		AcquiredAt: now.Unix(),
		ExpiresAt:  now.Add(x.ttl).Unix(),
	}

	ok, err := x.repo.AcquireRunLock(lock, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("aggregation run is already in progress").
			WithKind(errors.ErrRunInProgress).With("name", x.name).With("run_id", runID)
	}

	return func() {
		if err := x.repo.ReleaseRunLock(x.name, runID); err != nil {
			logging.Logger.Error().Err(err).Str("run_id", runID).Msg("Failed to release run lock")
		}
	}, nil
}
