package aggregator

import (
	"context"
	"sync/atomic"

	"github.com/m-mizutani/honeybadger/pkg/errors"
)

// Guard allows one aggregation run at a time. Acquire fails with errors.ErrRunInProgress when
// another run holds the slot. release must be called when the run ends.
type Guard interface {
	Acquire(ctx context.Context, runID string) (release func(), err error)
}

// LocalGuard is a single-slot Guard within one process
type LocalGuard struct {
	running atomic.Bool
	holder  atomic.Value
}

// NewLocalGuard is constructor of LocalGuard
func NewLocalGuard() *LocalGuard {
	return &LocalGuard{}
}

func (x *LocalGuard) Acquire(ctx context.Context, runID string) (func(), error) {
	if !x.running.CompareAndSwap(false, true) {
		return nil, errors.New("aggregation run is already in progress").
			WithKind(errors.ErrRunInProgress).With("run_id", runID).With("holder", x.holder.Load())
	}
	x.holder.Store(runID)

	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			x.running.Store(false)
		}
	}, nil
}
