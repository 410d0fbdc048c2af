package aggregator

import (
	"context"

	"github.com/m-mizutani/honeybadger"
)

// Publisher makes a snapshot visible to consumers. Consumers must treat the snapshot as
// read-only.
type Publisher interface {
	Publish(ctx context.Context, snapshot *honeybadger.Snapshot) error
}

// PublisherFunc is an adapter to use a function as Publisher
type PublisherFunc func(ctx context.Context, snapshot *honeybadger.Snapshot) error

func (x PublisherFunc) Publish(ctx context.Context, snapshot *honeybadger.Snapshot) error {
	return x(ctx, snapshot)
}

// Publishers publishes a snapshot to every publisher in order, stopping at the first error
type Publishers []Publisher

func (x Publishers) Publish(ctx context.Context, snapshot *honeybadger.Snapshot) error {
	for _, p := range x {
		if err := p.Publish(ctx, snapshot); err != nil {
			return err
		}
	}
	return nil
}
