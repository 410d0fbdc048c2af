// Package aggregator drives staged retrieval of entities. Each stage is one batched gateway call
// whose results are reduced into a new immutable honeybadger.Collection, and every resulting
// collection is published as a snapshot so consumers can render partial data.
package aggregator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/logging"
)

func errUnknownStage(stage Stage) error {
	return errors.New("unknown stage").With("stage", int(stage))
}

// LoadInitial builds a collection with ObservationCount of the top entities. No partial
// collection is returned on error.
func LoadInitial(ctx context.Context, gw Gateway) (honeybadger.Collection, error) {
	entities, err := gw.TopEntities(ctx)
	if err != nil {
		return honeybadger.Collection{}, err
	}

	observations := make([]*honeybadger.Observation, len(entities))
	for i, entity := range entities {
		observations[i] = &honeybadger.Observation{
			Identifier: entity.Identifier,
			Count:      entity.ObservationCount,
		}
	}

	return honeybadger.NewCollection(observations), nil
}

// EnrichWith queries stage for every identifier of c in one batch and returns c merged with the
// results. On error c is returned unchanged. Results for identifiers not in c are ignored.
func EnrichWith(ctx context.Context, gw Gateway, stage Stage, c honeybadger.Collection) (honeybadger.Collection, error) {
	if c.Len() == 0 {
		return c, nil
	}

	enrichments, err := stage.fetch(ctx, gw, c.Keys())
	if err != nil {
		return c, err
	}

	return c.Merge(enrichments), nil
}

// Arguments of Aggregator. Guard and Stages are optional.
type Arguments struct {
	Gateway   Gateway
	Publisher Publisher
	Guard     Guard
	Stages    []Stage
}

// Aggregator runs LoadInitial and EnrichWith in sequence and publishes a snapshot after each
type Aggregator struct {
	gw        Gateway
	publisher Publisher
	guard     Guard
	stages    []Stage
	now       func() time.Time
	newRunID  func() string
}

// New is constructor of Aggregator
func New(args *Arguments) *Aggregator {
	guard := args.Guard
	if guard == nil {
		guard = NewLocalGuard()
	}
	stages := args.Stages
	if stages == nil {
		stages = DefaultStages
	}

	return &Aggregator{
		gw:        args.Gateway,
		publisher: args.Publisher,
		guard:     guard,
		stages:    stages,
		now:       time.Now,
		newRunID:  func() string { return uuid.New().String() },
	}
}

// Run executes one aggregation run and returns the last published snapshot. Stages run strictly
// in order and the first failure ends the run: a failed snapshot carrying the error and the
// collection of the succeeded stages is published and the error is returned.
func (x *Aggregator) Run(ctx context.Context) (*honeybadger.Snapshot, error) {
	runID := x.newRunID()
	release, err := x.guard.Acquire(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer release()

	log := logging.Logger.With().Str("run_id", runID).Logger()

	c, err := LoadInitial(ctx, x.gw)
	if err != nil {
		return x.fail(ctx, runID, StageInitial, c, err)
	}
	log.Info().Int("entities", c.Len()).Msg("Loaded top entities")

	status := honeybadger.RunPartial
	if len(x.stages) == 0 {
		status = honeybadger.RunComplete
	}
	snapshot := honeybadger.NewSnapshot(runID, StageInitial, status, c, x.now())
	if err := x.publish(ctx, snapshot); err != nil {
		return nil, err
	}

	for i, stage := range x.stages {
		enriched, err := EnrichWith(ctx, x.gw, stage, c)
		if err != nil {
			return x.fail(ctx, runID, stage.String(), c, err)
		}
		c = enriched
		log.Info().Str("stage", stage.String()).Msg("Merged stage")

		status := honeybadger.RunPartial
		if i == len(x.stages)-1 {
			status = honeybadger.RunComplete
		}
		snapshot = honeybadger.NewSnapshot(runID, stage.String(), status, c, x.now())
		if err := x.publish(ctx, snapshot); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

func (x *Aggregator) publish(ctx context.Context, snapshot *honeybadger.Snapshot) error {
	if x.publisher == nil {
		return nil
	}
	if err := x.publisher.Publish(ctx, snapshot); err != nil {
		return errors.Wrap(err, "Failed to publish snapshot").
			With("run_id", snapshot.RunID).With("stage", snapshot.Stage)
	}
	return nil
}

func (x *Aggregator) fail(ctx context.Context, runID, stage string, c honeybadger.Collection, cause error) (*honeybadger.Snapshot, error) {
	logging.Logger.Error().Err(cause).Str("run_id", runID).Str("stage", stage).Msg("Aggregation run failed")

	snapshot := honeybadger.NewSnapshot(runID, stage, honeybadger.RunFailed, c, x.now())
	snapshot.Error = cause.Error()
	if err := x.publish(ctx, snapshot); err != nil {
		logging.Logger.Error().Err(err).Str("run_id", runID).Msg("Failed to publish failed snapshot")
	}

	return snapshot, cause
}
