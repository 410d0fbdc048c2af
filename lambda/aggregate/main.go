package main

import (
	"context"

	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/arguments"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/lambda"
	"github.com/m-mizutani/honeybadger/pkg/logging"
)

// Result is returned to the invoker, e.g. EventBridge scheduled rule
type Result struct {
	RunID    string                `json:"run_id,omitempty"`
	Stage    string                `json:"stage,omitempty"`
	Status   honeybadger.RunStatus `json:"status,omitempty"`
	Entities int                   `json:"entities"`
	Skipped  bool                  `json:"skipped,omitempty"`
}

// Handler is exported for test
func Handler(ctx context.Context, args *arguments.Arguments) (*Result, error) {
	agg, err := args.Aggregator()
	if err != nil {
		return nil, err
	}

	snapshot, err := agg.Run(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrRunInProgress) {
			logging.Logger.Warn().Err(err).Msg("Skip aggregation")
			return &Result{Skipped: true}, nil
		}

		if snapshot != nil && args.SlackWebhookURL != "" {
			alertSvc, alertErr := args.AlertService()
			if alertErr == nil {
				alertErr = alertSvc.EmitRunFailure(snapshot, err)
			}
			if alertErr != nil {
				logging.Logger.Error().Err(alertErr).Str("run_id", snapshot.RunID).Msg("Failed to emit alert")
			}
		}
		return nil, err
	}

	return &Result{
		RunID:    snapshot.RunID,
		Stage:    snapshot.Stage,
		Status:   snapshot.Status,
		Entities: snapshot.Entities.Len(),
	}, nil
}

func main() {
	lambda.Run(func(ctx context.Context, args *arguments.Arguments, event lambda.Event) (interface{}, error) {
		return Handler(ctx, args)
	})
}
