package lambda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/m-mizutani/honeybadger/pkg/arguments"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/logging"
)

// Handler is callback function type of lambda.Run()
type Handler func(ctx context.Context, args *arguments.Arguments, event Event) (interface{}, error)

// LogError writes err with context values and stack trace of *errors.Error
func LogError(err error) {
	log := logging.Logger.Error()
	var e *errors.Error
	if errors.As(err, &e) {
		for key, value := range e.Values {
			log = log.Str(key, fmt.Sprintf("%v", value))
		}
		if kind := e.Kind(); kind != "" {
			log = log.Str("kind", string(kind))
		}
		log = log.Str("stacktrace", e.StackTrace())
	}
	log.Msg(err.Error())
}

// Invoke binds Arguments from environment variables and calls handler. Errors are logged and
// sent to Sentry.
func Invoke(ctx context.Context, handler Handler, event Event) (interface{}, error) {
	args, err := arguments.New()
	if err != nil {
		LogError(err)
		return nil, err
	}

	if err := errors.InitSentry(args.SentryDSN, args.SentryEnv); err != nil {
		logging.Logger.Warn().Err(err).Msg("Sentry is disabled")
	}
	defer errors.FlushSentry()

	resp, err := handler(ctx, args, event)
	if err != nil {
		errors.EmitSentry(err)
		LogError(err)
		return nil, err
	}

	return resp, nil
}

// Run starts Lambda Function with handler
func Run(handler Handler) {
	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		return Invoke(ctx, handler, Event(event))
	})
}
