package errors

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

var sentryEnabled bool

// InitSentry configures the Sentry client. Emitting is a no-op until InitSentry succeeds with a
// non-empty DSN.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return Wrap(err, "Failed sentry.Init")
	}

	sentryEnabled = true
	return nil
}

// EmitSentry sends err to Sentry with context values of *Error as extras
func EmitSentry(err error) *sentry.EventID {
	if !sentryEnabled || err == nil {
		return nil
	}

	var evID *sentry.EventID
	sentry.WithScope(func(scope *sentry.Scope) {
		var e *Error
		if As(err, &e) {
			for key, value := range e.Values {
				scope.SetExtra(key, fmt.Sprintf("%v", value))
			}
			if e.kind != "" {
				scope.SetTag("kind", string(e.kind))
			}
		}
		evID = sentry.CaptureException(err)
	})

	return evID
}

// FlushSentry waits for buffered events to be sent
func FlushSentry() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
