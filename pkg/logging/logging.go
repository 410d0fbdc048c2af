package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is process-wide logger. Level is set by LOG_LEVEL environment variable.
var Logger zerolog.Logger

func init() {
	Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := SetLogLevel(os.Getenv("LOG_LEVEL")); err != nil {
		Logger.Warn().Err(err).Str("LOG_LEVEL", os.Getenv("LOG_LEVEL")).Msg("Invalid log level, fallback to info")
		Logger = Logger.Level(zerolog.InfoLevel)
	}
}

// SetLogLevel changes log level of Logger. Empty string means info.
func SetLogLevel(level string) error {
	if level == "" {
		Logger = Logger.Level(zerolog.InfoLevel)
		return nil
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	Logger = Logger.Level(lvl)
	return nil
}
