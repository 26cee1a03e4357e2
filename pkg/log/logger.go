// Package log configures the library-wide structured logger. It wraps
// zerolog and wires the warning system in pkg/errors into it.
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/modelbench/modelbench/pkg/errors"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// Setup initializes the global logger. suppressWarnings is an explicit
// configuration flag: when true, library warnings (undefined metrics,
// convergence issues) are dropped instead of logged.
func Setup(level string, suppressWarnings bool) error {
	lvl, err := toLevel(level)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()

	errors.MuteWarnings(suppressWarnings)
	errors.SetZerologWarnFunc(func(warning error) {
		ev := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(obj)
		}
		ev.Msg(warning.Error())
	})
	return nil
}

func toLevel(level string) (zerolog.Level, error) {
	switch level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// L returns the global logger. The pointer keeps chained calls such as
// L().Info() working, mirroring zerolog's own package-level logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &logger
}

// SetOutput redirects the global logger, primarily for tests.
func SetOutput(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}
