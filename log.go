package fslib

import (
	"os"

	"github.com/rs/zerolog"
)

// logger is the package-level sink used for debug-level tracing of
// composition changes (a branch added, a backend mounted) and warnings
// about the one documented non-atomic operation. Per-path branch and
// mount selection is not logged. It is silent by default: a
// library must not write to stdout unless a host application opts in.
var logger zerolog.Logger = zerolog.Nop()

// SetLogger installs l as the package-level logger. Pass zerolog.Nop()
// (the default) to silence all output again.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// NewConsoleLogger returns a human-readable console logger at the given
// level, suitable for development and tests.
func NewConsoleLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func componentLogger(component string) *zerolog.Logger {
	l := logger.With().Str("component", component).Logger()
	return &l
}
