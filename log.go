package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger creates the server's logger. It writes human readable lines.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).Level(level).With().Timestamp().
		Str("component", "blablad").Logger()
}

// defaultLogger is what we log with before we've read the config.
func defaultLogger() zerolog.Logger {
	return newLogger(os.Stderr, zerolog.InfoLevel)
}
