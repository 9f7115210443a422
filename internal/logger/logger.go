// Package logger builds the application zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/go-petr/pet-atm/pkg/configpkg"
)

// New returns a JSON logger writing to stderr, or a human readable one in development.
func New(config configpkg.Config) zerolog.Logger {
	return NewWithOutput(config, os.Stderr)
}

// NewWithOutput is like New but writes to out.
func NewWithOutput(config configpkg.Config, out io.Writer) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	log := zerolog.New(out).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()

	if config.Environment == "development" {
		log = log.
			Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(zerolog.TraceLevel).
			With().
			Caller().
			Logger()
	}

	return log
}

// WithSession tags every event of an ATM session with a fresh session id.
func WithSession(log zerolog.Logger) (zerolog.Logger, string) {
	sessionID := uuid.NewString()
	return log.With().Str("session_id", sessionID).Logger(), sessionID
}
