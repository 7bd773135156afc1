package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type ContextKey string

const LoggerKey ContextKey = "logger"

var (
	baseMu sync.RWMutex
	base   = New()
)

// New returns a console logger used until the LoggerService starts.
func New() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}

func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func setBase(l zerolog.Logger) {
	baseMu.Lock()
	base = l
	baseMu.Unlock()
}

// Base returns a copy of the process-wide logger.
func Base() *zerolog.Logger {
	baseMu.RLock()
	l := base
	baseMu.RUnlock()
	return &l
}

func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, l)
}

// FromContext returns the request logger stored in ctx, or Base.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return &l
	}
	return Base()
}
