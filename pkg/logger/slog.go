package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	writers []io.Writer
	source  bool
}

// New builds a *slog.Logger from options. Pretty output uses the
// charmbracelet/log handler; otherwise output is slog's JSON handler
// when WithJSON is set, or the plain text handler.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:   slog.LevelInfo,
		writers: []io.Writer{os.Stdout},
	}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer
	if len(c.writers) == 1 {
		w = c.writers[0]
	} else {
		w = io.MultiWriter(c.writers...)
	}

	if c.pretty {
		charmLevel := charmlog.InfoLevel
		if c.level == slog.LevelDebug {
			charmLevel = charmlog.DebugLevel
		}
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel,
			ReportTimestamp: true,
			ReportCaller:    c.source,
		})
		return slog.New(handler)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     c.level,
		AddSource: c.source,
	}
	if c.json {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
