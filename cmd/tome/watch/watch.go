// Package watchcmder provides the watch command: it observes a
// directory and re-ingests supported documents as they are created or
// modified, with a debounce window to absorb editor write bursts.
package watchcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/cmd/tome/setup"
	"github.com/papyrusco/tome/pkg/document"
	"github.com/papyrusco/tome/pkg/engine"
	"github.com/papyrusco/tome/pkg/logger"
)

const debounceWindow = 500 * time.Millisecond

type watchCommander struct {
	dir     string
	logFile string

	dataDir string
	store   string
	debug   bool
	logger  *zap.Logger
	slogger *slog.Logger
}

const watchLongDesc string = `Watch a directory and keep the index current. Whenever a supported
document is created or modified under the watched directory, the file
is re-chunked, re-embedded, and added to the vector store.

Pretty progress lines go to stdout; pass --log-file to also append
JSON records for later inspection.

Example:
  tome watch ./docs
  tome watch ./docs --log-file ~/.tome/watch.log`

const watchShortDesc string = "Watch a directory and re-ingest changed documents"

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.dir = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.dataDir, _ = cmd.Flags().GetString("data-dir")
			cmder.store, _ = cmd.Flags().GetString("store")

			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Append JSON log records to this file")

	return cmd
}

func (c *watchCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	slogger, closeLog, err := c.buildSlogger()
	if err != nil {
		return err
	}
	defer closeLog()
	c.slogger = slogger

	info, err := os.Stat(c.dir)
	if err != nil {
		return fmt.Errorf("checking watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %q is not a directory", c.dir)
	}

	runtime, err := setup.Build(ctx, setup.Opts{
		DataDir:       c.dataDir,
		StoreProvider: c.store,
	}, c.logger)
	if err != nil {
		return err
	}
	defer runtime.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("watching %s: %w", c.dir, err)
	}

	c.slogger.Info("watching directory",
		"dir", c.dir,
		"extensions", strings.Join(document.SupportedExtensions(), ", "),
	)

	return c.loop(ctx, runtime, watcher)
}

// loop drains watcher events, coalescing rapid successive writes to the
// same file into a single ingest after the debounce window elapses.
func (c *watchCommander) loop(ctx context.Context, runtime *setup.Runtime, watcher *fsnotify.Watcher) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !supported(event.Name) {
				continue
			}

			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			timer = nil
			for path := range pending {
				c.ingestFile(ctx, runtime, path)
			}
			pending = make(map[string]struct{})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.slogger.Error("watcher error", "error", err)
		}
	}
}

func (c *watchCommander) ingestFile(ctx context.Context, runtime *setup.Runtime, path string) {
	start := time.Now()

	result, err := runtime.Engine.Ingest(ctx, path)
	if err != nil {
		c.slogger.Error("ingest failed", "file", filepath.Base(path), "error", err)
		return
	}
	if result.Status != engine.StatusSuccess {
		c.slogger.Warn("nothing indexed", "file", filepath.Base(path), "message", result.Message)
		return
	}

	c.slogger.Info("re-indexed document",
		"file", filepath.Base(path),
		"chunks", result.Stats.TotalChunks,
		"records", result.Stats.VectorStore.RecordCount,
		"took", time.Since(start).Round(time.Millisecond).String(),
	)
}

// buildSlogger wires the pretty stdout logger, optionally fanned out
// with a JSON file logger when --log-file is set.
func (c *watchCommander) buildSlogger() (*slog.Logger, func(), error) {
	pretty := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
	)

	if c.logFile == "" {
		return pretty, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	jsonLogger := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)

	return logger.Multi(pretty, jsonLogger), func() { _ = f.Close() }, nil
}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range document.SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
