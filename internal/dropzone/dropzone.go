// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dropzone watches a directory and hands files dropped into it to a
// callback once the directory has been quiet for a settle period.
package dropzone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/pdiddy/pdfbuddy/internal/intake"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// DefaultSettle is how long the directory must be quiet before a drop is
// delivered.
const DefaultSettle = 500 * time.Millisecond

// ErrNotDirectory is returned when the watched path is not a directory.
var ErrNotDirectory = errors.New("drop zone is not a directory")

// Watcher delivers dropped files in batches.
type Watcher struct {
	dir    string
	settle time.Duration
	logger zerolog.Logger
}

// New creates a watcher for cfg.Dir.
func New(cfg types.WatchConfig, logger zerolog.Logger) *Watcher {
	settle := cfg.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{dir: cfg.Dir, settle: settle, logger: logger}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Run watches until ctx is cancelled. Files created or written in the
// directory are collected and passed to onDrop, sorted by name, after no
// further events arrive for the settle period. Hidden files are ignored.
// onDrop runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, onDrop func([]types.RawFile)) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("drop zone %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, w.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.dir, err)
	}
	w.logger.Info().Str("dir", w.dir).Dur("settle", w.settle).Msg("watching drop zone")

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if hidden(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.settle)
		case <-timer.C:
			files := collect(pending)
			pending = make(map[string]struct{})
			if len(files) == 0 {
				continue
			}
			w.logger.Debug().Int("files", len(files)).Msg("drop received")
			onDrop(files)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			w.logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

// Feed returns a drop callback that stages files into in. Order-sensitive
// intakes append, others replace, like dropping onto a page that already
// holds a selection.
func Feed(in *intake.Intake, onRejected func([]types.RawFile)) func([]types.RawFile) {
	mode := intake.ModeReplace
	if in.OrderSensitive() {
		mode = intake.ModeAppend
	}
	return func(files []types.RawFile) {
		if rejected := in.Select(files, mode); len(rejected) > 0 && onRejected != nil {
			onRejected(rejected)
		}
	}
}

// collect turns pending paths into raw files, skipping anything that has
// vanished or is not a regular file.
func collect(pending map[string]struct{}) []types.RawFile {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files := make([]types.RawFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, types.RawFile{
			Name:    filepath.Base(p),
			Size:    info.Size(),
			Payload: types.PathPayload(p),
		})
	}
	return files
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
