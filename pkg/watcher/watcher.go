package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/org-budget/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeWrite ChangeType = iota
	ChangeTypeRemove
)

func (c ChangeType) String() string {
	if c == ChangeTypeRemove {
		return "remove"
	}
	return "write"
}

// ChangeEvent represents one or more changes to the watched file
type ChangeEvent struct {
	Type      ChangeType
	Path      string
	Count     int // raw fsnotify events folded into this one
	Timestamp time.Time
}

// FileWatcher watches a single input file. It watches the parent directory
// so that editors replacing the file through a rename are still seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for path
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: w,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching. Events stop and the channel closes when ctx ends.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		_ = fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("watching input file", "path", fw.path)

	go fw.processEvents(ctx)
	return nil
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer func() { _ = fw.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}

			change := ChangeEvent{Type: ChangeTypeWrite, Path: fw.path, Count: 1, Timestamp: time.Now()}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				change.Type = ChangeTypeRemove
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
			default:
				// chmod only
				continue
			}

			logging.Trace("input file event", "op", event.Op.String(), "path", event.Name)
			select {
			case fw.events <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}
