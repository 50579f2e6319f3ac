// Package watcher re-runs a callback whenever the clippings file changes.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a single file and invokes OnChange after edits settle.
// The parent directory is watched because most tools replace the file
// rather than writing it in place.
type Watcher struct {
	Path     string
	Debounce time.Duration
	OnChange func(ctx context.Context)
}

func New(path string, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{
		Path:     path,
		Debounce: 2 * time.Second,
		OnChange: onChange,
	}
}

// Run blocks until ctx is cancelled, firing OnChange on relevant events.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsWatcher.Close()

	dir := filepath.Dir(w.Path)
	if err := fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	log.Printf("Watching %s for changes", w.Path)

	base := filepath.Base(w.Path)
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: devices flush the file in several writes.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %v", err)

		case <-fire:
			w.OnChange(ctx)
		}
	}
}
