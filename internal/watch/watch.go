// Package watch calls back when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

// DefaultDebounce collapses the bursts of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// File watches the directory holding path and invokes onChange after writes
// to path settle. Editors that save by renaming a temp file over the target
// are handled because the directory, not the file, is watched. File blocks
// until ctx is done; onChange errors are logged and do not stop the watch.
func File(ctx context.Context, path string, debounce time.Duration, onChange func() error) error {
	log := commonlog.GetLogger("wingman.watch")

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	log.Infof("watching %s", abs)

	timer := time.NewTimer(debounce)
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
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debugf("event %s", event)
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch error: %v", err)
		case <-timer.C:
			if err := onChange(); err != nil {
				log.Errorf("%s: %v", abs, err)
			}
		}
	}
}
