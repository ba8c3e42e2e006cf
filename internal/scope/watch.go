package scope

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// reloadDebounce collapses the burst of events editors emit on save.
const reloadDebounce = 200 * time.Millisecond

// ReloadFunc is called with each freshly loaded project.
type ReloadFunc func(*Project)

// Watch loads path, calls onLoad, then reloads and calls onLoad again every time the
// file changes, until ctx is cancelled. Reload failures are logged and skipped.
func Watch(ctx context.Context, path string, log logrus.FieldLogger, onLoad ReloadFunc) error {
	p, err := LoadFile(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file instead of writing in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	onLoad(p)

	target := filepath.Clean(path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("dataset watcher error")
		case <-pending:
			pending = nil
			p, err := LoadFile(path)
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("dataset reload failed")
				continue
			}
			log.WithField("path", path).Debug("dataset reloaded")
			onLoad(p)
		}
	}
}
