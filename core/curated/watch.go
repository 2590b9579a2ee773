package curated

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"tunescout/logger"
)

// Watch reloads the catalog whenever the override file changes on disk.
// It blocks until ctx is done; run it in its own goroutine. Reload
// failures keep the previous table and are only logged.
func (c *Catalog) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors typically replace the file rather
	// than writing it in place, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)
	logger.Info("watching curated catalog file", logger.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := c.LoadFile(target); err != nil {
				logger.Warn("curated catalog reload failed", logger.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("curated catalog watcher error", logger.ErrorField(err))
		}
	}
}
