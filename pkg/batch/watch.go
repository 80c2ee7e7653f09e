package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls changed with the path of every file under root that is created
// or written and would have been picked by FindFiles. New directories are
// watched as they appear. Watch returns when ctx is done or the watcher fails.
func Watch(ctx context.Context, root string, extensions, ignore []string, changed func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if event.Has(fsnotify.Create) && !isExcludedDir(info.Name()) {
					if err := watchTree(watcher, event.Name); err != nil {
						return err
					}
				}
				continue
			}

			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				continue
			}
			if hasExtension(event.Name, extensions) && !shouldIgnore(filepath.ToSlash(rel), ignore) {
				changed(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// watchTree adds dir and every directory below it that FindFiles would enter.
func watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && isExcludedDir(info.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
