package repository

import (
	"context"
	"fmt"
	"path/filepath"

	"stoutlog/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

// WatchFile вызывает onChange при любом изменении файла path (запись, создание,
// переименование, удаление). Следит за каталогом, потому что файл заменяется
// через rename и inode меняется. Останавливается при отмене ctx.
func WatchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Base(path)
	const interesting = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name || event.Op&interesting == 0 {
					continue
				}
				logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Data file changed")
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Str("dir", dir).Msg("File watcher error")
			}
		}
	}()

	return nil
}
