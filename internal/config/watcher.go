package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch monitors the config file at path and invokes onChange with the
// previous and freshly loaded config after every successful reload. A reload
// that fails to parse or validate keeps the previous config. It blocks until
// the context is cancelled.
func Watch(ctx context.Context, path string, initial *Config, log zerolog.Logger, onChange func(old, new *Config)) error {
	if path == "" {
		path = DefaultPath()
	}
	current := initial
	if current == nil {
		current = Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops a
	// watch set on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	log.Debug().Str("path", path).Msg("Watching config file")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			next, err := Load(path)
			if err != nil {
				log.Warn().Err(err).Msg("Config reload failed, keeping previous")
				continue
			}

			prev := current
			current = next
			log.Info().Str("path", path).Msg("Config reloaded")
			onChange(prev, next)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Config watcher error")
		}
	}
}
