package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/nvm/kshell/internal/logger"
)

// ReloadCallback is called when the configuration file changes on disk.
// It receives the new configuration and should return an error if applying
// it fails.
type ReloadCallback func(*Config) error

// Watcher watches the shell configuration file for external edits (another
// kshell instance, or an operator editing aliases by hand) and reloads it.
type Watcher struct {
	configPath string
	callback   ReloadCallback
	watcher    *fsnotify.Watcher
	done       chan struct{}
}

// NewWatcher creates a new file watcher for the given config file.
func NewWatcher(configPath string, callback ReloadCallback) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Watch the directory instead of the file to handle atomic writes
	// (Save renames a temp file into place; editors do the same)
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &Watcher{
		configPath: absPath,
		callback:   callback,
		watcher:    watcher,
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching the configuration file for changes.
func (w *Watcher) Start() {
	go w.watch()
}

// Stop stops watching the configuration file.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}

func (w *Watcher) watch() {
	logger.Debug("Watching configuration file", map[string]any{
		"path": w.configPath,
	})

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			eventPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if eventPath != w.configPath {
				continue
			}

			// Write for in-place edits, create for atomic replacement
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.handleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error", map[string]any{
				"error": err.Error(),
			})

		case <-w.done:
			return
		}
	}
}

// handleReload loads the new configuration and hands it to the callback.
// A file that fails to load or apply leaves the previous state active.
func (w *Watcher) handleReload() {
	newCfg, err := Load(w.configPath)
	if err != nil {
		logger.Warn("Failed to reload configuration, keeping previous state", map[string]any{
			"path":  w.configPath,
			"error": err.Error(),
		})
		return
	}

	if err := w.callback(newCfg); err != nil {
		logger.Warn("Failed to apply new configuration, keeping previous state", map[string]any{
			"path":  w.configPath,
			"error": err.Error(),
		})
		return
	}

	logger.Debug("Configuration reloaded", map[string]any{
		"path": w.configPath,
	})
}
