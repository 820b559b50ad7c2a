package ai

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wazivo/internal/errors"
)

// PromptWatcher reloads a PromptStore when its prompt files change
type PromptWatcher struct {
	mu sync.Mutex

	store       *PromptStore
	files       []string
	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	// onReload is called after every reload attempt, mostly for tests
	onReload func(error)
	logger   *errors.Logger

	running bool
}

// NewPromptWatcher creates a watcher for the files backing store
func NewPromptWatcher(store *PromptStore, debounceDelay time.Duration, logger *errors.Logger) *PromptWatcher {
	if debounceDelay == 0 {
		debounceDelay = 500 * time.Millisecond
	}

	return &PromptWatcher{
		store:         store,
		files:         store.Files(),
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}
}

// Start begins watching. It is a no-op when the store has no prompt files.
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}
	if len(pw.files) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher
	pw.updateModTimes()

	for _, file := range pw.files {
		// Watching the directory catches editors that save by rename.
		dir := filepath.Dir(file)
		if err := pw.fsWatcher.Add(dir); err != nil {
			pw.logger.Warn("Failed to watch prompt directory", "directory", dir, "error", err)
		}
	}

	pw.running = true
	go pw.watchLoop()

	pw.logger.Info("Prompt file watcher started",
		"files", pw.files,
		"debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.running = false

	if err := pw.fsWatcher.Close(); err != nil {
		pw.logger.LogError(err, "Failed to close prompt file watcher")
		return err
	}
	pw.logger.Info("Prompt file watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.running
}

func (pw *PromptWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if pw.shouldProcessEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "Prompt file watcher error")

		case <-pw.reloadChan:
			if pw.hasAnyFileChanged() {
				err := pw.store.Reload()
				if err != nil {
					pw.logger.LogError(err, "Failed to reload prompts, keeping previous version")
				} else {
					pw.logger.Info("Prompt files changed, prompts reloaded")
				}
				if pw.onReload != nil {
					pw.onReload(err)
				}
			}

		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	watched := slices.ContainsFunc(pw.files, func(file string) bool {
		return event.Name == file || filepath.Base(event.Name) == filepath.Base(file)
	})
	return watched && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
		}
	})
}

func (pw *PromptWatcher) updateModTimes() {
	for _, file := range pw.files {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		}
	}
}

func (pw *PromptWatcher) hasAnyFileChanged() bool {
	changed := false
	for _, file := range pw.files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}
		if last, ok := pw.lastModTime[file]; !ok || !stat.ModTime().Equal(last) {
			pw.lastModTime[file] = stat.ModTime()
			changed = true
		}
	}
	return changed
}
