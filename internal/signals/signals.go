// Package signals lets separate processes steer a running agent through files in a
// signals directory: a "kill" file stops the loop, a "pause" file suspends cycles
// for as long as it exists.
package signals

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// KillFile is the name of the stop signal file.
	KillFile = "kill"
	// PauseFile is the name of the pause signal file.
	PauseFile = "pause"
)

// Manager watches a signals directory for kill and pause files.
type Manager struct {
	dir string

	mu     sync.RWMutex
	stop   bool
	paused bool

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// New creates the signals directory if needed and starts watching it.
// If the watcher cannot start, ShouldStop/ShouldPause fall back to polling the files.
func New(dir string) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("signals directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create signals directory: %w", err)
	}

	m := &Manager{
		dir:  dir,
		done: make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[signals] file watcher unavailable, polling instead: %v", err)
		return m, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		log.Printf("[signals] cannot watch %s, polling instead: %v", dir, err)
		return m, nil
	}
	m.watcher = watcher

	go m.watch()
	return m, nil
}

// Dir returns the watched directory.
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) watch() {
	for {
		select {
		case <-m.done:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.apply(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[signals] watcher error: %v", err)
		}
	}
}

func (m *Manager) apply(event fsnotify.Event) {
	present := event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
	gone := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch filepath.Base(event.Name) {
	case KillFile:
		if present {
			m.stop = true
		}
	case PauseFile:
		if present {
			m.paused = true
		} else if gone {
			m.paused = false
		}
	}
}

// ShouldStop reports whether a kill signal has been seen. Once seen it stays set
// until Clear is called.
func (m *Manager) ShouldStop() bool {
	if m.exists(KillFile) {
		m.mu.Lock()
		m.stop = true
		m.mu.Unlock()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stop
}

// ShouldPause reports whether the pause file is currently present.
func (m *Manager) ShouldPause() bool {
	present := m.exists(PauseFile)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = present
	return m.paused
}

// SendKill writes the kill file.
func (m *Manager) SendKill() error {
	return m.write(KillFile)
}

// SendPause writes the pause file.
func (m *Manager) SendPause() error {
	return m.write(PauseFile)
}

// Resume removes the pause file.
func (m *Manager) Resume() error {
	if err := os.Remove(filepath.Join(m.dir, PauseFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pause signal: %w", err)
	}
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	return nil
}

// Clear removes both signal files and resets the recorded state.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stop = false
	m.paused = false
	os.Remove(filepath.Join(m.dir, KillFile))
	os.Remove(filepath.Join(m.dir, PauseFile))
}

// Close stops the watcher. Safe to call more than once.
func (m *Manager) Close() {
	m.once.Do(func() {
		close(m.done)
		if m.watcher != nil {
			m.watcher.Close()
		}
	})
}

func (m *Manager) write(name string) error {
	path := filepath.Join(m.dir, name)
	if err := os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644); err != nil {
		return fmt.Errorf("write %s signal: %w", name, err)
	}
	return nil
}

func (m *Manager) exists(name string) bool {
	_, err := os.Stat(filepath.Join(m.dir, name))
	return err == nil
}
