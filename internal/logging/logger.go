// Package logging provides the optional file-backed debug trace for agent runs.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DebugLogger appends timestamped trace lines to a file.
// A zero or nil DebugLogger discards everything.
type DebugLogger struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// DefaultPath returns the debug log location under the given data directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "agent-debug.log")
}

// New opens (or creates) the log at path. An empty path yields a no-op logger.
func New(path string) (*DebugLogger, error) {
	if path == "" {
		return &DebugLogger{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := &DebugLogger{file: f, path: path}
	l.Log("=== agent debug log started at %s ===", time.Now().Format(time.RFC3339))
	return l, nil
}

// Nop returns a logger that writes nothing.
func Nop() *DebugLogger {
	return &DebugLogger{}
}

// Path returns the file being written, or "" for a no-op logger.
func (l *DebugLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Log writes one timestamped line.
func (l *DebugLogger) Log(format string, args ...interface{}) {
	if l == nil || l.file == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.file, "[%s] %s\n", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
	l.file.Sync()
}

// Close closes the underlying file. Safe on nil and no-op loggers.
func (l *DebugLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
