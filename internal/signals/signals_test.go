package signals

import (
	"os"
	"path/filepath"
	"testing"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(filepath.Join(t.TempDir(), "signals"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestNew_RequiresDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty directory")
	}
}

func TestNew_CreatesDir(t *testing.T) {
	m := newManager(t)
	info, err := os.Stat(m.Dir())
	if err != nil || !info.IsDir() {
		t.Fatalf("signals directory not created: %v", err)
	}
}

func TestKillSignal(t *testing.T) {
	m := newManager(t)

	if m.ShouldStop() {
		t.Fatal("fresh manager should not stop")
	}
	if err := m.SendKill(); err != nil {
		t.Fatalf("SendKill failed: %v", err)
	}
	if !m.ShouldStop() {
		t.Error("expected stop after kill file written")
	}

	// Kill is sticky until cleared, even if the file disappears.
	os.Remove(filepath.Join(m.Dir(), KillFile))
	if !m.ShouldStop() {
		t.Error("stop should remain set until Clear")
	}

	m.Clear()
	if m.ShouldStop() {
		t.Error("stop should reset after Clear")
	}
}

func TestPauseFollowsFile(t *testing.T) {
	m := newManager(t)

	if m.ShouldPause() {
		t.Fatal("fresh manager should not be paused")
	}
	if err := m.SendPause(); err != nil {
		t.Fatalf("SendPause failed: %v", err)
	}
	if !m.ShouldPause() {
		t.Error("expected pause while file exists")
	}
	if err := m.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if m.ShouldPause() {
		t.Error("expected pause cleared after Resume")
	}

	// Resuming when not paused is fine.
	if err := m.Resume(); err != nil {
		t.Errorf("second Resume returned %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	m := newManager(t)
	m.Close()
	m.Close()
}
