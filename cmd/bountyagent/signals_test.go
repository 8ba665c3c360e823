package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ShayCichocki/bountyagent/internal/signals"
)

func TestSignalCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BOUNTYAGENT_SIGNALS_DIR", dir)

	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}

	if err := pauseCmd.RunE(pauseCmd, nil); err != nil {
		t.Fatalf("pause error = %v", err)
	}
	if !exists(signals.PauseFile) {
		t.Error("pause did not create the pause file")
	}

	if err := resumeCmd.RunE(resumeCmd, nil); err != nil {
		t.Fatalf("resume error = %v", err)
	}
	if exists(signals.PauseFile) {
		t.Error("resume did not remove the pause file")
	}

	if err := stopCmd.RunE(stopCmd, nil); err != nil {
		t.Fatalf("stop error = %v", err)
	}
	if !exists(signals.KillFile) {
		t.Error("stop did not create the kill file")
	}
}
