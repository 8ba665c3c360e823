package oracle

import "testing"

func TestTokenTracker_AddMultiple(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 100)
	tracker.Add(50, 25)

	input, output := tracker.Total()

	if input != 350 {
		t.Errorf("Input tokens = %d, want 350", input)
	}
	if output != 175 {
		t.Errorf("Output tokens = %d, want 175", output)
	}
	if tracker.Calls() != 3 {
		t.Errorf("Calls = %d, want 3", tracker.Calls())
	}
}

func TestTokenTracker_Reset(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Reset()

	input, output := tracker.Total()
	if input != 0 || output != 0 {
		t.Errorf("After reset: input=%d, output=%d; want 0, 0", input, output)
	}
	if tracker.Calls() != 0 {
		t.Errorf("Calls after reset = %d, want 0", tracker.Calls())
	}
}
