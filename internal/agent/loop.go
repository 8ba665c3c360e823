package agent

import (
	"context"
	"log"
	"time"
)

// StartLoop runs cycles until Stop is called, a kill signal arrives, or ctx is
// cancelled. Cycle errors are logged and the loop carries on after the normal wait.
// Calling StartLoop while the agent is already running logs and returns nil.
// It returns ctx.Err() when the context ended the loop.
func (a *Agent) StartLoop(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		log.Printf("[agent] loop already running")
		return nil
	}

	log.Printf("[agent] autonomous loop started (interval %s, dry_run=%v)", a.cfg.PollInterval, a.cfg.DryRun)
	a.emit(Event{Type: EventLoopStarted, Message: a.cfg.PollInterval.String()})

	var loopErr error
	for a.running.Load() {
		if !a.tick(ctx) {
			break
		}

		// Stop during the cycle still lets the wait finish.
		if err := a.wait(ctx); err != nil {
			a.running.Store(false)
			loopErr = err
			break
		}
	}

	log.Printf("[agent] autonomous loop stopped")
	a.emit(Event{Type: EventLoopStopped})
	return loopErr
}

// tick runs one loop iteration, honouring stop and pause signals.
// It returns false when a kill signal ended the loop.
func (a *Agent) tick(ctx context.Context) bool {
	if a.signals != nil {
		if a.signals.ShouldStop() {
			log.Printf("[agent] kill signal received")
			a.Stop()
			return false
		}
		if a.signals.ShouldPause() {
			log.Printf("[agent] paused, skipping cycle")
			a.emit(Event{Type: EventLoopPaused})
			return true
		}
	}

	if _, err := a.RunCycle(ctx); err != nil {
		log.Printf("[agent] cycle error: %v", err)
	}
	return true
}

// wait sleeps for the poll interval. Stop does not cut it short; ctx does.
func (a *Agent) wait(ctx context.Context) error {
	a.emit(Event{Type: EventWaitingForCycle, Message: a.cfg.PollInterval.String()})

	timer := time.NewTimer(a.cfg.PollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stop asks the loop to exit once the current cycle and the wait after it finish.
func (a *Agent) Stop() {
	if a.running.Swap(false) {
		log.Printf("[agent] stopping after current cycle")
	}
}

// IsRunning reports whether the autonomous loop is active.
func (a *Agent) IsRunning() bool {
	return a.running.Load()
}
