package agent

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// EventType names an agent event.
type EventType string

const (
	EventLoopStarted     EventType = "loop_started"
	EventLoopStopped     EventType = "loop_stopped"
	EventLoopPaused      EventType = "loop_paused"
	EventCycleStarted    EventType = "cycle_started"
	EventCycleCompleted  EventType = "cycle_completed"
	EventCycleFailed     EventType = "cycle_failed"
	EventDiscovered      EventType = "bounties_discovered"
	EventEvaluated       EventType = "bounty_evaluated"
	EventSkipped         EventType = "bounty_skipped"
	EventOverBudget      EventType = "bounty_over_budget"
	EventClaimed         EventType = "bounty_claimed"
	EventClaimFailed     EventType = "claim_failed"
	EventWorkGenerated   EventType = "work_generated"
	EventSubmitted       EventType = "bounty_submitted"
	EventSubmitFailed    EventType = "submit_failed"
	EventWaitingForCycle EventType = "waiting"
)

// Event is one step of agent progress, consumed by the dashboard and console printer.
type Event struct {
	Type        EventType
	CycleID     string
	BountyID    string
	BountyTitle string
	Message     string
	Error       error
	// Evaluation is set on EventEvaluated.
	Evaluation *models.EvaluationResult
	// Report is set on EventCycleCompleted and EventCycleFailed.
	Report *models.CycleReport
	// Count carries the number of candidates on EventDiscovered.
	Count     int
	Timestamp time.Time
}

// emitter is a buffered event channel that drops events when no one drains it.
type emitter struct {
	events  chan Event
	dropped atomic.Uint64
	mu      sync.RWMutex
	closed  bool
}

func newEmitter(bufferSize int) *emitter {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &emitter{events: make(chan Event, bufferSize)}
}

// Emit sends an event, waiting briefly for the reader before dropping it.
func (e *emitter) Emit(ev Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	select {
	case e.events <- ev:
		return
	default:
	}

	select {
	case e.events <- ev:
	case <-time.After(100 * time.Millisecond):
		count := e.dropped.Add(1)
		if count%10 == 1 {
			log.Printf("[agent] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, ev.Type)
		}
	}
}

func (e *emitter) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *emitter) Events() <-chan Event {
	return e.events
}

// Close closes the channel. Later Emit calls are ignored.
func (e *emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
}

func (a *Agent) emit(ev Event) {
	if a.events == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	a.events.Emit(ev)
}
