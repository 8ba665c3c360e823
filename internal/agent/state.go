package agent

import (
	"sort"
	"sync"
)

// State is the agent's in-memory ledger of bounty ids it has acted on.
// It is not persisted; a restarted agent starts empty.
type State struct {
	mu        sync.RWMutex
	claimed   map[string]struct{}
	completed map[string]struct{}
	skipped   map[string]struct{}
}

// Snapshot is a sorted, point-in-time copy of the ledger.
type Snapshot struct {
	Claimed   []string `json:"claimed"`
	Completed []string `json:"completed"`
	Skipped   []string `json:"skipped"`
}

// NewState returns an empty ledger.
func NewState() *State {
	return &State{
		claimed:   make(map[string]struct{}),
		completed: make(map[string]struct{}),
		skipped:   make(map[string]struct{}),
	}
}

// Known reports whether id is in any of the three sets.
func (s *State) Known(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, c := s.claimed[id]
	_, d := s.completed[id]
	_, k := s.skipped[id]
	return c || d || k
}

// IsClaimed reports whether id has been claimed.
func (s *State) IsClaimed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.claimed[id]
	return ok
}

// IsCompleted reports whether work for id has been submitted.
func (s *State) IsCompleted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.completed[id]
	return ok
}

// IsSkipped reports whether id was judged unsuitable.
func (s *State) IsSkipped(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.skipped[id]
	return ok
}

func (s *State) markClaimed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimed[id] = struct{}{}
}

func (s *State) markCompleted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[id] = struct{}{}
}

func (s *State) markSkipped(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped[id] = struct{}{}
}

// Snapshot copies the ledger.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Claimed:   sortedKeys(s.claimed),
		Completed: sortedKeys(s.completed),
		Skipped:   sortedKeys(s.skipped),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
