package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ShayCichocki/bountyagent/internal/listing"
	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// callLog records the order of collaborator calls across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeLister struct {
	mu        sync.Mutex
	bounties  []models.Bounty
	listErr   error
	claimErr  map[string]error
	submitErr map[string]error
	lists     int
	claims    []string
	submits   []submitCall
	log       *callLog
}

type submitCall struct {
	id, claimant, submission, proof string
}

func (f *fakeLister) ListOpenBounties(ctx context.Context) ([]models.Bounty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Bounty(nil), f.bounties...), nil
}

func (f *fakeLister) ClaimBounty(ctx context.Context, id, claimant string) (listing.ActionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("claim:" + id)
	f.claims = append(f.claims, id)
	if err := f.claimErr[id]; err != nil {
		return listing.ActionResponse{}, err
	}
	return listing.ActionResponse{Status: "claimed", Message: "ok"}, nil
}

func (f *fakeLister) SubmitBounty(ctx context.Context, id, claimant, submission, proof string) (listing.ActionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("submit:" + id)
	f.submits = append(f.submits, submitCall{id, claimant, submission, proof})
	if err := f.submitErr[id]; err != nil {
		return listing.ActionResponse{}, err
	}
	return listing.ActionResponse{Status: "submitted"}, nil
}

func (f *fakeLister) networkCalls() (claims, submits int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.claims), len(f.submits)
}

func (f *fakeLister) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type fakeEvaluator struct {
	mu        sync.Mutex
	results   map[string]models.EvaluationResult
	fallback  models.EvaluationResult
	workErr   error
	evaluated []string
	planned   []string
	skills    []string
	onEval    func(id string)
	log       *callLog
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, b models.Bounty, skills []string) models.EvaluationResult {
	f.mu.Lock()
	f.evaluated = append(f.evaluated, b.ID)
	f.skills = skills
	hook := f.onEval
	result, ok := f.results[b.ID]
	if !ok {
		result = f.fallback
	}
	f.mu.Unlock()

	f.log.add("evaluate:" + b.ID)
	if hook != nil {
		hook(b.ID)
	}
	return result
}

func (f *fakeEvaluator) GenerateWorkPlan(ctx context.Context, b models.Bounty) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.add("work:" + b.ID)
	f.planned = append(f.planned, b.ID)
	if f.workErr != nil {
		return "", f.workErr
	}
	return "plan for " + b.ID, nil
}

func (f *fakeEvaluator) evaluatedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.evaluated...)
}

type fakeRecorder struct {
	mu          sync.Mutex
	cycles      []*models.CycleReport
	evaluations []string
	submissions []models.SubmissionResult
}

func (r *fakeRecorder) RecordCycle(ctx context.Context, report *models.CycleReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles = append(r.cycles, report)
	return nil
}

func (r *fakeRecorder) RecordEvaluation(ctx context.Context, cycleID string, b models.Bounty, result models.EvaluationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluations = append(r.evaluations, b.ID)
	return nil
}

func (r *fakeRecorder) RecordSubmission(ctx context.Context, cycleID string, result models.SubmissionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, result)
	return nil
}

type fakeMetrics struct {
	mu          sync.Mutex
	cycles      int
	cycleErrors int
	verdicts    map[string]int
	claims      map[string]int
	submissions map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		verdicts:    map[string]int{},
		claims:      map[string]int{},
		submissions: map[string]int{},
	}
}

func (m *fakeMetrics) ObserveCycle(d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
	if err != nil {
		m.cycleErrors++
	}
}

func (m *fakeMetrics) ObserveEvaluation(verdict string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[verdict]++
}

func (m *fakeMetrics) ObserveClaim(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[outcome]++
}

func (m *fakeMetrics) ObserveSubmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[outcome]++
}

type fakeSignals struct {
	mu    sync.Mutex
	stop  bool
	pause bool
}

func (s *fakeSignals) ShouldStop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop
}

func (s *fakeSignals) ShouldPause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pause
}

func (s *fakeSignals) set(stop, pause bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop, s.pause = stop, pause
}

var errNetwork = errors.New("connection refused")

func openBounty(id string, reward models.Amount) models.Bounty {
	return models.Bounty{
		ID:     id,
		Title:  "Task " + id,
		Status: models.BountyStatusOpen,
		Reward: reward,
	}
}

func suitable(confidence float64) models.EvaluationResult {
	return models.EvaluationResult{
		Suitable:        true,
		Confidence:      confidence,
		Reasoning:       "matches skills",
		EstimatedEffort: models.EffortLow,
	}
}
