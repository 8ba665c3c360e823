// Package agent runs the autonomous bounty loop: discover open bounties, judge them,
// claim the good ones, generate the work and submit it.
package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/bountyagent/internal/listing"
	"github.com/ShayCichocki/bountyagent/internal/logging"
	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// ConfidenceThreshold is the minimum judgment confidence required to claim.
const ConfidenceThreshold = 0.6

const (
	// DefaultPollInterval is the wait between autonomous cycles.
	DefaultPollInterval = 5 * time.Minute
	// DefaultMaxEvaluations caps oracle judgments per cycle.
	DefaultMaxEvaluations = 5
	// DefaultRewardDivisor converts minor reward units into display units.
	DefaultRewardDivisor = 1_000_000
	// DefaultProofTemplate builds the placeholder proof reference from the
	// shortened claimant and the bounty id.
	DefaultProofTemplate = "https://github.com/%s/bounty-%s"
)

// ErrNoWallet is returned by New when no claimant identifier is configured.
var ErrNoWallet = errors.New("agent: wallet address is required")

// Lister is the subset of the listing service the agent uses.
type Lister interface {
	ListOpenBounties(ctx context.Context) ([]models.Bounty, error)
	ClaimBounty(ctx context.Context, id, claimant string) (listing.ActionResponse, error)
	SubmitBounty(ctx context.Context, id, claimant, submission, proof string) (listing.ActionResponse, error)
}

// Evaluator judges bounties and produces the work for claimed ones.
type Evaluator interface {
	Evaluate(ctx context.Context, b models.Bounty, skills []string) models.EvaluationResult
	GenerateWorkPlan(ctx context.Context, b models.Bounty) (string, error)
}

// Recorder persists an audit trail of agent activity.
type Recorder interface {
	RecordCycle(ctx context.Context, r *models.CycleReport) error
	RecordEvaluation(ctx context.Context, cycleID string, b models.Bounty, result models.EvaluationResult) error
	RecordSubmission(ctx context.Context, cycleID string, result models.SubmissionResult) error
}

// Metrics receives counters for agent activity.
type Metrics interface {
	ObserveCycle(d time.Duration, err error)
	ObserveEvaluation(verdict string)
	ObserveClaim(outcome string)
	ObserveSubmission(outcome string)
}

// Signals reports out-of-band stop and pause requests.
type Signals interface {
	ShouldStop() bool
	ShouldPause() bool
}

// Config holds the agent's policy settings.
type Config struct {
	// Wallet is the claimant identifier sent with claims and submissions.
	Wallet string
	// Skills describes what the agent can do. Empty means general development.
	Skills []string
	// MaxReward is the ceiling, in display units, above which bounties are not claimed.
	MaxReward float64
	// RewardDivisor converts raw reward amounts into display units.
	RewardDivisor float64
	// DryRun simulates claim and submit without calling the listing service.
	DryRun bool
	// PollInterval is the wait between cycles in the autonomous loop.
	PollInterval time.Duration
	// MaxEvaluations caps how many candidates are judged per cycle.
	MaxEvaluations int
	// ProofTemplate is a two-verb format string (claimant prefix, bounty id).
	ProofTemplate string
}

func (c *Config) applyDefaults() {
	if c.RewardDivisor <= 0 {
		c.RewardDivisor = DefaultRewardDivisor
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxEvaluations <= 0 {
		c.MaxEvaluations = DefaultMaxEvaluations
	}
	if c.ProofTemplate == "" {
		c.ProofTemplate = DefaultProofTemplate
	}
}

// Option configures optional Agent collaborators.
type Option func(*Agent)

// WithRecorder attaches a history recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Agent) { a.recorder = r }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

// WithSignals attaches a stop/pause signal source checked before each loop cycle.
func WithSignals(s Signals) Option {
	return func(a *Agent) { a.signals = s }
}

// WithLogger attaches a debug trace logger.
func WithLogger(l *logging.DebugLogger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithEvents enables the event stream with the given buffer size.
func WithEvents(bufferSize int) Option {
	return func(a *Agent) { a.events = newEmitter(bufferSize) }
}

// Agent is one autonomous bounty worker. Each Agent owns its own ledger.
type Agent struct {
	cfg       Config
	lister    Lister
	evaluator Evaluator
	state     *State

	recorder Recorder
	metrics  Metrics
	signals  Signals
	logger   *logging.DebugLogger
	events   *emitter

	running atomic.Bool
}

// New creates an idle Agent. The wallet is mandatory; other zero-valued settings
// take their defaults.
func New(cfg Config, lister Lister, evaluator Evaluator, opts ...Option) (*Agent, error) {
	if cfg.Wallet == "" {
		return nil, ErrNoWallet
	}
	if lister == nil || evaluator == nil {
		return nil, errors.New("agent: lister and evaluator are required")
	}
	cfg.applyDefaults()

	a := &Agent{
		cfg:       cfg,
		lister:    lister,
		evaluator: evaluator,
		state:     NewState(),
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the effective configuration.
func (a *Agent) Config() Config {
	return a.cfg
}

// State returns the agent's ledger.
func (a *Agent) State() *State {
	return a.state
}

// Events returns the event stream, or nil if WithEvents was not given.
func (a *Agent) Events() <-chan Event {
	if a.events == nil {
		return nil
	}
	return a.events.Events()
}

// CloseEvents closes the event stream. Call it once no more cycles will run.
func (a *Agent) CloseEvents() {
	if a.events != nil {
		a.events.Close()
	}
}
