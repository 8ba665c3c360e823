package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bountyagent/internal/agent"
	"github.com/ShayCichocki/bountyagent/internal/config"
	"github.com/ShayCichocki/bountyagent/internal/evaluate"
	"github.com/ShayCichocki/bountyagent/internal/history"
	"github.com/ShayCichocki/bountyagent/internal/listing"
	"github.com/ShayCichocki/bountyagent/internal/logging"
	"github.com/ShayCichocki/bountyagent/internal/metrics"
	"github.com/ShayCichocki/bountyagent/internal/oracle"
	"github.com/ShayCichocki/bountyagent/internal/signals"
)

// loadConfig resolves configuration for cmd, applying any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadWithFlags(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadValidConfig is loadConfig plus validation. Missing mandatory settings print
// usage and return errUsage so the process exits non-zero without doing any work.
func loadValidConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if config.IsMissingRequired(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			cmd.Usage()
			return nil, errUsage
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newListingClient builds the listing client from configuration.
func newListingClient(cfg *config.Config) *listing.Client {
	client := listing.New(cfg.Listing.BaseURL)
	client.Timeout = cfg.Listing.Timeout
	return client
}

// runtime bundles an agent with the collaborators that need closing.
type runtime struct {
	agent   *agent.Agent
	tracker *oracle.TokenTracker
	metrics *metrics.Metrics
	history *history.DB
	signals *signals.Manager
	logger  *logging.DebugLogger
}

type runtimeOptions struct {
	withSignals bool
	eventBuffer int
}

// newRuntime wires config into a ready agent. Optional collaborators that fail to
// start are logged and left out.
func newRuntime(cfg *config.Config, opts runtimeOptions) (*runtime, error) {
	completer, tracker, err := newOracle(cfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{tracker: tracker, logger: logging.Nop()}
	var agentOpts []agent.Option

	if debugLog {
		l, err := logging.New(logging.DefaultPath(config.DataDir()))
		if err != nil {
			log.Printf("[agent] debug log disabled: %v", err)
		} else {
			rt.logger = l
			agentOpts = append(agentOpts, agent.WithLogger(l))
		}
	}

	if cfg.History.Enabled {
		db, err := history.OpenAndMigrate(cfg.HistoryPath())
		if err != nil {
			log.Printf("[history] disabled: %v", err)
		} else {
			rt.history = db
			agentOpts = append(agentOpts, agent.WithRecorder(db))
		}
	}

	if cfg.Metrics.Addr != "" {
		rt.metrics = metrics.New(tracker.Total)
		agentOpts = append(agentOpts, agent.WithMetrics(rt.metrics))
	}

	if opts.withSignals {
		mgr, err := signals.New(cfg.SignalsDir())
		if err != nil {
			log.Printf("[signals] disabled: %v", err)
		} else {
			rt.signals = mgr
			agentOpts = append(agentOpts, agent.WithSignals(mgr))
		}
	}

	if opts.eventBuffer > 0 {
		agentOpts = append(agentOpts, agent.WithEvents(opts.eventBuffer))
	}

	a, err := agent.New(agentConfig(cfg), newListingClient(cfg), evaluate.New(completer), agentOpts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.agent = a
	return rt, nil
}

// serveMetrics starts the metrics endpoint in the background if configured.
func (rt *runtime) serveMetrics(ctx context.Context, addr string) {
	if rt.metrics == nil {
		return
	}
	go func() {
		if err := rt.metrics.Serve(ctx, addr); err != nil {
			log.Printf("[metrics] %v", err)
		}
	}()
}

// Close releases everything the runtime opened.
func (rt *runtime) Close() {
	if rt.signals != nil {
		rt.signals.Close()
	}
	if rt.history != nil {
		rt.history.Close()
	}
	rt.logger.Close()
}

func agentConfig(cfg *config.Config) agent.Config {
	return agent.Config{
		Wallet:         cfg.Agent.Wallet,
		Skills:         cfg.Agent.Skills,
		MaxReward:      cfg.Agent.MaxReward,
		RewardDivisor:  cfg.Agent.RewardDivisor,
		DryRun:         cfg.Agent.DryRun,
		PollInterval:   cfg.Agent.PollInterval,
		MaxEvaluations: cfg.Agent.MaxEvaluations,
		ProofTemplate:  cfg.Agent.ProofTemplate,
	}
}
