package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bountyagent/internal/config"
	"github.com/ShayCichocki/bountyagent/internal/tui"
)

var loopTUI bool

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Run the autonomous loop until interrupted",
	Long: `Run cycles forever, waiting the poll interval between them. Errors in a cycle
are logged and the loop carries on. Ctrl+C (or 'bountyagent stop') ends the loop.
'bountyagent pause' suspends cycles until 'bountyagent resume'.`,
	RunE: runLoop,
}

// interruptContext returns a context cancelled on SIGINT or SIGTERM.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidConfig(cmd)
	if err != nil {
		return err
	}

	opts := runtimeOptions{withSignals: true}
	if loopTUI {
		opts.eventBuffer = 256
	}
	rt, err := newRuntime(cfg, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.signals != nil {
		rt.signals.Clear()
	}

	ctx, stop := interruptContext(cmd.Context())
	defer stop()
	rt.serveMetrics(ctx, cfg.Metrics.Addr)

	if loopTUI {
		return runLoopWithTUI(ctx, rt, cfg)
	}

	mode := "live"
	if cfg.Agent.DryRun {
		mode = "dry run"
	}
	printStatus("▶", fmt.Sprintf("Starting agent for %s (%s, every %s)",
		config.ShortWallet(cfg.Agent.Wallet), mode, cfg.Agent.PollInterval), color.FgCyan)

	// Interrupts end the wait through ctx; Stop makes sure no further cycle starts.
	go func() {
		<-ctx.Done()
		rt.agent.Stop()
	}()

	if err := rt.agent.StartLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	printStatus("■", "Agent stopped", color.FgYellow)
	return nil
}

// runLoopWithTUI runs the loop behind the dashboard. Quitting the dashboard stops the loop.
func runLoopWithTUI(ctx context.Context, rt *runtime, cfg *config.Config) error {
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dashboard := tui.NewDashboard(config.ShortWallet(cfg.Agent.Wallet), cfg.Agent.DryRun, cfg.Agent.PollInterval)
	program := tui.NewProgram(dashboard)

	go tui.Forward(program, rt.agent.Events())

	loopDone := make(chan error, 1)
	go func() {
		err := rt.agent.StartLoop(ctx)
		rt.agent.CloseEvents()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		program.Send(tui.LoopDoneMsg{Err: err})
		loopDone <- err
	}()

	_, tuiErr := program.Run()
	rt.agent.Stop()
	cancel()

	loopErr := <-loopDone
	if tuiErr != nil {
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", tuiErr)
		return tuiErr
	}
	return loopErr
}
