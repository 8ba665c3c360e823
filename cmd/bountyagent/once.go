package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run exactly one cycle and exit",
	Long: `Run a single discover, evaluate, claim, work and submit cycle, print the
report and exit. Combine with --dry-run to see what the agent would do.`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the cycle report as JSON")
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidConfig(cmd)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := interruptContext(cmd.Context())
	defer stop()
	rt.serveMetrics(ctx, cfg.Metrics.Addr)

	report, cycleErr := rt.agent.RunCycle(ctx)

	if jsonOutput {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		renderReport(os.Stdout, report)
		in, out := rt.tracker.Total()
		fmt.Printf("Oracle usage: %d calls, %d input / %d output tokens\n", rt.tracker.Calls(), in, out)
	}

	return cycleErr
}
