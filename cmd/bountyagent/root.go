package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errUsage marks errors that have already been reported along with usage text.
var errUsage = errors.New("usage error")

var (
	debugLog   bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "bountyagent",
	Short: "Autonomous bounty-hunting agent",
	Long: `bountyagent polls a bounty listing service, asks a reasoning oracle whether each
open bounty fits its skills, claims the ones it is confident about, generates the work
and submits it with a proof reference.

With no subcommand it runs the autonomous loop (same as 'bountyagent loop').

Configuration is read from ~/.config/bountyagent/config.yaml, a project-level
.bountyagent.yaml, BOUNTYAGENT_* environment variables and the flags below.
An oracle API key and a wallet address are required.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLoop,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("api-key", "", "Oracle API key (or OPENAI_API_KEY / ANTHROPIC_API_KEY)")
	pf.String("wallet", "", "Claimant wallet address (or WALLET_ADDRESS)")
	pf.String("provider", "", "Oracle provider: openai or anthropic")
	pf.String("model", "", "Oracle model id")
	pf.String("endpoint", "", "Oracle endpoint (chat completions URL or anthropic base URL)")
	pf.StringSlice("skills", nil, "Comma-separated agent skills")
	pf.Float64("max-reward", 0, "Do not claim bounties paying more than this (display units)")
	pf.Bool("dry-run", false, "Simulate claim and submit without calling the listing service")
	pf.Int("interval", 0, "Seconds to wait between cycles")
	pf.String("base-url", "", "Listing service base URL")
	pf.String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	pf.BoolVar(&debugLog, "debug", false, "Write a debug trace to the data directory")

	loopCmd.Flags().BoolVar(&loopTUI, "tui", false, "Show a live dashboard")
	rootCmd.Flags().BoolVar(&loopTUI, "tui", false, "Show a live dashboard")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(loopCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(versionCmd)
}
