package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bountyagent/pkg/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show listing service statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	stats, err := newListingClient(cfg).Stats(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(stats)
	}
	renderStats(stats, cfg.Agent.RewardDivisor)
	return nil
}

func renderStats(s models.Stats, divisor float64) {
	reward := s.TotalRewardFormatted
	if reward == "" {
		reward = fmt.Sprintf("%.2f", s.TotalReward.Display(divisor))
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Listing service")
	tw.AppendRows([]table.Row{
		{"Total bounties", s.Total},
		{"Open", s.Open},
		{"Claimed", s.Claimed},
		{"Completed", s.Completed},
		{"Total reward", reward},
	})
	tw.Render()
}
