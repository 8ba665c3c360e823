package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bountyagent/pkg/models"
)

var discoverAll bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List open bounties without evaluating them",
	Long: `Fetch bounties from the listing service and print the open ones.
No oracle calls are made and nothing is claimed, so no API key or wallet is needed.

Examples:
  bountyagent discover
  bountyagent discover --all      # include claimed and completed bounties
  bountyagent discover --json`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverAll, "all", false, "Show bounties in every status")
	discoverCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := newListingClient(cfg)
	var bounties []models.Bounty
	if discoverAll {
		bounties, err = client.ListBounties(ctx)
	} else {
		bounties, err = client.ListOpenBounties(ctx)
	}
	if err != nil {
		return err
	}
	if bounties == nil {
		bounties = []models.Bounty{}
	}

	if jsonOutput {
		return printJSON(bounties)
	}
	renderBounties(os.Stdout, bounties, cfg.Agent.RewardDivisor)
	return nil
}
