package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bountyagent/internal/history"
	"github.com/ShayCichocki/bountyagent/internal/signals"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent agent activity",
	Long: `Display recent cycles, evaluations and submissions from the run history,
plus any pending stop or pause signal.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "Number of rows per section")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if mgr, err := signals.New(cfg.SignalsDir()); err == nil {
		if mgr.ShouldStop() {
			printStatus("■", "Stop requested", color.FgRed)
		}
		if mgr.ShouldPause() {
			printStatus("⏸", "Paused", color.FgYellow)
		}
		mgr.Close()
	}

	path := cfg.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No run history yet. Run 'bountyagent once' or 'bountyagent loop' to start.")
		return nil
	}

	db, err := history.OpenAndMigrate(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()

	totals, err := db.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d cycles, %d evaluations (%d suitable), %d submissions (%d failed)\n\n",
		totals.Cycles, totals.Evaluations, totals.Suitable, totals.Submissions, totals.Failed)

	cycles, err := db.RecentCycles(ctx, statusLimit)
	if err != nil {
		return err
	}
	ct := table.NewWriter()
	ct.SetOutputMirror(os.Stdout)
	ct.SetTitle("Recent cycles")
	ct.AppendHeader(table.Row{"Started", "Duration", "Found", "Evaluated", "Claimed", "Done", "Dry run", "Error"})
	for _, c := range cycles {
		duration := "-"
		if !c.FinishedAt.IsZero() {
			duration = c.FinishedAt.Sub(c.StartedAt).String()
		}
		ct.AppendRow(table.Row{c.StartedAt.Local().Format("2006-01-02 15:04:05"), duration,
			c.Discovered, c.Evaluated, c.Claimed, c.Completed, c.DryRun, truncate(c.Error, 40)})
	}
	ct.Render()

	evals, err := db.RecentEvaluations(ctx, statusLimit)
	if err != nil {
		return err
	}
	et := table.NewWriter()
	et.SetOutputMirror(os.Stdout)
	et.SetTitle("Recent evaluations")
	et.AppendHeader(table.Row{"Bounty", "Title", "Suitable", "Confidence", "Effort", "Reasoning"})
	for _, e := range evals {
		et.AppendRow(table.Row{e.BountyID, truncate(e.Title, 30), e.Result.Suitable,
			fmt.Sprintf("%.2f", e.Result.Confidence), e.Result.EstimatedEffort, truncate(e.Result.Reasoning, 50)})
	}
	et.Render()

	subs, err := db.RecentSubmissions(ctx, statusLimit)
	if err != nil {
		return err
	}
	st := table.NewWriter()
	st.SetOutputMirror(os.Stdout)
	st.SetTitle("Recent submissions")
	st.AppendHeader(table.Row{"Bounty", "Status", "Proof", "When"})
	for _, s := range subs {
		st.AppendRow(table.Row{s.Result.BountyID, truncate(s.Result.Status, 40), s.Result.Proof,
			s.CreatedAt.Local().Format("2006-01-02 15:04:05")})
	}
	st.Render()

	return nil
}
