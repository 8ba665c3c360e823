package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// printStatus prints a status line with a colored symbol.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderBounties writes a table of bounties.
func renderBounties(w io.Writer, bounties []models.Bounty, divisor float64) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Reward", "Tags"})
	for _, b := range bounties {
		reward := b.RewardFormatted
		if reward == "" {
			reward = fmt.Sprintf("%.2f", b.Reward.Display(divisor))
		}
		tw.AppendRow(table.Row{b.ID, truncate(b.Title, 60), b.Status, reward, strings.Join(b.Tags, ", ")})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d bounties", len(bounties))})
	tw.Render()
}

// renderReport writes a cycle summary followed by its submissions.
func renderReport(w io.Writer, r *models.CycleReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Cycle " + r.ID)
	tw.AppendRows([]table.Row{
		{"Duration", r.Duration().Round(time.Millisecond)},
		{"Discovered", r.Discovered},
		{"Evaluated", r.Evaluated},
		{"Skipped", len(r.Skipped)},
		{"Over budget", len(r.Rejected)},
		{"Claimed", len(r.Claimed)},
		{"Completed", r.Completed()},
		{"Dry run", r.DryRun},
	})
	if r.Error != "" {
		tw.AppendRow(table.Row{"Error", r.Error})
	}
	tw.Render()

	if len(r.Submissions) == 0 {
		return
	}

	st := table.NewWriter()
	st.SetOutputMirror(w)
	st.AppendHeader(table.Row{"Bounty", "Status", "Proof"})
	for _, s := range r.Submissions {
		st.AppendRow(table.Row{s.BountyID, truncate(s.Status, 60), s.Proof})
	}
	st.Render()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
