// Package tui renders a live dashboard of the autonomous bounty loop.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/bountyagent/internal/agent"
)

const maxLogEntries = 200

// EventMsg wraps an agent event for the dashboard.
type EventMsg struct {
	Event agent.Event
}

// LoopDoneMsg tells the dashboard the loop has exited.
type LoopDoneMsg struct {
	Err error
}

// LogEntry is one line in the activity panel.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// Counters are the running totals shown in the stats panel.
type Counters struct {
	Cycles    int
	Failed    int
	Evaluated int
	Skipped   int
	Claimed   int
	Submitted int
	Rejected  int
}

// Dashboard is the bubbletea model for `loop --tui`.
type Dashboard struct {
	wallet   string
	dryRun   bool
	interval time.Duration

	spinner  spinner.Model
	status   string
	busy     bool
	counters Counters
	logs     []LogEntry

	width    int
	height   int
	quitting bool
	done     bool
	doneErr  error
}

// NewDashboard creates a dashboard for an agent with the given settings.
func NewDashboard(wallet string, dryRun bool, interval time.Duration) *Dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	return &Dashboard{
		wallet:   wallet,
		dryRun:   dryRun,
		interval: interval,
		spinner:  s,
		status:   "starting",
		width:    80,
		height:   24,
	}
}

// NewProgram creates a program for the dashboard. Feed it with Forward.
func NewProgram(d *Dashboard) *tea.Program {
	return tea.NewProgram(d, tea.WithAltScreen())
}

// Forward relays agent events into the program until the channel closes.
func Forward(p *tea.Program, events <-chan agent.Event) {
	for ev := range events {
		p.Send(EventMsg{Event: ev})
	}
}

// Counters returns the current totals.
func (d *Dashboard) Counters() Counters {
	return d.counters
}

// Status returns the current status line.
func (d *Dashboard) Status() string {
	return d.status
}

// Logs returns the activity entries, oldest first.
func (d *Dashboard) Logs() []LogEntry {
	return d.logs
}

// Init implements tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	return d.spinner.Tick
}

// Update implements tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			d.quitting = true
			return d, tea.Quit
		}

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case EventMsg:
		d.handleEvent(msg.Event)

	case LoopDoneMsg:
		d.done = true
		d.busy = false
		d.doneErr = msg.Err
		d.status = "stopped"
		if msg.Err != nil {
			d.addLog(time.Now(), "ERROR", fmt.Sprintf("loop ended: %v", msg.Err))
		}
	}

	return d, nil
}

func (d *Dashboard) handleEvent(ev agent.Event) {
	switch ev.Type {
	case agent.EventLoopStarted:
		d.status = "running"
		d.addLog(ev.Timestamp, "INFO", "autonomous loop started")
	case agent.EventLoopStopped:
		d.status = "stopped"
		d.busy = false
		d.addLog(ev.Timestamp, "INFO", "autonomous loop stopped")
	case agent.EventLoopPaused:
		d.status = "paused"
		d.busy = false
	case agent.EventCycleStarted:
		d.status = "running cycle"
		d.busy = true
	case agent.EventDiscovered:
		d.addLog(ev.Timestamp, "INFO", fmt.Sprintf("discovered %d new bounties", ev.Count))
	case agent.EventEvaluated:
		d.counters.Evaluated++
		if ev.Evaluation != nil {
			d.addLog(ev.Timestamp, "INFO", fmt.Sprintf("evaluated %q: suitable=%v confidence=%.2f",
				ev.BountyTitle, ev.Evaluation.Suitable, ev.Evaluation.Confidence))
		}
	case agent.EventSkipped:
		d.counters.Skipped++
	case agent.EventOverBudget:
		d.counters.Rejected++
		d.addLog(ev.Timestamp, "WARN", fmt.Sprintf("%q: %s", ev.BountyTitle, ev.Message))
	case agent.EventClaimed:
		d.counters.Claimed++
		d.addLog(ev.Timestamp, "INFO", fmt.Sprintf("claimed %q", ev.BountyTitle))
	case agent.EventClaimFailed:
		d.addLog(ev.Timestamp, "ERROR", fmt.Sprintf("claim %q failed: %v", ev.BountyTitle, ev.Error))
	case agent.EventSubmitted:
		d.counters.Submitted++
		d.addLog(ev.Timestamp, "INFO", fmt.Sprintf("submitted %q (%s)", ev.BountyTitle, ev.Message))
	case agent.EventSubmitFailed:
		d.addLog(ev.Timestamp, "ERROR", fmt.Sprintf("submit %q failed: %s", ev.BountyTitle, ev.Message))
	case agent.EventCycleCompleted:
		d.counters.Cycles++
		d.busy = false
	case agent.EventCycleFailed:
		d.counters.Cycles++
		d.counters.Failed++
		d.busy = false
		d.addLog(ev.Timestamp, "ERROR", fmt.Sprintf("cycle failed: %v", ev.Error))
	case agent.EventWaitingForCycle:
		d.status = "waiting " + ev.Message
		d.busy = false
	}
}

func (d *Dashboard) addLog(ts time.Time, level, message string) {
	if ts.IsZero() {
		ts = time.Now()
	}
	d.logs = append(d.logs, LogEntry{Timestamp: ts, Level: level, Message: message})
	if len(d.logs) > maxLogEntries {
		d.logs = d.logs[len(d.logs)-maxLogEntries:]
	}
}

// View implements tea.Model.
func (d *Dashboard) View() string {
	if d.quitting {
		return ""
	}

	mode := "live"
	if d.dryRun {
		mode = "dry run"
	}
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("bountyagent"),
		subtitleStyle.Render(fmt.Sprintf("wallet %s · %s · every %s", d.wallet, mode, d.interval)),
	)

	indicator := " "
	if d.busy {
		indicator = d.spinner.View()
	}
	status := fmt.Sprintf("%s %s %s", indicator, labelStyle.Render("status"), valueStyle.Render(d.status))

	stats := panelStyle.Render(d.renderCounters())
	activity := panelStyle.Width(max(d.width-4, 20)).Render(d.renderLogs(d.logLines()))

	footer := footerStyle.Render("q quit")
	if d.done {
		footer = footerStyle.Render("loop finished · q quit")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", status, stats, activity, footer)
}

func (d *Dashboard) renderCounters() string {
	c := d.counters
	pairs := []struct {
		label string
		value int
	}{
		{"cycles", c.Cycles},
		{"failed", c.Failed},
		{"evaluated", c.Evaluated},
		{"skipped", c.Skipped},
		{"over budget", c.Rejected},
		{"claimed", c.Claimed},
		{"submitted", c.Submitted},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s %s", labelStyle.Render(p.label), valueStyle.Render(fmt.Sprint(p.value))))
	}
	return strings.Join(parts, "   ")
}

// logLines is how many activity entries fit under the header and stats.
func (d *Dashboard) logLines() int {
	return max(d.height-12, 3)
}

func (d *Dashboard) renderLogs(n int) string {
	if len(d.logs) == 0 {
		return labelStyle.Render("no activity yet")
	}

	start := max(len(d.logs)-n, 0)
	lines := make([]string, 0, n)
	for _, entry := range d.logs[start:] {
		style := successStyle
		switch entry.Level {
		case "WARN":
			style = warnStyle
		case "ERROR":
			style = errorStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s",
			timeStyle.Render(entry.Timestamp.Format("15:04:05")),
			style.Render(entry.Message)))
	}
	return strings.Join(lines, "\n")
}
