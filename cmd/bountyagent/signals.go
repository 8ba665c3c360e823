package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/bountyagent/internal/signals"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running agent loop to stop",
	Long: `Drop a kill file into the signal directory. A running loop notices it,
finishes its current cycle and exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSignals(cmd, func(m *signals.Manager) error {
			if err := m.SendKill(); err != nil {
				return err
			}
			printStatus("■", "Stop requested", color.FgRed)
			return nil
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause a running agent loop",
	Long:  `Drop a pause file into the signal directory. Cycles are skipped until 'bountyagent resume'.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSignals(cmd, func(m *signals.Manager) error {
			if err := m.SendPause(); err != nil {
				return err
			}
			printStatus("⏸", "Pause requested", color.FgYellow)
			return nil
		})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused agent loop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSignals(cmd, func(m *signals.Manager) error {
			if err := m.Resume(); err != nil {
				return err
			}
			printStatus("▶", "Resumed", color.FgGreen)
			return nil
		})
	},
}

func withSignals(cmd *cobra.Command, fn func(*signals.Manager) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := signals.New(cfg.SignalsDir())
	if err != nil {
		return fmt.Errorf("signal directory: %w", err)
	}
	defer m.Close()
	return fn(m)
}
