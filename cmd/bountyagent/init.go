package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/bountyagent/internal/config"
)

var (
	initForce bool
	initUser  bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a starter configuration file",
	Long: `Write a starter configuration with the built-in defaults.

By default a project-level .bountyagent.yaml is written to the given directory
(or the current one). With --user the file goes to ~/.config/bountyagent/config.yaml.

The API key and wallet are written as ${OPENAI_API_KEY} and ${WALLET_ADDRESS}
references so secrets stay in the environment.

Examples:
  bountyagent init              # Write ./.bountyagent.yaml
  bountyagent init ./hunter     # Write ./hunter/.bountyagent.yaml
  bountyagent init --user       # Write the user config
  bountyagent init --force      # Overwrite an existing file`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().BoolVar(&initUser, "user", false, "Write the user config instead of a project file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := initTarget(args)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		printStatus("•", fmt.Sprintf("%s already exists. Use --force to overwrite.", path), color.FgYellow)
		return nil
	}

	data, err := starterConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	printStatus("✓", "Wrote "+path, color.FgGreen)

	checkCredentials()
	return nil
}

func initTarget(args []string) (string, error) {
	if initUser {
		return config.GetUserConfigPath(), nil
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return filepath.Join(abs, ".bountyagent.yaml"), nil
}

// starterConfig renders the default configuration as nested YAML.
func starterConfig() ([]byte, error) {
	cfg := config.Default()
	cfg.Oracle.APIKey = "${OPENAI_API_KEY}"
	cfg.Agent.Wallet = "${WALLET_ADDRESS}"

	data, err := yaml.Marshal(nestSettings(cfg.Settings()))
	if err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}
	return append([]byte("# bountyagent configuration\n"), data...), nil
}

// checkCredentials reports whether the mandatory settings are available from the environment.
func checkCredentials() {
	fmt.Println()
	if config.GetAPIKeySource(nil) == config.KeySourceEnv {
		printStatus("✓", "Oracle API key found in environment", color.FgGreen)
	} else {
		printStatus("✗", "No oracle API key in environment (export OPENAI_API_KEY or BOUNTYAGENT_API_KEY)", color.FgRed)
	}

	if os.Getenv("WALLET_ADDRESS") != "" || os.Getenv("BOUNTYAGENT_WALLET") != "" {
		printStatus("✓", "Wallet address found in environment", color.FgGreen)
	} else {
		printStatus("✗", "No wallet in environment (export WALLET_ADDRESS)", color.FgRed)
	}
}
