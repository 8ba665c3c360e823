package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/bountyagent/internal/config"
)

var configYAML bool

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify bountyagent configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/bountyagent/config.yaml
Project-specific overrides can be placed in .bountyagent.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		switch len(args) {
		case 0:
			if configYAML {
				return writeConfigYAML(cfg)
			}
			displayAllConfig(cfg)
		case 1:
			value, err := getConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
		default:
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Printf("Set %s = %s\n", args[0], displayValue(args[0], args[1]))
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configYAML, "yaml", false, "Print the effective configuration as YAML")
}

// displayAllConfig prints all configuration values sorted by key.
func displayAllConfig(cfg *config.Config) {
	settings := displaySettings(cfg)
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, formatSetting(settings[k]))
	}
}

// displaySettings is cfg.Settings with the API key masked.
func displaySettings(cfg *config.Config) map[string]interface{} {
	settings := cfg.Settings()
	settings["oracle.api_key"] = config.MaskAPIKey(cfg.Oracle.APIKey)
	return settings
}

// writeConfigYAML prints the masked configuration as nested YAML.
func writeConfigYAML(cfg *config.Config) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(nestSettings(displaySettings(cfg))); err != nil {
		return err
	}
	return enc.Close()
}

// nestSettings turns dot-notation keys into one map per section.
func nestSettings(settings map[string]interface{}) map[string]map[string]interface{} {
	nested := make(map[string]map[string]interface{})
	for key, value := range settings {
		section, name, _ := strings.Cut(key, ".")
		if nested[section] == nil {
			nested[section] = make(map[string]interface{})
		}
		nested[section][name] = value
	}
	return nested
}

func formatSetting(v interface{}) string {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return "(none)"
		}
		return strings.Join(val, ", ")
	case string:
		if val == "" {
			return "(not set)"
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

func displayValue(key, value string) string {
	if strings.EqualFold(key, "oracle.api_key") {
		return config.MaskAPIKey(value)
	}
	return value
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	value, ok := displaySettings(cfg)[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return formatSetting(value), nil
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "oracle.provider":
		if value != config.ProviderOpenAI && value != config.ProviderAnthropic {
			return fmt.Errorf("invalid provider %q: must be %s or %s", value, config.ProviderOpenAI, config.ProviderAnthropic)
		}
		cfg.Oracle.Provider = value
	case "oracle.api_key":
		cfg.Oracle.APIKey = value
	case "oracle.model":
		cfg.Oracle.Model = value
	case "oracle.endpoint":
		cfg.Oracle.Endpoint = value
	case "oracle.temperature":
		cfg.Oracle.Temperature, err = parseFloat(key, value)
	case "oracle.max_tokens":
		cfg.Oracle.MaxTokens, err = parseInt(key, value)
	case "oracle.timeout":
		cfg.Oracle.Timeout, err = parseDuration(key, value)
	case "oracle.use_aws_bedrock":
		cfg.Oracle.UseAWSBedrock, err = parseBool(key, value)
	case "oracle.aws_region":
		cfg.Oracle.AWSRegion = value
	case "oracle.aws_profile":
		cfg.Oracle.AWSProfile = value
	case "agent.wallet":
		cfg.Agent.Wallet = value
	case "agent.skills":
		cfg.Agent.Skills = splitSkills(value)
	case "agent.max_reward":
		cfg.Agent.MaxReward, err = parseFloat(key, value)
	case "agent.reward_divisor":
		cfg.Agent.RewardDivisor, err = parseFloat(key, value)
		if err == nil && cfg.Agent.RewardDivisor <= 0 {
			err = fmt.Errorf("invalid value for %s: must be positive", key)
		}
	case "agent.dry_run":
		cfg.Agent.DryRun, err = parseBool(key, value)
	case "agent.poll_interval":
		cfg.Agent.PollInterval, err = parseDuration(key, value)
	case "agent.max_evaluations":
		cfg.Agent.MaxEvaluations, err = parseInt(key, value)
	case "agent.proof_template":
		if strings.Count(value, "%s") != 2 {
			return fmt.Errorf("invalid value for %s: needs exactly two %%s placeholders", key)
		}
		cfg.Agent.ProofTemplate = value
	case "listing.base_url":
		cfg.Listing.BaseURL = value
	case "listing.timeout":
		cfg.Listing.Timeout, err = parseDuration(key, value)
	case "history.enabled":
		cfg.History.Enabled, err = parseBool(key, value)
	case "history.path":
		cfg.History.Path = value
	case "metrics.addr":
		cfg.Metrics.Addr = value
	case "signals.dir":
		cfg.Signals.Dir = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return err
}

func splitSkills(value string) []string {
	skills := []string{}
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return f, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return n, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return b, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
