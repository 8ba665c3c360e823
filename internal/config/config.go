// Package config handles configuration loading and management for bountyagent.
// It supports XDG config paths, project-level overrides, environment variables and CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Oracle providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Built-in defaults.
const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEndpoint       = "https://api.openai.com/v1/chat/completions"
	DefaultListingURL     = "https://api.bountyboard.io"
	DefaultProofTemplate  = "https://github.com/%s/bounty-%s"
	DefaultRewardDivisor  = 1_000_000
	DefaultMaxReward      = 100.0
	DefaultPollInterval   = 5 * time.Minute
	DefaultMaxEvaluations = 5
	DefaultTemperature    = 0.3
	DefaultMaxTokens      = 2000
)

// Config holds all configuration for bountyagent.
type Config struct {
	Oracle  OracleConfig  `mapstructure:"oracle"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Listing ListingConfig `mapstructure:"listing"`
	History HistoryConfig `mapstructure:"history"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Signals SignalsConfig `mapstructure:"signals"`
}

// OracleConfig holds reasoning oracle settings.
type OracleConfig struct {
	// Provider selects the wire protocol: "openai" (chat completions) or "anthropic".
	Provider string `mapstructure:"provider"`
	// APIKey is the bearer credential. Mandatory.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier sent with every request.
	Model string `mapstructure:"model"`
	// Endpoint is the chat-completions URL, or the base URL for the anthropic provider.
	Endpoint    string        `mapstructure:"endpoint"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// UseAWSBedrock routes the anthropic provider through AWS Bedrock.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// AgentConfig holds the claim policy and loop settings.
type AgentConfig struct {
	// Wallet is the claimant identifier sent with claims and submissions. Mandatory.
	Wallet string `mapstructure:"wallet"`
	// Skills describes what the agent can do; sent to the oracle with every evaluation.
	Skills []string `mapstructure:"skills"`
	// MaxReward is the largest reward, in display units, the agent claims on its own.
	MaxReward float64 `mapstructure:"max_reward"`
	// RewardDivisor converts minor units into display units.
	RewardDivisor float64 `mapstructure:"reward_divisor"`
	// DryRun simulates claim and submit without contacting the listing service.
	DryRun bool `mapstructure:"dry_run"`
	// PollInterval is the wait between loop cycles.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// MaxEvaluations caps oracle evaluations per cycle.
	MaxEvaluations int `mapstructure:"max_evaluations"`
	// ProofTemplate builds proof references from a claimant prefix and a bounty id.
	ProofTemplate string `mapstructure:"proof_template"`
}

// ListingConfig holds listing service settings.
type ListingConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MetricsConfig holds Prometheus exporter settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the exporter.
	Addr string `mapstructure:"addr"`
}

// SignalsConfig holds the stop/pause signal directory.
type SignalsConfig struct {
	Dir string `mapstructure:"dir"`
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"provider":   "oracle.provider",
	"api-key":    "oracle.api_key",
	"model":      "oracle.model",
	"endpoint":   "oracle.endpoint",
	"wallet":     "agent.wallet",
	"skills":     "agent.skills",
	"max-reward": "agent.max_reward",
	"dry-run":    "agent.dry_run",
	"base-url":   "listing.base_url",
	"metrics":    "metrics.addr",
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (BOUNTYAGENT_*, OPENAI_API_KEY, WALLET_ADDRESS)
// 2. Project config (.bountyagent.yaml in current directory or parent)
// 3. User config (~/.config/bountyagent/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags is Load with CLI flag overrides applied on top of everything else.
// Only flags the user explicitly set take effect.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	bindEnv(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	return decode(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Oracle.APIKey = expandEnv(cfg.Oracle.APIKey)
	cfg.Agent.Wallet = expandEnv(cfg.Agent.Wallet)
	cfg.Agent.Skills = cleanSkills(cfg.Agent.Skills)

	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("BOUNTYAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("oracle.api_key", "BOUNTYAGENT_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("agent.wallet", "BOUNTYAGENT_WALLET", "WALLET_ADDRESS")
	v.BindEnv("agent.skills", "BOUNTYAGENT_SKILLS", "AGENT_SKILLS")
	v.BindEnv("agent.dry_run", "BOUNTYAGENT_DRY_RUN", "DRY_RUN")
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}

	// --interval is given in seconds while the config key is a duration.
	if f := flags.Lookup("interval"); f != nil && f.Changed {
		secs, err := flags.GetInt("interval")
		if err != nil {
			return fmt.Errorf("reading --interval: %w", err)
		}
		v.Set("agent.poll_interval", (time.Duration(secs) * time.Second).String())
	}

	return nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	for key, value := range cfg.Settings() {
		v.Set(key, value)
	}

	return v.WriteConfig()
}

// Settings flattens the configuration into dot-notation keys.
// Durations are rendered as strings so the result round-trips through YAML.
func (c *Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"oracle.provider":        c.Oracle.Provider,
		"oracle.api_key":         c.Oracle.APIKey,
		"oracle.model":           c.Oracle.Model,
		"oracle.endpoint":        c.Oracle.Endpoint,
		"oracle.temperature":     c.Oracle.Temperature,
		"oracle.max_tokens":      c.Oracle.MaxTokens,
		"oracle.timeout":         c.Oracle.Timeout.String(),
		"oracle.use_aws_bedrock": c.Oracle.UseAWSBedrock,
		"oracle.aws_region":      c.Oracle.AWSRegion,
		"oracle.aws_profile":     c.Oracle.AWSProfile,
		"agent.wallet":           c.Agent.Wallet,
		"agent.skills":           c.Agent.Skills,
		"agent.max_reward":       c.Agent.MaxReward,
		"agent.reward_divisor":   c.Agent.RewardDivisor,
		"agent.dry_run":          c.Agent.DryRun,
		"agent.poll_interval":    c.Agent.PollInterval.String(),
		"agent.max_evaluations":  c.Agent.MaxEvaluations,
		"agent.proof_template":   c.Agent.ProofTemplate,
		"listing.base_url":       c.Listing.BaseURL,
		"listing.timeout":        c.Listing.Timeout.String(),
		"history.enabled":        c.History.Enabled,
		"history.path":           c.History.Path,
		"metrics.addr":           c.Metrics.Addr,
		"signals.dir":            c.Signals.Dir,
	}
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// HistoryPath returns the configured history database path, or the XDG default.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(DataDir(), "history.db")
}

// SignalsDir returns the configured signal directory, or the XDG default.
func (c *Config) SignalsDir() string {
	if c.Signals.Dir != "" {
		return c.Signals.Dir
	}
	return filepath.Join(DataDir(), "signals")
}

// DataDir returns the XDG data directory for bountyagent.
func DataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".local", "share", "bountyagent")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "bountyagent")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("oracle.provider", ProviderOpenAI)
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.model", DefaultModel)
	v.SetDefault("oracle.endpoint", DefaultEndpoint)
	v.SetDefault("oracle.temperature", DefaultTemperature)
	v.SetDefault("oracle.max_tokens", DefaultMaxTokens)
	v.SetDefault("oracle.timeout", "0s")
	v.SetDefault("oracle.use_aws_bedrock", false)
	v.SetDefault("oracle.aws_region", "")
	v.SetDefault("oracle.aws_profile", "")

	v.SetDefault("agent.wallet", "")
	v.SetDefault("agent.skills", []string{})
	v.SetDefault("agent.max_reward", DefaultMaxReward)
	v.SetDefault("agent.reward_divisor", DefaultRewardDivisor)
	v.SetDefault("agent.dry_run", false)
	v.SetDefault("agent.poll_interval", DefaultPollInterval.String())
	v.SetDefault("agent.max_evaluations", DefaultMaxEvaluations)
	v.SetDefault("agent.proof_template", DefaultProofTemplate)

	v.SetDefault("listing.base_url", DefaultListingURL)
	v.SetDefault("listing.timeout", "0s")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("signals.dir", "")
}

// getUserConfigDir returns the XDG config directory for bountyagent.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bountyagent")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "bountyagent")
	}
	return filepath.Join(home, ".config", "bountyagent")
}

// findProjectConfig searches for .bountyagent.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".bountyagent.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// cleanSkills trims entries and drops empties. A single comma-joined entry is split,
// which happens when a YAML file carries `skills: "go, rust"`.
func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks mandatory values and ranges. Missing credential or wallet is
// reported with ErrNoAPIKey or ErrNoWallet so callers can print usage.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Oracle.APIKey) == "" && !c.Oracle.UseAWSBedrock {
		return ErrNoAPIKey
	}
	if strings.TrimSpace(c.Agent.Wallet) == "" {
		return ErrNoWallet
	}

	switch c.Oracle.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("invalid oracle.provider %q: must be %s or %s", c.Oracle.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if c.Oracle.UseAWSBedrock && c.Oracle.Provider != ProviderAnthropic {
		return fmt.Errorf("oracle.use_aws_bedrock requires oracle.provider=%s", ProviderAnthropic)
	}
	if c.Oracle.MaxTokens <= 0 {
		return fmt.Errorf("oracle.max_tokens must be positive, got %d", c.Oracle.MaxTokens)
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		return fmt.Errorf("oracle.temperature must be within [0, 2], got %v", c.Oracle.Temperature)
	}
	if c.Agent.RewardDivisor <= 0 {
		return fmt.Errorf("agent.reward_divisor must be positive, got %v", c.Agent.RewardDivisor)
	}
	if c.Agent.MaxReward < 0 {
		return fmt.Errorf("agent.max_reward must not be negative, got %v", c.Agent.MaxReward)
	}
	if c.Agent.PollInterval <= 0 {
		return fmt.Errorf("agent.poll_interval must be positive, got %s", c.Agent.PollInterval)
	}
	if c.Agent.MaxEvaluations <= 0 {
		return fmt.Errorf("agent.max_evaluations must be positive, got %d", c.Agent.MaxEvaluations)
	}
	if c.Listing.BaseURL == "" {
		return fmt.Errorf("listing.base_url is required")
	}
	return nil
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:    ProviderOpenAI,
			Model:       DefaultModel,
			Endpoint:    DefaultEndpoint,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Agent: AgentConfig{
			Skills:         []string{},
			MaxReward:      DefaultMaxReward,
			RewardDivisor:  DefaultRewardDivisor,
			PollInterval:   DefaultPollInterval,
			MaxEvaluations: DefaultMaxEvaluations,
			ProofTemplate:  DefaultProofTemplate,
		},
		Listing: ListingConfig{
			BaseURL: DefaultListingURL,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}
