// Package config provides credential and claimant helpers.
package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no oracle credential is configured.
var ErrNoAPIKey = errors.New("no oracle API key configured (set BOUNTYAGENT_API_KEY or OPENAI_API_KEY)")

// ErrNoWallet is returned when no claimant wallet is configured.
var ErrNoWallet = errors.New("no wallet address configured (set BOUNTYAGENT_WALLET or WALLET_ADDRESS)")

// IsMissingRequired reports whether err is one of the mandatory-setting errors.
func IsMissingRequired(err error) bool {
	return errors.Is(err, ErrNoAPIKey) || errors.Is(err, ErrNoWallet)
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}

// ShortWallet abbreviates a wallet address for console output.
func ShortWallet(wallet string) string {
	if wallet == "" {
		return "(not set)"
	}
	if len(wallet) <= 12 {
		return wallet
	}
	return wallet[:6] + "..." + wallet[len(wallet)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

var apiKeyEnvVars = []string{"BOUNTYAGENT_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"}

// GetAPIKeySource returns where the API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	for _, name := range apiKeyEnvVars {
		if os.Getenv(name) != "" {
			return KeySourceEnv
		}
	}

	if cfg != nil && cfg.Oracle.APIKey != "" {
		key := os.ExpandEnv(cfg.Oracle.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return KeySourceConfig
		}
	}

	return KeySourceNone
}
