package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/bountyagent/internal/config"
	"github.com/ShayCichocki/bountyagent/internal/oracle"
)

// trackedCompleter is an oracle client that also reports token usage.
type trackedCompleter interface {
	oracle.Completer
	Tracker() *oracle.TokenTracker
}

// newOracle creates the oracle client for the configured provider.
func newOracle(cfg *config.Config) (oracle.Completer, *oracle.TokenTracker, error) {
	var (
		client trackedCompleter
		err    error
	)

	switch cfg.Oracle.Provider {
	case config.ProviderAnthropic:
		client, err = oracle.NewAnthropicClient(anthropicConfig(cfg))
	case config.ProviderOpenAI, "":
		client, err = oracle.NewChatClient(oracle.ChatConfig{
			Endpoint:    cfg.Oracle.Endpoint,
			APIKey:      cfg.Oracle.APIKey,
			Model:       cfg.Oracle.Model,
			Temperature: cfg.Oracle.Temperature,
			MaxTokens:   cfg.Oracle.MaxTokens,
			Timeout:     cfg.Oracle.Timeout,
		})
	default:
		return nil, nil, fmt.Errorf("unknown oracle provider %q", cfg.Oracle.Provider)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create %s oracle: %w", cfg.Oracle.Provider, err)
	}
	return client, client.Tracker(), nil
}

// anthropicConfig maps oracle settings onto the Anthropic client. The OpenAI defaults
// for model and endpoint make no sense there and are replaced by the SDK's own.
func anthropicConfig(cfg *config.Config) oracle.AnthropicConfig {
	model := anthropic.Model(cfg.Oracle.Model)
	if cfg.Oracle.Model == "" || cfg.Oracle.Model == config.DefaultModel {
		model = anthropic.ModelClaudeSonnet4_20250514
	}

	baseURL := cfg.Oracle.Endpoint
	if baseURL == config.DefaultEndpoint {
		baseURL = ""
	}

	return oracle.AnthropicConfig{
		Model:         model,
		APIKey:        cfg.Oracle.APIKey,
		BaseURL:       baseURL,
		Temperature:   cfg.Oracle.Temperature,
		MaxTokens:     cfg.Oracle.MaxTokens,
		Timeout:       cfg.Oracle.Timeout,
		UseAWSBedrock: cfg.Oracle.UseAWSBedrock,
		AWSRegion:     cfg.Oracle.AWSRegion,
		AWSProfile:    cfg.Oracle.AWSProfile,
	}
}
