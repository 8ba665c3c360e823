package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ShayCichocki/bountyagent/internal/version"
)

// DefaultChatEndpoint is the chat-completions URL used when none is configured.
const DefaultChatEndpoint = "https://api.openai.com/v1/chat/completions"

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	// Endpoint is the full chat-completions URL.
	Endpoint string
	// APIKey is sent as a bearer token.
	APIKey string
	// Model is the model identifier sent with every request.
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout bounds each call. Zero leaves calls unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ChatClient calls an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	cfg     ChatConfig
	http    *http.Client
	tracker *TokenTracker
}

// NewChatClient creates a chat-completions client.
func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat client: API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("chat client: model is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultChatEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ChatClient{
		cfg:     cfg,
		http:    httpClient,
		tracker: NewTokenTracker(),
	}, nil
}

// Model returns the configured model name.
func (c *ChatClient) Model() string {
	return c.cfg.Model
}

// Tracker returns the token tracker for this client.
func (c *ChatClient) Tracker() *TokenTracker {
	return c.tracker
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends the messages and returns the first choice's content.
func (c *ChatClient) Complete(ctx context.Context, req Request) (Response, error) {
	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if body.Temperature == 0 {
		body.Temperature = c.cfg.Temperature
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.cfg.MaxTokens
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Response{}, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &buf)
	if err != nil {
		return Response{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return Response{}, &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Response{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Response{}, ErrEmptyResponse
	}

	c.tracker.Add(decoded.Usage.PromptTokens, decoded.Usage.CompletionTokens)

	return Response{
		Content:      decoded.Choices[0].Message.Content,
		Model:        decoded.Model,
		InputTokens:  decoded.Usage.PromptTokens,
		OutputTokens: decoded.Usage.CompletionTokens,
	}, nil
}
