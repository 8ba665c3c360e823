// Package listing is the HTTP client for the bounty listing service.
// It is pure request/response: no retries, no caching, no backoff.
package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ShayCichocki/bountyagent/internal/version"
	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// Client talks to the listing service over JSON.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout applies when HTTPClient is nil. Zero leaves calls unbounded.
	Timeout time.Duration
}

// New creates a client for the given base address.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL}
}

// APIError wraps non-2xx responses.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("listing api error: %s %s: status=%d body=%s", e.Method, e.Path, e.StatusCode, strings.TrimSpace(e.Body))
}

// ActionResponse is the reply to a claim or submit.
type ActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type claimRequest struct {
	Address string `json:"address"`
}

type submitRequest struct {
	Address    string `json:"address"`
	Submission string `json:"submission"`
	Proof      string `json:"proof"`
}

// ListBounties returns every bounty the service lists, regardless of status.
// The service may answer with a bare array or with {"bounties": [...]}.
// Entries that fail to decode are logged and dropped; the rest keep their order.
func (c *Client) ListBounties(ctx context.Context) ([]models.Bounty, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "bounties", nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var entries []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode bounties: %w", err)
		}
	} else {
		var wrapped struct {
			Bounties []json.RawMessage `json:"bounties"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode bounties: %w", err)
		}
		entries = wrapped.Bounties
	}

	bounties := make([]models.Bounty, 0, len(entries))
	for i, entry := range entries {
		var b models.Bounty
		if err := json.Unmarshal(entry, &b); err != nil {
			log.Printf("[listing] dropping bounty #%d: %v", i, err)
			continue
		}
		bounties = append(bounties, b)
	}
	return bounties, nil
}

// ListOpenBounties returns bounties with status "open" and a non-empty title.
func (c *Client) ListOpenBounties(ctx context.Context) ([]models.Bounty, error) {
	all, err := c.ListBounties(ctx)
	if err != nil {
		return nil, err
	}
	return FilterOpen(all), nil
}

// FilterOpen keeps open, titled bounties in their original order.
func FilterOpen(bounties []models.Bounty) []models.Bounty {
	open := make([]models.Bounty, 0, len(bounties))
	for _, b := range bounties {
		if b.IsOpen() {
			open = append(open, b)
		}
	}
	return open
}

// Stats returns aggregate listing counts.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var resp models.Stats
	err := c.do(ctx, http.MethodGet, "stats", nil, &resp)
	return resp, err
}

// ClaimBounty reserves a bounty for the claimant.
func (c *Client) ClaimBounty(ctx context.Context, id, claimant string) (ActionResponse, error) {
	var resp ActionResponse
	endpoint := fmt.Sprintf("bounties/%s/claim", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, claimRequest{Address: claimant}, &resp)
	return resp, err
}

// SubmitBounty delivers work and a proof reference for a claimed bounty.
func (c *Client) SubmitBounty(ctx context.Context, id, claimant, submission, proof string) (ActionResponse, error) {
	var resp ActionResponse
	endpoint := fmt.Sprintf("bounties/%s/submit", url.PathEscape(id))
	body := submitRequest{Address: claimant, Submission: submission, Proof: proof}
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	target := c.base() + "/" + strings.TrimLeft(endpoint, "/")

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{Method: method, Path: "/" + endpoint, StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
