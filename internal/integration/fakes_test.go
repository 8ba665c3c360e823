//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ShayCichocki/bountyagent/internal/oracle"
	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// listingServer is an in-memory bounty board.
type listingServer struct {
	mu          sync.Mutex
	bounties    []models.Bounty
	claims      []string
	submissions map[string]submitBody
	failSubmit  bool
}

type submitBody struct {
	Address    string `json:"address"`
	Submission string `json:"submission"`
	Proof      string `json:"proof"`
}

func newListingServer(t *testing.T, bounties []models.Bounty) (*listingServer, *httptest.Server) {
	t.Helper()
	ls := &listingServer{bounties: bounties, submissions: make(map[string]submitBody)}
	srv := httptest.NewServer(http.HandlerFunc(ls.serve))
	t.Cleanup(srv.Close)
	return ls, srv
}

func (ls *listingServer) serve(w http.ResponseWriter, r *http.Request) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	switch {
	case r.Method == http.MethodGet && path == "bounties":
		json.NewEncoder(w).Encode(map[string]any{"bounties": ls.bounties})
	case r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "claim":
		ls.claims = append(ls.claims, parts[1])
		ls.setStatus(parts[1], models.BountyStatusClaimed)
		json.NewEncoder(w).Encode(map[string]string{"status": "claimed", "message": "ok"})
	case r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "submit":
		if ls.failSubmit {
			http.Error(w, `{"error":"review queue full"}`, http.StatusServiceUnavailable)
			return
		}
		var body submitBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ls.submissions[parts[1]] = body
		ls.setStatus(parts[1], models.BountyStatusSubmitted)
		json.NewEncoder(w).Encode(map[string]string{"status": "submitted"})
	default:
		http.NotFound(w, r)
	}
}

func (ls *listingServer) setStatus(id string, status models.BountyStatus) {
	for i := range ls.bounties {
		if ls.bounties[i].ID == id {
			ls.bounties[i].Status = status
		}
	}
}

func (ls *listingServer) claimed() []string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]string(nil), ls.claims...)
}

func (ls *listingServer) submission(id string) (submitBody, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	s, ok := ls.submissions[id]
	return s, ok
}

// oracleServer answers chat-completions requests. Evaluations of bounties whose
// prompt mentions "logo" are rejected; everything else is accepted.
type oracleServer struct {
	mu    sync.Mutex
	calls int
}

func newOracleServer(t *testing.T) (*oracleServer, *httptest.Server) {
	t.Helper()
	o := &oracleServer{}
	srv := httptest.NewServer(http.HandlerFunc(o.serve))
	t.Cleanup(srv.Close)
	return o, srv
}

func (o *oracleServer) serve(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()

	var req struct {
		Messages []oracle.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) < 2 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	user := req.Messages[len(req.Messages)-1].Content
	var content string
	switch {
	case strings.HasPrefix(user, "Complete the following bounty"):
		content = "1. Reproduce the bug\n2. Fix it\n3. Add a regression test"
	case strings.Contains(strings.ToLower(user), "logo"):
		content = `{"suitable": false, "confidence": 0.95, "reasoning": "design work", "estimatedEffort": "medium"}`
	default:
		content = "Here is my verdict:\n```json\n" +
			`{"suitable": true, "confidence": 0.9, "reasoning": "matches skills", "estimatedEffort": "low"}` +
			"\n```"
	}

	json.NewEncoder(w).Encode(map[string]any{
		"model":   "test-model",
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
		"usage":   map[string]int{"prompt_tokens": 100, "completion_tokens": 20},
	})
}

func (o *oracleServer) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}
