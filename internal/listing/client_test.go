package listing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ShayCichocki/bountyagent/internal/version"
)

const bountiesJSON = `[
	{"id": "1", "title": "Fix bug", "status": "open", "reward": "50000000", "rewardFormatted": "50 USDC"},
	{"id": "2", "title": "Write docs", "status": "claimed", "reward": "1000000"},
	{"id": "3", "title": "", "status": "open", "reward": "1000000"},
	{"id": "4", "title": "Add tests", "status": "open", "reward": 2000000, "tags": ["go"]}
]`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestListOpenBounties_FiltersStatusAndTitle(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/bounties" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != version.UserAgent() {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(bountiesJSON))
	})

	bounties, err := client.ListOpenBounties(context.Background())
	if err != nil {
		t.Fatalf("ListOpenBounties failed: %v", err)
	}

	if len(bounties) != 2 {
		t.Fatalf("got %d bounties, want 2: %+v", len(bounties), bounties)
	}
	if bounties[0].ID != "1" || bounties[1].ID != "4" {
		t.Errorf("unexpected order or ids: %s, %s", bounties[0].ID, bounties[1].ID)
	}
	if bounties[0].Reward != 50000000 {
		t.Errorf("Reward = %d, want 50000000", bounties[0].Reward)
	}
	if bounties[1].Reward != 2000000 {
		t.Errorf("numeric reward = %d, want 2000000", bounties[1].Reward)
	}
}

func TestListOpenBounties_DropsUndecodableEntries(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "1", "title": "Fix bug", "status": "open", "reward": "50000000"},
			{"id": "2", "title": "Mystery", "status": "closed", "reward": "TBD"},
			{"id": "3", "title": "Half a unit", "status": "open", "reward": "10.5"},
			{"id": "4", "title": "Add tests", "status": "open", "reward": 2000000}
		]`))
	})

	bounties, err := client.ListOpenBounties(context.Background())
	if err != nil {
		t.Fatalf("ListOpenBounties failed: %v", err)
	}
	if len(bounties) != 2 || bounties[0].ID != "1" || bounties[1].ID != "4" {
		t.Fatalf("got %+v, want bounties 1 and 4 in order", bounties)
	}
}

func TestListBounties_WrappedResponseDropsUndecodableEntries(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bounties": [{"id": "1", "status": "open", "reward": []}, {"id": "2", "status": "open"}]}`))
	})

	bounties, err := client.ListBounties(context.Background())
	if err != nil {
		t.Fatalf("ListBounties failed: %v", err)
	}
	if len(bounties) != 1 || bounties[0].ID != "2" {
		t.Errorf("got %+v, want only bounty 2", bounties)
	}
}

func TestListBounties_WrappedResponse(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bounties": ` + bountiesJSON + `}`))
	})

	bounties, err := client.ListBounties(context.Background())
	if err != nil {
		t.Fatalf("ListBounties failed: %v", err)
	}
	if len(bounties) != 4 {
		t.Errorf("got %d bounties, want 4", len(bounties))
	}
}

func TestListBounties_NullResponse(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	bounties, err := client.ListBounties(context.Background())
	if err != nil {
		t.Fatalf("ListBounties failed: %v", err)
	}
	if len(bounties) != 0 {
		t.Errorf("expected no bounties, got %d", len(bounties))
	}
}

func TestClaimBounty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bounties/abc/claim" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["address"] != "0xwallet" {
			t.Errorf("address = %q, want 0xwallet", body["address"])
		}
		w.Write([]byte(`{"status": "claimed"}`))
	})

	resp, err := client.ClaimBounty(context.Background(), "abc", "0xwallet")
	if err != nil {
		t.Fatalf("ClaimBounty failed: %v", err)
	}
	if resp.Status != "claimed" {
		t.Errorf("Status = %q, want claimed", resp.Status)
	}
}

func TestSubmitBounty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bounties/7/submit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["address"] != "0xwallet" || body["submission"] != "the work" || body["proof"] != "https://proof" {
			t.Errorf("unexpected body %v", body)
		}
		w.Write([]byte(`{"status": "submitted"}`))
	})

	resp, err := client.SubmitBounty(context.Background(), "7", "0xwallet", "the work", "https://proof")
	if err != nil {
		t.Fatalf("SubmitBounty failed: %v", err)
	}
	if resp.Status != "submitted" {
		t.Errorf("Status = %q, want submitted", resp.Status)
	}
}

func TestStats(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"total": 10, "open": 4, "claimed": 3, "completed": 3, "totalReward": "120000000", "totalRewardFormatted": "120 USDC"}`))
	})

	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 10 || stats.Open != 4 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.TotalReward != 120000000 {
		t.Errorf("TotalReward = %d", stats.TotalReward)
	}
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "already claimed"}`))
	})

	_, err := client.ClaimBounty(context.Background(), "1", "0xwallet")
	if err == nil {
		t.Fatal("expected error for 409")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", apiErr.StatusCode)
	}
	if apiErr.Body != `{"error": "already claimed"}` {
		t.Errorf("Body = %q", apiErr.Body)
	}
	if apiErr.Path != "/bounties/1/claim" {
		t.Errorf("Path = %q", apiErr.Path)
	}
}

func TestNoRetryOnFailure(t *testing.T) {
	calls := 0
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.ListOpenBounties(context.Background()); err == nil {
		t.Fatal("expected error for 500")
	}
	if calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls)
	}
}

func TestPathEscaping(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/bounties/a%2Fb/claim" {
			t.Errorf("id not escaped: %s", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"status": "claimed"}`))
	})

	if _, err := client.ClaimBounty(context.Background(), "a/b", "0xwallet"); err != nil {
		t.Fatalf("ClaimBounty failed: %v", err)
	}
}
