package evaluate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/bountyagent/internal/oracle"
	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// fakeCompleter records requests and returns canned replies.
type fakeCompleter struct {
	reply    string
	err      error
	requests []oracle.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return oracle.Response{}, f.err
	}
	return oracle.Response{Content: f.reply}, nil
}

func sampleBounty() models.Bounty {
	return models.Bounty{
		ID:              "1",
		Title:           "Fix bug",
		Description:     "Crash when parsing empty input",
		Status:          models.BountyStatusOpen,
		Reward:          50000000,
		RewardFormatted: "50 USDC",
		Tags:            []string{"go", "parser"},
	}
}

func TestEvaluate_ParsesEmbeddedJSON(t *testing.T) {
	fake := &fakeCompleter{reply: "Sure! Here is my judgment:\n```json\n" +
		`{"suitable": true, "confidence": 0.8, "reasoning": "Go parser work", "estimatedEffort": "low"}` +
		"\n```\nGood luck."}
	engine := New(fake)

	result := engine.Evaluate(context.Background(), sampleBounty(), []string{"go"})

	if !result.Suitable {
		t.Error("expected suitable")
	}
	if result.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", result.Confidence)
	}
	if result.EstimatedEffort != models.EffortLow {
		t.Errorf("EstimatedEffort = %q, want low", result.EstimatedEffort)
	}
	if result.Reasoning != "Go parser work" {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
}

func TestEvaluate_PromptShape(t *testing.T) {
	fake := &fakeCompleter{reply: `{"suitable": false, "confidence": 0.1}`}
	engine := New(fake)

	engine.Evaluate(context.Background(), sampleBounty(), []string{"go", "sql"})

	if len(fake.requests) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(fake.requests))
	}
	msgs := fake.requests[0].Messages
	if len(msgs) != 2 || msgs[0].Role != oracle.RoleSystem || msgs[1].Role != oracle.RoleUser {
		t.Fatalf("expected system + user messages, got %+v", msgs)
	}

	prompt := msgs[1].Content
	for _, want := range []string{"Fix bug", "Crash when parsing empty input", "go, parser", "50 USDC", "go, sql"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestEvaluate_EmptySkillsFallsBack(t *testing.T) {
	fake := &fakeCompleter{reply: `{"suitable": false}`}
	New(fake).Evaluate(context.Background(), sampleBounty(), nil)

	if !strings.Contains(fake.requests[0].Messages[1].Content, DefaultSkills) {
		t.Errorf("expected fallback skills %q in prompt", DefaultSkills)
	}
}

func TestEvaluate_FailClosed(t *testing.T) {
	tests := []struct {
		name       string
		fake       *fakeCompleter
		wantReason string
	}{
		{"network error", &fakeCompleter{err: errors.New("connection refused")}, "evaluation failed"},
		{"http error", &fakeCompleter{err: &oracle.APIError{StatusCode: 500, Body: "oops"}}, "status=500"},
		{"no json", &fakeCompleter{reply: "I think this is a great fit!"}, "no JSON object"},
		{"malformed json", &fakeCompleter{reply: `{"suitable": yes}`}, "malformed evaluation JSON"},
		{"unbalanced", &fakeCompleter{reply: `{"suitable": true, "confidence": 0.9`}, "no JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(tt.fake).Evaluate(context.Background(), sampleBounty(), []string{"go"})

			if result.Suitable {
				t.Error("fail-closed result must not be suitable")
			}
			if result.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0", result.Confidence)
			}
			if result.EstimatedEffort != models.EffortHigh {
				t.Errorf("EstimatedEffort = %q, want high", result.EstimatedEffort)
			}
			if !strings.Contains(result.Reasoning, tt.wantReason) {
				t.Errorf("Reasoning = %q, want it to mention %q", result.Reasoning, tt.wantReason)
			}
		})
	}
}

func TestGenerateWorkPlan(t *testing.T) {
	fake := &fakeCompleter{reply: "  Step 1: reproduce.\nStep 2: fix.  "}
	plan, err := New(fake).GenerateWorkPlan(context.Background(), sampleBounty())
	if err != nil {
		t.Fatalf("GenerateWorkPlan failed: %v", err)
	}

	if plan != "  Step 1: reproduce.\nStep 2: fix.  " {
		t.Errorf("plan should be returned verbatim, got %q", plan)
	}

	msgs := fake.requests[0].Messages
	if msgs[0].Role != oracle.RoleSystem || !strings.Contains(msgs[0].Content, "completion plan") {
		t.Errorf("unexpected system prompt %q", msgs[0].Content)
	}
	if msgs[0].Content == evaluationSystemPrompt {
		t.Error("work plan must use its own system prompt")
	}
}

func TestGenerateWorkPlan_PropagatesErrors(t *testing.T) {
	boom := errors.New("timeout")
	_, err := New(&fakeCompleter{err: boom}).GenerateWorkPlan(context.Background(), sampleBounty())
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped oracle error, got %v", err)
	}
}
