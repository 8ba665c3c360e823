// Package evaluate is the decision engine: it asks the reasoning oracle whether a
// bounty fits the agent's skills and turns the reply into an EvaluationResult.
// Policy (confidence threshold, reward ceiling) lives with the caller.
package evaluate

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/bountyagent/internal/oracle"
	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// Engine judges bounties and writes work plans through an oracle.
type Engine struct {
	oracle oracle.Completer
}

// New creates an Engine backed by the given oracle.
func New(c oracle.Completer) *Engine {
	return &Engine{oracle: c}
}

// Evaluate judges a bounty against the skill list. It never fails: oracle errors and
// unparseable replies yield a rejected result describing what went wrong.
func (e *Engine) Evaluate(ctx context.Context, b models.Bounty, skills []string) models.EvaluationResult {
	resp, err := e.oracle.Complete(ctx, oracle.Request{
		Messages: []oracle.Message{
			oracle.System(evaluationSystemPrompt),
			oracle.User(buildEvaluationPrompt(b, skills)),
		},
	})
	if err != nil {
		return models.Rejected(fmt.Sprintf("evaluation failed: %v", err))
	}

	result, err := ParseEvaluation(resp.Content)
	if err != nil {
		return models.Rejected(fmt.Sprintf("could not parse evaluation: %v", err))
	}
	return result
}

// GenerateWorkPlan asks the oracle to produce the work for a bounty and returns the
// reply verbatim. Errors are returned to the caller.
func (e *Engine) GenerateWorkPlan(ctx context.Context, b models.Bounty) (string, error) {
	resp, err := e.oracle.Complete(ctx, oracle.Request{
		Messages: []oracle.Message{
			oracle.System(workPlanSystemPrompt),
			oracle.User(buildWorkPlanPrompt(b)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate work plan for bounty %s: %w", b.ID, err)
	}
	return resp.Content, nil
}
