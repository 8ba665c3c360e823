package evaluate

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// DefaultSkills describes the agent when no skills are configured.
const DefaultSkills = "general software development"

// evaluationSystemPrompt instructs the oracle to answer with a single JSON object.
const evaluationSystemPrompt = `You are an autonomous software agent deciding which bounties to take on.
Judge whether the bounty matches the agent's skills and can be completed well.
Respond with a single JSON object and nothing else:
{"suitable": true|false, "confidence": 0.0-1.0, "reasoning": "short explanation", "estimatedEffort": "low"|"medium"|"high"}`

// workPlanSystemPrompt instructs the oracle to produce the submission text.
const workPlanSystemPrompt = `You are an expert software engineer completing a bounty.
Produce a detailed completion plan for the task: the approach, the concrete steps,
the deliverables, and how the result can be verified. Write it so it can be submitted as the work.`

// buildEvaluationPrompt renders the user prompt for a suitability judgment.
func buildEvaluationPrompt(b models.Bounty, skills []string) string {
	skillList := DefaultSkills
	if len(skills) > 0 {
		skillList = strings.Join(skills, ", ")
	}

	tags := "none"
	if len(b.Tags) > 0 {
		tags = strings.Join(b.Tags, ", ")
	}

	return fmt.Sprintf(`Evaluate this bounty.

BOUNTY:
Title: %s
Description: %s
Tags: %s
Reward: %s

AGENT SKILLS:
%s

Is this bounty a good fit for the agent? Answer with the JSON object only.`,
		b.Title, orNone(b.Description), tags, b.RewardLabel(), skillList)
}

// buildWorkPlanPrompt renders the user prompt for work generation.
func buildWorkPlanPrompt(b models.Bounty) string {
	var sb strings.Builder
	sb.WriteString("Complete the following bounty.\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", b.Title)
	fmt.Fprintf(&sb, "Description: %s\n", orNone(b.Description))
	if len(b.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(b.Tags, ", "))
	}
	fmt.Fprintf(&sb, "Reward: %s\n", b.RewardLabel())
	return sb.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
