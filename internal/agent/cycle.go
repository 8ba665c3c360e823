package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/bountyagent/internal/config"
	"github.com/ShayCichocki/bountyagent/pkg/models"
)

// Evaluation verdicts and claim/submit outcomes reported to Metrics.
const (
	VerdictSuitable      = "suitable"
	VerdictUnsuitable    = "unsuitable"
	VerdictLowConfidence = "low_confidence"

	OutcomeClaimed    = "claimed"
	OutcomeFailed     = "failed"
	OutcomeOverBudget = "over_budget"
	OutcomeSubmitted  = "submitted"
)

// Discover fetches open bounties and drops any the ledger already knows about.
func (a *Agent) Discover(ctx context.Context) ([]models.Bounty, error) {
	bounties, err := a.lister.ListOpenBounties(ctx)
	if err != nil {
		return nil, err
	}

	var fresh []models.Bounty
	for _, b := range bounties {
		if !b.IsOpen() || a.state.Known(b.ID) {
			continue
		}
		fresh = append(fresh, b)
	}
	return fresh, nil
}

// RunCycle performs one discover, evaluate, claim, work and submit pass.
// The report is always returned, even when the cycle ends with an error.
func (a *Agent) RunCycle(ctx context.Context) (*models.CycleReport, error) {
	report := &models.CycleReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    a.cfg.DryRun,
	}
	a.logger.Log("cycle %s started (dry_run=%v)", report.ID, a.cfg.DryRun)
	a.emit(Event{Type: EventCycleStarted, CycleID: report.ID})

	err := a.runCycle(ctx, report)
	report.FinishedAt = time.Now()
	if err != nil {
		report.Error = err.Error()
	}

	if a.metrics != nil {
		a.metrics.ObserveCycle(report.Duration(), err)
	}
	if a.recorder != nil {
		if recErr := a.recorder.RecordCycle(context.WithoutCancel(ctx), report); recErr != nil {
			log.Printf("[agent] failed to record cycle: %v", recErr)
		}
	}

	if err != nil {
		a.logger.Log("cycle %s failed after %s: %v", report.ID, report.Duration(), err)
		a.emit(Event{Type: EventCycleFailed, CycleID: report.ID, Error: err, Report: report})
		return report, err
	}

	a.logger.Log("cycle %s done: discovered=%d evaluated=%d claimed=%d completed=%d",
		report.ID, report.Discovered, report.Evaluated, len(report.Claimed), report.Completed())
	a.emit(Event{Type: EventCycleCompleted, CycleID: report.ID, Report: report})
	return report, nil
}

func (a *Agent) runCycle(ctx context.Context, report *models.CycleReport) error {
	log.Printf("[agent] discovering bounties...")
	candidates, err := a.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover bounties: %w", err)
	}
	report.Discovered = len(candidates)
	a.emit(Event{Type: EventDiscovered, CycleID: report.ID, Count: len(candidates)})

	if len(candidates) == 0 {
		log.Printf("[agent] no new bounties")
		return nil
	}
	log.Printf("[agent] found %d new bounties", len(candidates))

	approved, err := a.evaluateBatch(ctx, report, candidates[:min(len(candidates), a.cfg.MaxEvaluations)])
	if err != nil {
		return err
	}

	for _, b := range approved {
		if err := a.process(ctx, report, b); err != nil {
			return err
		}
	}
	return nil
}

// evaluateBatch judges candidates in order and returns the ones worth claiming.
// Unsuitable bounties go straight into the skipped set.
func (a *Agent) evaluateBatch(ctx context.Context, report *models.CycleReport, batch []models.Bounty) ([]models.Bounty, error) {
	var approved []models.Bounty

	for _, b := range batch {
		// A cancelled context would make the oracle call fail and the bounty look unsuitable.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Printf("[agent] evaluating %q", b.Title)
		result := a.evaluator.Evaluate(ctx, b, a.cfg.Skills)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Evaluated++

		if a.recorder != nil {
			if err := a.recorder.RecordEvaluation(ctx, report.ID, b, result); err != nil {
				log.Printf("[agent] failed to record evaluation: %v", err)
			}
		}
		a.logger.Log("evaluated %s: suitable=%v confidence=%.2f effort=%s reasoning=%q",
			b.ID, result.Suitable, result.Confidence, result.EstimatedEffort, result.Reasoning)
		a.emit(Event{Type: EventEvaluated, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title, Evaluation: &result})

		switch {
		case !result.Suitable:
			log.Printf("[agent] skipping %q: %s", b.Title, result.Reasoning)
			a.state.markSkipped(b.ID)
			report.Skipped = append(report.Skipped, b.ID)
			a.observeEvaluation(VerdictUnsuitable)
			a.emit(Event{Type: EventSkipped, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title, Message: result.Reasoning})
		case result.Confidence < ConfidenceThreshold:
			log.Printf("[agent] not claiming %q: confidence %.2f below %.2f", b.Title, result.Confidence, ConfidenceThreshold)
			a.observeEvaluation(VerdictLowConfidence)
		default:
			log.Printf("[agent] suitable: %q (confidence %.2f, effort %s)", b.Title, result.Confidence, result.EstimatedEffort)
			a.observeEvaluation(VerdictSuitable)
			approved = append(approved, b)
		}
	}

	return approved, nil
}

// process claims one approved bounty, generates its work and submits it.
// Claim and submit failures are absorbed here; a work-plan failure aborts the cycle.
func (a *Agent) process(ctx context.Context, report *models.CycleReport, b models.Bounty) error {
	reward := b.Reward.Display(a.cfg.RewardDivisor)
	if reward > a.cfg.MaxReward {
		log.Printf("[agent] not claiming %q: reward %.2f exceeds max %.2f", b.Title, reward, a.cfg.MaxReward)
		report.Rejected = append(report.Rejected, b.ID)
		a.observeClaim(OutcomeOverBudget)
		a.emit(Event{Type: EventOverBudget, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title,
			Message: fmt.Sprintf("reward %.2f exceeds max %.2f", reward, a.cfg.MaxReward)})
		return nil
	}

	if err := a.claim(ctx, b); err != nil {
		log.Printf("[agent] failed to claim %q: %v", b.Title, err)
		a.observeClaim(OutcomeFailed)
		a.emit(Event{Type: EventClaimFailed, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title, Error: err})
		return nil
	}
	report.Claimed = append(report.Claimed, b.ID)
	a.observeClaim(OutcomeClaimed)
	a.emit(Event{Type: EventClaimed, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title})

	log.Printf("[agent] generating work for %q", b.Title)
	plan, err := a.evaluator.GenerateWorkPlan(ctx, b)
	if err != nil {
		return fmt.Errorf("generate work for bounty %s: %w", b.ID, err)
	}
	a.emit(Event{Type: EventWorkGenerated, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title})

	result := a.submit(ctx, b, plan)
	report.Submissions = append(report.Submissions, result)
	if a.recorder != nil {
		if err := a.recorder.RecordSubmission(ctx, report.ID, result); err != nil {
			log.Printf("[agent] failed to record submission: %v", err)
		}
	}

	if result.Failed() {
		a.observeSubmission(OutcomeFailed)
		a.emit(Event{Type: EventSubmitFailed, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title, Message: result.Status})
	} else {
		if result.Status == models.SubmissionStatusDryRun {
			a.observeSubmission(models.SubmissionStatusDryRun)
		} else {
			a.observeSubmission(OutcomeSubmitted)
		}
		a.emit(Event{Type: EventSubmitted, CycleID: report.ID, BountyID: b.ID, BountyTitle: b.Title, Message: result.Status})
	}
	return nil
}

func (a *Agent) claim(ctx context.Context, b models.Bounty) error {
	if a.cfg.DryRun {
		log.Printf("[agent] [DRY RUN] would claim %q as %s", b.Title, config.ShortWallet(a.cfg.Wallet))
		a.state.markClaimed(b.ID)
		return nil
	}

	resp, err := a.lister.ClaimBounty(ctx, b.ID, a.cfg.Wallet)
	if err != nil {
		return err
	}
	log.Printf("[agent] claimed %q: %s", b.Title, resp.Message)
	a.state.markClaimed(b.ID)
	return nil
}

func (a *Agent) submit(ctx context.Context, b models.Bounty, work string) models.SubmissionResult {
	result := models.SubmissionResult{
		BountyID:   b.ID,
		Submission: work,
		Proof:      ProofRef(a.cfg.ProofTemplate, a.cfg.Wallet, b.ID),
	}

	if a.cfg.DryRun {
		log.Printf("[agent] [DRY RUN] would submit %q with proof %s", b.Title, result.Proof)
		result.Status = models.SubmissionStatusDryRun
		a.state.markCompleted(b.ID)
		return result
	}

	resp, err := a.lister.SubmitBounty(ctx, b.ID, a.cfg.Wallet, work, result.Proof)
	if err != nil {
		log.Printf("[agent] failed to submit %q: %v", b.Title, err)
		result.Status = models.SubmissionError(err)
		return result
	}

	result.Status = resp.Status
	if result.Status == "" {
		result.Status = OutcomeSubmitted
	}
	log.Printf("[agent] submitted %q: %s", b.Title, result.Status)
	a.state.markCompleted(b.ID)
	return result
}

func (a *Agent) observeEvaluation(verdict string) {
	if a.metrics != nil {
		a.metrics.ObserveEvaluation(verdict)
	}
}

func (a *Agent) observeClaim(outcome string) {
	if a.metrics != nil {
		a.metrics.ObserveClaim(outcome)
	}
}

func (a *Agent) observeSubmission(outcome string) {
	if a.metrics != nil {
		a.metrics.ObserveSubmission(outcome)
	}
}
