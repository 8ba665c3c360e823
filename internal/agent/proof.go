package agent

import (
	"fmt"
	"strings"
)

const proofClaimantPrefix = 10

// ProofRef builds the proof reference sent with a submission. The template receives the
// first ten characters of the claimant and the bounty id. The result is a placeholder
// and is not checked to resolve.
func ProofRef(template, claimant, bountyID string) string {
	if template == "" {
		template = DefaultProofTemplate
	}
	prefix := claimant
	if len(prefix) > proofClaimantPrefix {
		prefix = prefix[:proofClaimantPrefix]
	}
	if strings.Count(template, "%s") != 2 {
		return fmt.Sprintf(DefaultProofTemplate, prefix, bountyID)
	}
	return fmt.Sprintf(template, prefix, bountyID)
}
