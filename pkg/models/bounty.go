package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BountyStatus represents the listing state of a bounty.
// The set is open-ended; only BountyStatusOpen carries meaning for the agent.
type BountyStatus string

const (
	// BountyStatusOpen indicates the bounty can be claimed.
	BountyStatusOpen BountyStatus = "open"
	// BountyStatusClaimed indicates someone has reserved the bounty.
	BountyStatusClaimed BountyStatus = "claimed"
	// BountyStatusSubmitted indicates work was delivered and awaits review.
	BountyStatusSubmitted BountyStatus = "submitted"
	// BountyStatusCompleted indicates the bounty was accepted and paid.
	BountyStatusCompleted BountyStatus = "completed"
)

// Amount is a reward expressed in integer minor units (for example 1e6 units per USDC).
// The listing service encodes it either as a JSON number or as a decimal string.
type Amount int64

// UnmarshalJSON accepts "50000000", 50000000 and null. Fractional and
// out-of-range values are rejected rather than truncated.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Some deployments emit floats for whole amounts ("5e+07").
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return fmt.Errorf("invalid amount %q: not a whole number of minor units", raw)
		}
		n = int64(f)
	}
	*a = Amount(n)
	return nil
}

// MarshalJSON encodes the amount as a decimal string, matching the listing service.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(a), 10))
}

// Display converts minor units into display units using the given divisor.
// A non-positive divisor returns the raw value.
func (a Amount) Display(divisor float64) float64 {
	if divisor <= 0 {
		return float64(a)
	}
	return float64(a) / divisor
}

// Bounty is a unit of claimable, rewarded work listed by the remote service.
// Bounties are snapshots fetched fresh every cycle and are never mutated by the agent.
type Bounty struct {
	// ID is the listing service identifier.
	ID string `json:"id"`
	// Title is the short description of the work.
	Title string `json:"title"`
	// Description is the free-text body of the bounty.
	Description string `json:"description,omitempty"`
	// Status is the listing state, typically "open".
	Status BountyStatus `json:"status"`
	// Reward is the payout in minor units.
	Reward Amount `json:"reward"`
	// RewardFormatted is the human-readable payout, e.g. "50 USDC".
	RewardFormatted string `json:"rewardFormatted,omitempty"`
	// Tags are free-text labels attached by the poster.
	Tags []string `json:"tags,omitempty"`
	// ClaimedBy is the claimant identifier once the bounty is claimed.
	ClaimedBy string `json:"claimedBy,omitempty"`
	// CreatedAt is when the bounty was posted.
	CreatedAt string `json:"createdAt,omitempty"`
	// CompletedAt is when the bounty was completed, if applicable.
	CompletedAt string `json:"completedAt,omitempty"`
	// PaymentTx is the payment transaction reference, if paid.
	PaymentTx string `json:"paymentTx,omitempty"`
	// PaidAt is when the payment was made, if paid.
	PaidAt string `json:"paidAt,omitempty"`
}

// IsOpen reports whether the bounty is listed as open and has a title.
func (b Bounty) IsOpen() bool {
	return b.Status == BountyStatusOpen && strings.TrimSpace(b.Title) != ""
}

// RewardLabel returns the formatted reward, falling back to the raw minor units.
func (b Bounty) RewardLabel() string {
	if b.RewardFormatted != "" {
		return b.RewardFormatted
	}
	return strconv.FormatInt(int64(b.Reward), 10) + " units"
}

// Stats holds aggregate counts reported by the listing service.
type Stats struct {
	Total                int    `json:"total"`
	Open                 int    `json:"open"`
	Claimed              int    `json:"claimed"`
	Completed            int    `json:"completed"`
	TotalReward          Amount `json:"totalReward"`
	TotalRewardFormatted string `json:"totalRewardFormatted,omitempty"`
}
