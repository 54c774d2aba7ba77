// Package model holds the domain types shared across the privacy pipeline:
// tiers, checkpoints, detection contexts/results, privacy entities, and the
// routing decision returned to the host runtime.
package model

import "fmt"

// Tier is the sensitivity level of a message or action. Totally ordered;
// aggregation is always the supremum of contributing tiers.
type Tier int

const (
	TierS1 Tier = iota // public / ordinary — passthrough
	TierS2             // sensitive — desensitize before cloud delivery
	TierS3             // private — never leaves the local model
)

func (t Tier) String() string {
	switch t {
	case TierS1:
		return "S1"
	case TierS2:
		return "S2"
	case TierS3:
		return "S3"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

// IsPrivate reports whether the tier requires the session to be marked
// private (S2 or S3). Mirrors invariant (i) of the session privacy state.
func (t Tier) IsPrivate() bool {
	return t >= TierS2
}

// SupTier returns the supremum (higher-numbered, more sensitive) of two tiers.
func SupTier(a, b Tier) Tier {
	if b > a {
		return b
	}
	return a
}

// SupTiers reduces a slice of tiers to their supremum. Returns TierS1 for
// an empty slice — the safe default.
func SupTiers(tiers ...Tier) Tier {
	max := TierS1
	for _, t := range tiers {
		max = SupTier(max, t)
	}
	return max
}

// ParseTier maps a classifier string ("S1"/"S2"/"S3") to a Tier. Returns
// false if the string does not name a known tier — callers must fail safe
// (usually to TierS1 plus low confidence) rather than trust this blindly.
func ParseTier(s string) (Tier, bool) {
	switch s {
	case "S1":
		return TierS1, true
	case "S2":
		return TierS2, true
	case "S3":
		return TierS3, true
	default:
		return TierS1, false
	}
}
