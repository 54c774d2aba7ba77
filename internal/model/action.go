package model

// Action is the routing action dictated by a tier: R(S1)=Passthrough,
// R(S2)=Desensitize, R(S3)=Redirect. R is total over {S1,S2,S3}.
type Action string

const (
	Passthrough Action = "passthrough"
	Desensitize Action = "desensitize"
	Redirect    Action = "redirect"
)

// RouteFor returns the action prescribed for a tier. Total: every tier maps
// to exactly one action.
func RouteFor(t Tier) Action {
	switch t {
	case TierS2:
		return Desensitize
	case TierS3:
		return Redirect
	default:
		return Passthrough
	}
}
