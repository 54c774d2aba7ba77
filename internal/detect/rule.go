// Package detect implements the three detector components: the
// deterministic rule detector (C1), the local-model semantic detector
// (C2), and the aggregator that fans out across both (C3).
package detect

import (
	"regexp"
	"strings"

	"github.com/OpenBMB/privacyguard/internal/model"
	"github.com/OpenBMB/privacyguard/internal/pathmatch"
)

// TierRules is the set of deterministic signals that raise to a given
// tier: keywords (substring, case-insensitive), compiled regex patterns,
// tool names, and path prefixes/globs.
type TierRules struct {
	Keywords []string
	Patterns []*regexp.Regexp
	Tools    []string
	Paths    []string
}

// RuleConfig is the rule detector's configuration, keyed by tier. Only S2
// and S3 are configurable — anything that matches neither is S1 by
// default. Invalid regex must be rejected at config-load time (see
// internal/config), not here.
type RuleConfig struct {
	S2 TierRules
	S3 TierRules
}

// RuleDetector is the deterministic detector (C1). Confidence is always 1.0.
type RuleDetector struct {
	cfg RuleConfig
}

// NewRuleDetector builds a RuleDetector from an already-validated config.
func NewRuleDetector(cfg RuleConfig) *RuleDetector {
	return &RuleDetector{cfg: cfg}
}

// Detect runs the ordered sub-checks from spec §4.1 and returns the
// supremum tier with the first matching reason at that tier.
func (d *RuleDetector) Detect(ctx model.DetectionContext) model.DetectionResult {
	best := model.TierS1
	reason := ""

	consider := func(tier model.Tier, why string) {
		if tier > best || (tier == best && reason == "") {
			best = tier
			reason = why
		}
	}

	if ctx.HasMessage() {
		if tier, why, ok := matchKeywords(ctx.MessageText, d.cfg); ok {
			consider(tier, why)
		}
		if tier, why, ok := matchPatterns(ctx.MessageText, d.cfg); ok {
			consider(tier, why)
		}
	}

	if ctx.HasToolCall() {
		if tier, why, ok := matchTool(ctx.ToolName, d.cfg); ok {
			consider(tier, why)
		}
		for _, p := range ctx.PathValues() {
			if pathmatch.IsForcedSecret(p) {
				consider(model.TierS3, "path "+p+" names key material")
				continue
			}
			if tier, why, ok := matchPath(p, d.cfg); ok {
				consider(tier, why)
			}
		}
	}

	if ctx.ToolResult != "" {
		if tier, why, ok := matchKeywords(ctx.ToolResult, d.cfg); ok {
			consider(tier, why)
		}
	}

	return model.DetectionResult{Tier: best, Reason: reason, Kind: model.DetectorRule, Confidence: 1.0}
}

func matchKeywords(text string, cfg RuleConfig) (model.Tier, string, bool) {
	lower := strings.ToLower(text)
	if why, ok := firstKeyword(lower, cfg.S3.Keywords); ok {
		return model.TierS3, why, ok
	}
	if why, ok := firstKeyword(lower, cfg.S2.Keywords); ok {
		return model.TierS2, why, ok
	}
	return model.TierS1, "", false
}

func firstKeyword(lower string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return "matched keyword \"" + kw + "\"", true
		}
	}
	return "", false
}

func matchPatterns(text string, cfg RuleConfig) (model.Tier, string, bool) {
	for _, re := range cfg.S3.Patterns {
		if re.MatchString(text) {
			return model.TierS3, "matched pattern " + re.String(), true
		}
	}
	for _, re := range cfg.S2.Patterns {
		if re.MatchString(text) {
			return model.TierS2, "matched pattern " + re.String(), true
		}
	}
	return model.TierS1, "", false
}

func matchTool(name string, cfg RuleConfig) (model.Tier, string, bool) {
	for _, t := range cfg.S3.Tools {
		if strings.EqualFold(t, name) {
			return model.TierS3, "tool \"" + name + "\" is S3-listed", true
		}
	}
	for _, t := range cfg.S2.Tools {
		if strings.EqualFold(t, name) {
			return model.TierS2, "tool \"" + name + "\" is S2-listed", true
		}
	}
	return model.TierS1, "", false
}

func matchPath(p string, cfg RuleConfig) (model.Tier, string, bool) {
	if pathmatch.MatchesAny(cfg.S3.Paths, p) {
		return model.TierS3, "path \"" + p + "\" is under an S3 root", true
	}
	if pathmatch.MatchesAny(cfg.S2.Paths, p) {
		return model.TierS2, "path \"" + p + "\" is under an S2 root", true
	}
	return model.TierS1, "", false
}
