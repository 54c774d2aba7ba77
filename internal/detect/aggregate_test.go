package detect

import (
	"context"
	"testing"

	"github.com/OpenBMB/privacyguard/internal/model"
)

func TestAggregatorSupremumAndTieBreak(t *testing.T) {
	a := NewAggregator(NewRuleDetector(testRuleConfig()), nil, nil)
	res := a.Detect(context.Background(), model.DetectionContext{MessageText: "my social security number is 123"}, model.MessageReceived)
	if res.Tier != model.TierS3 {
		t.Errorf("expected S3, got %v", res.Tier)
	}
	if res.Kind != model.DetectorRule {
		t.Errorf("expected winning kind to be rule, got %v", res.Kind)
	}
}

func TestAggregatorNeverFailsAsWhole(t *testing.T) {
	a := NewAggregator(nil, nil, nil)
	res := a.Detect(context.Background(), model.DetectionContext{MessageText: "hello"}, model.MessageReceived)
	if res.Tier != model.TierS1 {
		t.Errorf("expected safe S1 default when no detectors configured, got %v", res.Tier)
	}
}

func TestReduceTieBreakPrefersRule(t *testing.T) {
	results := []model.DetectionResult{
		{Tier: model.TierS2, Kind: model.DetectorSemantic, Reason: "semantic guess"},
		{Tier: model.TierS2, Kind: model.DetectorRule, Reason: "rule match"},
	}
	got := reduce(results)
	if got.Kind != model.DetectorRule {
		t.Errorf("expected rule to win tie at equal tier, got %v", got.Kind)
	}
	if got.Reason != "semantic guess; rule match" {
		t.Errorf("unexpected composite reason: %q", got.Reason)
	}
}

func TestReduceEmpty(t *testing.T) {
	got := reduce(nil)
	if got.Tier != model.TierS1 {
		t.Errorf("expected S1 default for empty result set, got %v", got.Tier)
	}
}
