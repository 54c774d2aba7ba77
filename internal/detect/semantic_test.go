package detect

import (
	"testing"

	"github.com/OpenBMB/privacyguard/internal/model"
)

func TestParseSemanticReplyStrictJSON(t *testing.T) {
	res := parseSemanticReply(`{"level":"S2","reason":"contains a phone number","confidence":0.85}`)
	if res.Tier != model.TierS2 {
		t.Errorf("expected S2, got %v", res.Tier)
	}
	if res.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", res.Confidence)
	}
}

func TestParseSemanticReplyWithThinkBlock(t *testing.T) {
	res := parseSemanticReply("<think>let me consider this</think>{\"level\":\"S3\",\"reason\":\"ssh key\",\"confidence\":0.95}")
	if res.Tier != model.TierS3 {
		t.Errorf("expected S3, got %v", res.Tier)
	}
}

func TestParseSemanticReplyFallbackTokenScan(t *testing.T) {
	res := parseSemanticReply("I believe this is S3/PRIVATE content based on context")
	if res.Tier != model.TierS3 || res.Confidence != 0.6 {
		t.Errorf("expected S3 confidence 0.6 fallback, got tier=%v conf=%v", res.Tier, res.Confidence)
	}
}

func TestParseSemanticReplyUnparseable(t *testing.T) {
	res := parseSemanticReply("I'm not sure what to say about this one")
	if res.Tier != model.TierS1 || res.Confidence > 0.3 {
		t.Errorf("expected S1 with confidence <= 0.3, got tier=%v conf=%v", res.Tier, res.Confidence)
	}
}

func TestExtractBalancedObject(t *testing.T) {
	s := `noise before {"a": {"b": 1}} noise after`
	got := extractBalancedObject(s)
	if got != `{"a": {"b": 1}}` {
		t.Errorf("unexpected extraction: %q", got)
	}
}
