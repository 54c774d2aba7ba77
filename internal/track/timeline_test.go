package track

import (
	"strings"
	"testing"

	"github.com/OpenBMB/privacyguard/internal/model"
)

func TestBuildTimelinePairsByPosition(t *testing.T) {
	full := []Record{
		{ID: "1", Timestamp: "2026-01-01T00:00:00Z", Tier: model.TierS1, Content: "hi"},
		{ID: "2", Timestamp: "2026-01-01T00:00:01Z", Tier: model.TierS2, Content: "my address is 1 Main St"},
	}
	clean := []Record{
		{ID: "1", Timestamp: "2026-01-01T00:00:00Z", Tier: model.TierS1, Content: "hi"},
		{ID: "2", Timestamp: "2026-01-01T00:00:01Z", Tier: model.TierS2, Content: "my address is [REDACTED:ADDRESS]"},
	}

	tl := BuildTimeline("sess1", full, clean)
	if len(tl.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(tl.Entries))
	}
	if tl.Entries[1].Clean.Content != "my address is [REDACTED:ADDRESS]" {
		t.Errorf("unexpected clean content: %q", tl.Entries[1].Clean.Content)
	}
}

func TestFormatTimelineEmpty(t *testing.T) {
	tl := BuildTimeline("sess1", nil, nil)
	out := FormatTimeline(tl)
	if !strings.Contains(out, "No entries found") {
		t.Errorf("expected empty-timeline message, got %q", out)
	}
}

func TestFormatTimelineRendersEntries(t *testing.T) {
	full := []Record{{ID: "1", Timestamp: "2026-01-01T00:00:00Z", Tier: model.TierS2, Content: "full"}}
	clean := []Record{{ID: "1", Timestamp: "2026-01-01T00:00:00Z", Tier: model.TierS2, Content: "clean"}}
	tl := BuildTimeline("sess1", full, clean)

	out := FormatTimeline(tl)
	if !strings.Contains(out, "sess1") || !strings.Contains(out, "clean") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	full := []Record{{ID: "1", Timestamp: "2026-01-01T00:00:00Z", Tier: model.TierS1, Content: "hi"}}
	tl := BuildTimeline("sess1", full, full)

	out, err := FormatJSON(tl)
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}
	if !strings.Contains(out, `"session": "sess1"`) {
		t.Errorf("expected session field in JSON, got %q", out)
	}
}
