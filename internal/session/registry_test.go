package session

import (
	"testing"

	"github.com/OpenBMB/privacyguard/internal/model"
)

func TestMarkPrivateMonotone(t *testing.T) {
	r := NewRegistry()
	r.MarkPrivate("s1", model.TierS1)
	if r.IsPrivate("s1") {
		t.Error("S1 must not mark private")
	}
	r.MarkPrivate("s1", model.TierS2)
	if !r.IsPrivate("s1") {
		t.Error("S2 must mark private")
	}
	r.MarkPrivate("s1", model.TierS1)
	if !r.IsPrivate("s1") {
		t.Error("is_private must stay true once set (monotone)")
	}
	if r.HighestTier("s1") != model.TierS2 {
		t.Errorf("expected highest tier S2, got %v", r.HighestTier("s1"))
	}
}

func TestHighestTierSupremum(t *testing.T) {
	r := NewRegistry()
	r.MarkPrivate("s1", model.TierS2)
	r.MarkPrivate("s1", model.TierS3)
	r.MarkPrivate("s1", model.TierS1)
	if r.HighestTier("s1") != model.TierS3 {
		t.Errorf("expected S3 to stick, got %v", r.HighestTier("s1"))
	}
}

func TestRecordDetectionRing(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < historyRingSize+10; i++ {
		r.RecordDetection("s1", model.TierS1, model.MessageReceived, "reason")
	}
	if len(r.History("s1")) != historyRingSize {
		t.Errorf("expected ring capped at %d, got %d", historyRingSize, len(r.History("s1")))
	}
}

func TestExtractPreReadPaths(t *testing.T) {
	msg := "please look at reports/q1.csv and also notes/todo.md, ignore image.png"
	paths := ExtractPreReadPaths(msg)
	if len(paths) != 2 {
		t.Fatalf("expected 2 path-like tokens, got %d: %v", len(paths), paths)
	}
}

func TestMarkAndCheckPreRead(t *testing.T) {
	r := NewRegistry()
	r.MarkPreReadFiles("s1", "see data/export.csv for details")
	if !r.IsFilePreRead("s1", "data/export.csv") {
		t.Error("expected data/export.csv to be pre-read")
	}
	if r.IsFilePreRead("s1", "data/other.csv") {
		t.Error("unrelated path must not be pre-read")
	}
}

func TestResetRemovesGuardPair(t *testing.T) {
	r := NewRegistry()
	r.MarkPrivate("s1", model.TierS3)
	r.MarkPrivate(GuardKey("s1"), model.TierS2)
	r.Reset("s1")
	if r.IsPrivate("s1") {
		t.Error("reset must clear session state")
	}
	if r.IsPrivate(GuardKey("s1")) {
		t.Error("reset must clear the paired guard session too")
	}
}

func TestIsGuardSession(t *testing.T) {
	cases := map[string]bool{
		"agentA:sess1":       false,
		"agentA:sess1:guard":  true,
		"agentA:sess1:guard:reply": true,
	}
	for key, want := range cases {
		if got := IsGuardSession(key); got != want {
			t.Errorf("IsGuardSession(%q) = %v, want %v", key, got, want)
		}
	}
}
