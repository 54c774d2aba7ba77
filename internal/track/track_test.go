package track

import (
	"strings"
	"testing"

	"github.com/OpenBMB/privacyguard/internal/model"
)

func TestPersistS1WritesSameContent(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Persist("agentA", "sess1", model.TierS1, "hello there", ""); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	full, err := ReadFull(s.FullPath("agentA", "sess1"))
	if err != nil || len(full) != 1 {
		t.Fatalf("ReadFull: %v, %v", full, err)
	}
	clean, err := ReadClean(s.CleanPath("agentA", "sess1"))
	if err != nil || len(clean) != 1 {
		t.Fatalf("ReadClean: %v, %v", clean, err)
	}
	if full[0].Content != "hello there" || clean[0].Content != "hello there" {
		t.Errorf("S1 clean/full content must match: full=%q clean=%q", full[0].Content, clean[0].Content)
	}
}

func TestPersistS2WritesRedactedClean(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Persist("agentA", "sess1", model.TierS2, "my phone is 555-0142", "my phone is [REDACTED:PHONE]"); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	full, _ := ReadFull(s.FullPath("agentA", "sess1"))
	clean, _ := ReadClean(s.CleanPath("agentA", "sess1"))
	if full[0].Content != "my phone is 555-0142" {
		t.Errorf("full must retain original content, got %q", full[0].Content)
	}
	if clean[0].Content != "my phone is [REDACTED:PHONE]" {
		t.Errorf("clean must contain redacted content, got %q", clean[0].Content)
	}
}

func TestPersistS3WritesPlaceholder(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Persist("agentA", "sess1", model.TierS3, "my ssh private key is ...", "irrelevant"); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	clean, _ := ReadClean(s.CleanPath("agentA", "sess1"))
	if !strings.Contains(clean[0].Content, "Private content") {
		t.Errorf("expected placeholder, got %q", clean[0].Content)
	}
}

func TestFullHistoryDirMatchesLayout(t *testing.T) {
	s := NewStore("/base")
	if got := s.FullHistoryDir("agentA"); got != "/base/agents/agentA/sessions/full" {
		t.Errorf("unexpected layout: %q", got)
	}
}

func TestPersistOrderingAcrossCalls(t *testing.T) {
	s := NewStore(t.TempDir())
	for i := 0; i < 5; i++ {
		if err := s.Persist("agentA", "sess1", model.TierS1, "msg", ""); err != nil {
			t.Fatalf("Persist #%d: %v", i, err)
		}
	}
	full, _ := ReadFull(s.FullPath("agentA", "sess1"))
	clean, _ := ReadClean(s.CleanPath("agentA", "sess1"))
	if len(full) != 5 || len(clean) != 5 {
		t.Fatalf("expected 5 records each, got full=%d clean=%d", len(full), len(clean))
	}
	for i := range full {
		if full[i].ID != clean[i].ID {
			t.Errorf("record %d: full/clean ID mismatch, full=%s clean=%s", i, full[i].ID, clean[i].ID)
		}
	}
}
