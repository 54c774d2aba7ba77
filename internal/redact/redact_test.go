package redact

import (
	"strings"
	"testing"

	"github.com/OpenBMB/privacyguard/internal/model"
)

func TestRedactReplacesLongestFirst(t *testing.T) {
	entities := []model.PrivacyEntity{
		{Type: "name", Value: "Li"},
		{Type: "name", Value: "Li Wei"},
	}
	res := Redact("My name is Li Wei and my friend is Li.", entities)
	if strings.Contains(res.Text, "Li Wei") || strings.Contains(res.Text, " Li.") {
		t.Errorf("expected both values fully redacted, got %q", res.Text)
	}
	if !res.ModelUsed {
		t.Error("expected ModelUsed true for entity-driven redaction")
	}
}

func TestRedactNoLeakPostCondition(t *testing.T) {
	entities := []model.PrivacyEntity{
		{Type: "email", Value: "a@b.com"},
		{Type: "phone", Value: "555-0142"},
	}
	res := Redact("contact a@b.com or call 555-0142", entities)
	if leaks := CheckLeaks(res.Text, entities); len(leaks) != 0 {
		t.Errorf("expected no leaks, found %v", leaks)
	}
}

func TestTokenCanonicalAndFallback(t *testing.T) {
	if got := Token("email"); got != "[REDACTED:EMAIL]" {
		t.Errorf("expected canonical EMAIL token, got %q", got)
	}
	if got := Token("Date Of Birth"); got != "[REDACTED:BIRTHDAY]" {
		t.Errorf("expected canonical BIRTHDAY token, got %q", got)
	}
	if got := Token("weird_unknown_type"); got != "[REDACTED:WEIRD_UNKNOWN_TYPE]" {
		t.Errorf("expected passthrough uppercasing, got %q", got)
	}
}

func TestFallbackRedact(t *testing.T) {
	res := FallbackRedact("use sk-abcdefghijklmno to authenticate, password=hunter2", nil)
	if strings.Contains(res.Text, "sk-abcdefghijklmno") || strings.Contains(res.Text, "hunter2") {
		t.Errorf("expected secret values redacted, got %q", res.Text)
	}
	if res.ModelUsed {
		t.Error("fallback redaction must report ModelUsed=false")
	}
}

func TestRedactEmptyEntities(t *testing.T) {
	res := Redact("nothing sensitive here", nil)
	if res.Text != "nothing sensitive here" {
		t.Errorf("expected unchanged text, got %q", res.Text)
	}
}
