package redact

import (
	"context"
	"testing"
)

func TestParseExtractionValid(t *testing.T) {
	reply := `{"type":"name","value":"Li Wei"},{"type":"email","value":"a@b.com"}]`
	got := parseExtraction(reply)
	if len(got) != 2 {
		t.Fatalf("expected 2 entities, got %d: %v", len(got), got)
	}
}

func TestParseExtractionFiltersShortValues(t *testing.T) {
	reply := `{"type":"id","value":"X"},{"type":"email","value":"a@b.com"}]`
	got := parseExtraction(reply)
	if len(got) != 1 {
		t.Fatalf("expected single-char value filtered out, got %v", got)
	}
}

func TestParseExtractionInvalidJSON(t *testing.T) {
	got := parseExtraction("not json at all")
	if got != nil {
		t.Errorf("expected nil for invalid JSON, got %v", got)
	}
}

func TestParseExtractionNonStringType(t *testing.T) {
	reply := `{"type":123,"value":"a@b.com"}]`
	got := parseExtraction(reply)
	if got != nil {
		t.Errorf("expected non-string type to be dropped, got %v", got)
	}
}

func TestExtractorDisabledReturnsNil(t *testing.T) {
	x := NewExtractor(nil)
	if x.Enabled() {
		t.Error("nil client extractor must be disabled")
	}
	if got := x.Extract(context.Background(), "my name is Li Wei"); got != nil {
		t.Errorf("expected nil from disabled extractor, got %v", got)
	}
}
