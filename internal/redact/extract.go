package redact

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/OpenBMB/privacyguard/internal/localmodel"
	"github.com/OpenBMB/privacyguard/internal/model"
)

// maxExtractionSnippet caps the content sent to the local model for PII
// extraction (spec §4.4: "≈3000 characters").
const maxExtractionSnippet = 3000

// extractStopSequences mark the boundary between the model's completion
// and further hallucination.
var extractStopSequences = []string{"\n\n", "Input:", "Task:"}

const extractPromptTemplate = `Task: extract every piece of personally identifiable or sensitive information from the input below as a JSON array of {"type": "<TYPE>", "value": "<exact substring>"} objects. Only include information that literally appears in the input.

Input: My name is Li Wei, reach me at liwei@example.com or 555-0142.
Output: [{"type": "name", "value": "Li Wei"}, {"type": "email", "value": "liwei@example.com"}, {"type": "phone", "value": "555-0142"}]

Input: %s
Output: [`

// Extractor calls the local model to extract PrivacyEntity spans from
// content (C4). A nil client degrades to always returning an empty list,
// signaling callers to use FallbackRedact instead.
type Extractor struct {
	client *localmodel.Client
}

// NewExtractor builds an Extractor over an already-configured local model
// client. client may be nil.
func NewExtractor(client *localmodel.Client) *Extractor {
	return &Extractor{client: client}
}

// Enabled reports whether this extractor has a usable local model client.
func (x *Extractor) Enabled() bool { return x != nil && x.client != nil }

type rawEntity struct {
	Type  any `json:"type"`
	Value any `json:"value"`
}

// Extract calls the local model with a completion-style prompt ending in
// "Output: [" and parses the completed JSON array. Any failure — disabled
// extractor, transport error, invalid JSON, non-array response — yields
// an empty list rather than an error; callers fall back to FallbackRedact.
func (x *Extractor) Extract(ctx context.Context, content string) []model.PrivacyEntity {
	if !x.Enabled() {
		return nil
	}

	snippet := content
	if len(snippet) > maxExtractionSnippet {
		snippet = snippet[:maxExtractionSnippet]
	}

	prompt := buildExtractPrompt(snippet)
	reply, err := x.client.Complete(ctx, prompt, extractStopSequences)
	if err != nil {
		return nil
	}

	return parseExtraction(reply)
}

func buildExtractPrompt(snippet string) string {
	return fmt.Sprintf(extractPromptTemplate, snippet)
}

// parseExtraction implements spec §4.4's completion-parsing contract: the
// reply is prefixed with "[", trimmed after the last "]", and parsed as a
// JSON array. Entities are kept only where type and value are both
// strings and len(value) >= 2.
func parseExtraction(reply string) []model.PrivacyEntity {
	reply = localmodel.StripThink(reply)
	reply = strings.TrimSpace(reply)

	body := "[" + reply
	if idx := strings.LastIndex(body, "]"); idx != -1 {
		body = body[:idx+1]
	} else {
		return nil
	}

	var raw []rawEntity
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil
	}

	var out []model.PrivacyEntity
	for _, r := range raw {
		t, tok := r.Type.(string)
		v, vok := r.Value.(string)
		if !tok || !vok {
			continue
		}
		if len(v) < 2 {
			continue
		}
		out = append(out, model.PrivacyEntity{Type: t, Value: v})
	}
	return out
}
