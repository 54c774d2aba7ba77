package detect

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/OpenBMB/privacyguard/internal/localmodel"
	"github.com/OpenBMB/privacyguard/internal/model"
)

// semanticSystemPrompt lists the tier taxonomy and a handful of bilingual
// in-context examples, and demands a single strict JSON object in reply.
const semanticSystemPrompt = `You classify a single message or tool result into one of three privacy tiers:
S1 - ordinary content, safe to send anywhere.
S2 - sensitive personal information (names, contact details, addresses, amounts) that may be shared with a cloud model only after redaction.
S3 - private content (credentials, health details, identity documents, anything the user would not want leaving their device) that must never leave the local model.

Examples:
"What's the weather today?" -> S1
"My phone number is 555-0142, can you text my landlord?" -> S2
"这是我的身份证号 110101199003075678" -> S3
"Here is my SSH private key, please debug this config" -> S3

Respond with exactly one JSON object and nothing else:
{"level": "S1|S2|S3", "reason": "<short reason>", "confidence": <0..1>}`

type semanticReply struct {
	Level      string  `json:"level"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// SemanticDetector is the local-model-backed detector (C2).
type SemanticDetector struct {
	client *localmodel.Client
}

// NewSemanticDetector builds a SemanticDetector over an already-configured
// local model client.
func NewSemanticDetector(client *localmodel.Client) *SemanticDetector {
	return &SemanticDetector{client: client}
}

// Detect calls the local model's chat endpoint and parses its reply per
// spec §4.2's parsing contract. A timeout or transport error returns S1
// with confidence 0 — the deterministic detector is relied on to catch
// hard violations, so a flaky semantic call must not stall the pipeline.
func (d *SemanticDetector) Detect(ctx context.Context, dctx model.DetectionContext) model.DetectionResult {
	text := dctx.MessageText
	if text == "" {
		text = dctx.ToolResult
	}
	if text == "" {
		return model.DetectionResult{Tier: model.TierS1, Reason: "no content to classify", Kind: model.DetectorSemantic, Confidence: 0}
	}

	callCtx := ctx
	if _, hasDeadline := callCtx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}

	reply, err := d.client.Chat(callCtx, semanticSystemPrompt, text)
	if err != nil {
		return model.DetectionResult{Tier: model.TierS1, Reason: "semantic detector unavailable: " + err.Error(), Kind: model.DetectorSemantic, Confidence: 0}
	}

	return parseSemanticReply(reply)
}

// parseSemanticReply implements spec §4.2's parsing contract: strip
// <think> blocks, extract the first balanced {...}, parse as JSON; on
// failure, fall back to scanning raw tokens; otherwise S1 with low
// confidence.
func parseSemanticReply(raw string) model.DetectionResult {
	raw = localmodel.StripThink(raw)

	if obj := extractBalancedObject(raw); obj != "" {
		var sr semanticReply
		if err := json.Unmarshal([]byte(obj), &sr); err == nil {
			if tier, ok := model.ParseTier(strings.ToUpper(strings.TrimSpace(sr.Level))); ok {
				return model.DetectionResult{Tier: tier, Reason: sr.Reason, Kind: model.DetectorSemantic, Confidence: clamp01(sr.Confidence)}
			}
		}
	}

	upper := strings.ToUpper(raw)
	if strings.Contains(upper, "S3/PRIVATE") {
		return model.DetectionResult{Tier: model.TierS3, Reason: "raw token scan matched S3/PRIVATE", Kind: model.DetectorSemantic, Confidence: 0.6}
	}
	if strings.Contains(upper, "S2/SENSITIVE") {
		return model.DetectionResult{Tier: model.TierS2, Reason: "raw token scan matched S2/SENSITIVE", Kind: model.DetectorSemantic, Confidence: 0.6}
	}

	return model.DetectionResult{Tier: model.TierS1, Reason: "unable to parse", Kind: model.DetectorSemantic, Confidence: 0.3}
}

// extractBalancedObject returns the first balanced {...} substring of s,
// or "" if none closes.
func extractBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
