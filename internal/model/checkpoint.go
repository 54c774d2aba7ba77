package model

import "fmt"

// Checkpoint is one of the six lifecycle points the orchestrator runs at.
type Checkpoint string

const (
	MessageReceived  Checkpoint = "MessageReceived"
	ResolveModel     Checkpoint = "ResolveModel"
	BeforeToolCall   Checkpoint = "BeforeToolCall"
	AfterToolCall    Checkpoint = "AfterToolCall"
	ToolResultPersist Checkpoint = "ToolResultPersist"
	SessionEnd       Checkpoint = "SessionEnd"
)

// DetectorKind distinguishes the deterministic rule detector from the
// model-backed semantic detector.
type DetectorKind string

const (
	DetectorRule     DetectorKind = "rule"
	DetectorSemantic DetectorKind = "semantic"
)

// Priority orders detector kinds for aggregation tie-breaks: rules carry
// concrete evidence and win ties over semantic guesses.
func (k DetectorKind) Priority() int {
	switch k {
	case DetectorRule:
		return 2
	case DetectorSemantic:
		return 1
	default:
		return 0
	}
}

// ParseDetectorKind maps the on-disk config vocabulary ("ruleDetector",
// "localModelDetector") onto a DetectorKind.
func ParseDetectorKind(s string) (DetectorKind, error) {
	switch s {
	case "ruleDetector":
		return DetectorRule, nil
	case "localModelDetector":
		return DetectorSemantic, nil
	default:
		return "", fmt.Errorf("model: unknown detector kind %q", s)
	}
}
