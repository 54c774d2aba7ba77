package detect

import (
	"context"
	"strings"
	"sync"

	"github.com/OpenBMB/privacyguard/internal/model"
)

// DefaultCheckpointDetectors maps each checkpoint to the detector kinds
// enabled for it when the operator's config leaves checkpoints
// unconfigured. MessageReceived and AfterToolCall run both; BeforeToolCall
// runs the rule detector only (tool params rarely carry prose worth a
// model call); ResolveModel reuses the MessageReceived result rather than
// re-detecting.
var DefaultCheckpointDetectors = map[model.Checkpoint][]model.DetectorKind{
	model.MessageReceived:   {model.DetectorRule, model.DetectorSemantic},
	model.BeforeToolCall:    {model.DetectorRule},
	model.AfterToolCall:     {model.DetectorRule, model.DetectorSemantic},
	model.ToolResultPersist: {model.DetectorRule},
}

// Aggregator is the detector fan-out/reduce component (C3).
type Aggregator struct {
	rule        *RuleDetector
	semantic    *SemanticDetector
	checkpoints map[model.Checkpoint][]model.DetectorKind
}

// NewAggregator builds an Aggregator. semantic may be nil, in which case
// any checkpoint configured to use it simply gets no semantic contribution
// (equivalent to the local model being disabled). checkpoints is the
// per-checkpoint detector-kind configuration (spec §6's
// checkpoints.onUserMessage/onToolCallProposed/onToolCallExecuted); a nil
// map falls back to DefaultCheckpointDetectors.
func NewAggregator(rule *RuleDetector, semantic *SemanticDetector, checkpoints map[model.Checkpoint][]model.DetectorKind) *Aggregator {
	if checkpoints == nil {
		checkpoints = DefaultCheckpointDetectors
	}
	return &Aggregator{rule: rule, semantic: semantic, checkpoints: checkpoints}
}

// Detect runs the detectors enabled for checkpoint concurrently and
// reduces their results by tier supremum, tie-breaking on detector
// priority (rule beats semantic). The aggregator never fails as a whole:
// an individual detector's error already collapses to an S1 contribution
// inside that detector, per spec §4.2/§4.3.
func (a *Aggregator) Detect(ctx context.Context, dctx model.DetectionContext, checkpoint model.Checkpoint) model.DetectionResult {
	// A checkpoint not present in the map falls back to the default; a
	// checkpoint present with an explicitly empty slice means "run no
	// detector at all" and must be honored, not treated the same as
	// unconfigured.
	kinds, configured := a.checkpoints[checkpoint]
	if !configured {
		kinds = DefaultCheckpointDetectors[checkpoint]
	}

	results := make([]model.DetectionResult, 0, len(kinds))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, kind := range kinds {
		kind := kind
		wg.Add(1)
		go func() {
			defer wg.Done()
			var r model.DetectionResult
			switch kind {
			case model.DetectorRule:
				if a.rule == nil {
					return
				}
				r = a.rule.Detect(dctx)
			case model.DetectorSemantic:
				if a.semantic == nil {
					return
				}
				r = a.semantic.Detect(ctx, dctx)
			default:
				return
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return reduce(results)
}

// reduce folds per-detector results to a single supremum result, joining
// the reasons of every detector that contributed to the winning tier (or,
// if none reached above S1, every detector's reason) with "; ".
func reduce(results []model.DetectionResult) model.DetectionResult {
	if len(results) == 0 {
		return model.DetectionResult{Tier: model.TierS1, Reason: "no detectors ran", Confidence: 0}
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Tier > best.Tier || (r.Tier == best.Tier && r.Kind.Priority() > best.Kind.Priority()) {
			best = r
		}
	}

	var reasons []string
	for _, r := range results {
		if r.Tier == best.Tier && r.Reason != "" {
			reasons = append(reasons, r.Reason)
		}
	}
	if len(reasons) == 0 {
		for _, r := range results {
			if r.Reason != "" {
				reasons = append(reasons, r.Reason)
			}
		}
	}

	return model.DetectionResult{
		Tier:       best.Tier,
		Reason:     strings.Join(dedupe(reasons), "; "),
		Kind:       best.Kind,
		Confidence: best.Confidence,
	}
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
