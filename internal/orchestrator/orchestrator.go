// Package orchestrator implements the six-checkpoint lifecycle dispatch
// (C10): the host runtime calls one method per checkpoint and the
// orchestrator classifies, redacts, persists, and guards on its behalf.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/OpenBMB/privacyguard/internal/convert"
	"github.com/OpenBMB/privacyguard/internal/detect"
	"github.com/OpenBMB/privacyguard/internal/events"
	"github.com/OpenBMB/privacyguard/internal/guard"
	"github.com/OpenBMB/privacyguard/internal/localmodel"
	"github.com/OpenBMB/privacyguard/internal/memory"
	"github.com/OpenBMB/privacyguard/internal/model"
	"github.com/OpenBMB/privacyguard/internal/redact"
	"github.com/OpenBMB/privacyguard/internal/session"
	"github.com/OpenBMB/privacyguard/internal/track"
)

// reentrantPrefixes mark content the orchestrator itself produced on a
// prior pass (a redaction token or a system-injected notice). Seeing one
// again means the host re-delivered an event; the router must not run
// twice on the same content (spec's re-entrancy guard).
var reentrantPrefixes = []string{"[REDACTED:", "[SYSTEM]"}

func isReentrant(text string) bool {
	for _, p := range reentrantPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// Config is the per-deployment wiring the orchestrator needs beyond its
// component dependencies: identity for dual-track paths and labels for
// the S3 direct-response decision.
type Config struct {
	AgentID       string
	Workspace     string // resolves relative referenced-file paths
	GuardProvider string // e.g. "local"
	GuardModel    string // local model name used for S3 direct responses
}

// Orchestrator wires the detection, redaction, persistence, guard, memory,
// and event components into the six lifecycle checkpoints.
type Orchestrator struct {
	cfg Config

	aggregator *detect.Aggregator
	sessions   *session.Registry
	guard      *guard.Guard
	tracks     *track.Store
	memory     *memory.Manager
	extractor  *redact.Extractor
	extra      []redact.CompiledPattern
	bus        *events.Bus
	client     *localmodel.Client
	log        *slog.Logger
}

// New builds an Orchestrator. memory, bus, and client may be nil — a nil
// memory manager makes SessionEnd a no-op, a nil bus makes event
// publication a no-op, and a nil client forces S3 onto its local-call
// failure path.
func New(
	cfg Config,
	aggregator *detect.Aggregator,
	sessions *session.Registry,
	g *guard.Guard,
	tracks *track.Store,
	mem *memory.Manager,
	extractor *redact.Extractor,
	extra []redact.CompiledPattern,
	bus *events.Bus,
	client *localmodel.Client,
	log *slog.Logger,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		cfg:        cfg,
		aggregator: aggregator,
		sessions:   sessions,
		guard:      g,
		tracks:     tracks,
		memory:     mem,
		extractor:  extractor,
		extra:      extra,
		bus:        bus,
		client:     client,
		log:        log,
	}
}

func (o *Orchestrator) publish(tier model.Tier, provider, modelName, reason, sessionKey string) {
	if o.bus == nil || !tier.IsPrivate() {
		return
	}
	o.bus.Publish(events.PrivacyActivatedEvent(tier, provider, modelName, reason, sessionKey))
}

// redactText runs the desensitization pipeline: model-backed extraction
// when the local extractor is enabled and returns entities, rule-based
// fallback otherwise (disabled extractor, failed call or empty result).
func (o *Orchestrator) redactText(ctx context.Context, content string) string {
	if o.extractor.Enabled() {
		if entities := o.extractor.Extract(ctx, content); len(entities) > 0 {
			return redact.Redact(content, entities).Text
		}
	}
	return redact.FallbackRedact(content, o.extra).Text
}

// tryReadReferenced pre-reads a file mentioned in message, relative to
// this orchestrator's configured workspace.
func (o *Orchestrator) tryReadReferenced(message string) (text, path string, ok bool) {
	return convert.TryReadReferencedFile(message, o.cfg.Workspace)
}

// MessageReceived classifies an incoming user message, records and marks
// session state, and persists it to the dual-track history. There is no
// decision surface at this checkpoint (spec §4.10); the tier is returned
// so the caller can log it, but ResolveModel re-derives routing from
// session state, not from this return value.
func (o *Orchestrator) MessageReceived(ctx context.Context, sessionKey, message string) (model.Tier, error) {
	if isReentrant(message) {
		return model.TierS1, nil
	}

	dctx := model.DetectionContext{MessageText: message, SessionKey: sessionKey, AgentID: o.cfg.AgentID}
	result := o.aggregator.Detect(ctx, dctx, model.MessageReceived)

	o.sessions.RecordDetection(sessionKey, result.Tier, model.MessageReceived, result.Reason)
	if result.Tier.IsPrivate() {
		o.sessions.MarkPrivate(sessionKey, result.Tier)
	}
	o.sessions.MarkPreReadFiles(sessionKey, message)
	o.publish(result.Tier, "", "", result.Reason, sessionKey)

	clean := message
	if result.Tier == model.TierS2 {
		clean = o.redactText(ctx, message)
	}
	if o.tracks != nil {
		if err := o.tracks.Persist(o.cfg.AgentID, sessionKey, result.Tier, message, clean); err != nil {
			return result.Tier, &PolicyError{Kind: KindPersistFailed, Op: "MessageReceived", Err: err}
		}
	}

	return result.Tier, nil
}

// ResolveModel implements the state machine from spec §4.10: S1 passes
// through unchanged, S2 rewrites the prompt with redacted content, S3
// never leaves this process and instead returns a local direct response.
func (o *Orchestrator) ResolveModel(ctx context.Context, sessionKey, message string) (model.RoutingDecision, error) {
	if isReentrant(message) {
		return model.NewPassthrough(), nil
	}

	tier := o.sessions.HighestTier(sessionKey)
	o.log.Debug("orchestrator: resolving model", "session", sessionKey, "tier", tier.String(), "action", model.RouteFor(tier))

	switch tier {
	case model.TierS1:
		return model.NewPassthrough(), nil

	case model.TierS2:
		return o.resolveS2(ctx, sessionKey, message), nil

	case model.TierS3:
		return o.resolveS3(ctx, sessionKey, message), nil

	default:
		return model.NewPassthrough(), nil
	}
}

func (o *Orchestrator) resolveS2(ctx context.Context, sessionKey, message string) model.RoutingDecision {
	fileText, path, ok := o.tryReadReferenced(message)
	var override string
	if ok {
		redactedFile := o.redactText(ctx, fileText)
		task := strings.TrimSpace(strings.Replace(message, path, "", 1))
		override = task + "\n\n" + redactedFile +
			"\n\n(Do not reproduce any [REDACTED:...] tokens verbatim in your reply.)"
		o.sessions.MarkPreRead(sessionKey, path)
	} else {
		override = o.redactText(ctx, message)
	}

	o.publish(model.TierS2, "", "", "S2 prompt desensitized", sessionKey)
	return model.NewOverridePrompt(override)
}

func (o *Orchestrator) resolveS3(ctx context.Context, sessionKey, message string) model.RoutingDecision {
	prompt := message
	if fileText, path, ok := o.tryReadReferenced(message); ok {
		prompt = strings.TrimSpace(strings.Replace(message, path, "", 1)) +
			"\n\n--- FILE CONTENT ---\n" + fileText
		o.sessions.MarkPreRead(sessionKey, path)
	}

	if o.client == nil {
		o.publish(model.TierS3, o.cfg.GuardProvider, o.cfg.GuardModel, "S3 local call unavailable", sessionKey)
		return model.NewDirectResponse(o.cfg.GuardProvider, o.cfg.GuardModel, s3FallbackReply)
	}

	reply, err := o.client.Chat(ctx, s3GuardSystemPrompt, prompt)
	if err != nil {
		o.log.Warn("orchestrator: S3 local call failed, falling back", "error", err, "session", sessionKey)
		o.publish(model.TierS3, o.cfg.GuardProvider, o.cfg.GuardModel, "S3 local call failed", sessionKey)
		return model.NewDirectResponse(o.cfg.GuardProvider, o.cfg.GuardModel, s3FallbackReply)
	}

	o.publish(model.TierS3, o.cfg.GuardProvider, o.cfg.GuardModel, "S3 handled locally", sessionKey)
	return model.NewDirectResponse(o.cfg.GuardProvider, o.cfg.GuardModel, "🔒 "+localmodel.StripThink(reply))
}

const s3GuardSystemPrompt = `You are a privacy-aware local assistant. The user's request touches
highly sensitive (private) content that must never be sent to a cloud model. Answer the
request yourself, as helpfully as you can, using only locally available information. Do not
mention that you are a local fallback unless it is relevant to the answer.`

const s3FallbackReply = "🔒 [Private content] This request involves private information and could not be answered locally right now. Please try again."

// BeforeToolCall evaluates a proposed tool call against the file-access
// guard and the rule detector, returning Allow (Passthrough) or Block.
func (o *Orchestrator) BeforeToolCall(ctx context.Context, sessionKey, toolName string, params map[string]any) (model.RoutingDecision, error) {
	dctx := model.DetectionContext{ToolName: toolName, ToolParams: params, SessionKey: sessionKey, AgentID: o.cfg.AgentID}
	result := o.aggregator.Detect(ctx, dctx, model.BeforeToolCall)
	o.sessions.RecordDetection(sessionKey, result.Tier, model.BeforeToolCall, result.Reason)

	decision := o.guard.GuardToolCall(model.BeforeToolCall, toolName, dctx, sessionKey, result.Tier)
	if result.Tier.IsPrivate() {
		o.publish(result.Tier, "", "", result.Reason, sessionKey)
	}
	if decision.Blocked {
		return model.NewBlock(decision.Reason), nil
	}
	return model.NewPassthrough(), nil
}

// AfterToolCall classifies a tool call's result and marks session state.
// There is no pass/block decision surface here (spec §4.10); persistence
// of the result happens at the following ToolResultPersist checkpoint.
func (o *Orchestrator) AfterToolCall(ctx context.Context, sessionKey, toolName, toolResult string) (model.Tier, error) {
	dctx := model.DetectionContext{ToolName: toolName, ToolResult: toolResult, SessionKey: sessionKey, AgentID: o.cfg.AgentID}
	result := o.aggregator.Detect(ctx, dctx, model.AfterToolCall)

	o.sessions.RecordDetection(sessionKey, result.Tier, model.AfterToolCall, result.Reason)
	if result.Tier.IsPrivate() {
		o.sessions.MarkPrivate(sessionKey, result.Tier)
		o.publish(result.Tier, "", "", result.Reason, sessionKey)
	}
	return result.Tier, nil
}

// ToolResultPersist writes a tool call's result to the dual-track history,
// using the session's current highest tier to decide the clean projection.
func (o *Orchestrator) ToolResultPersist(ctx context.Context, sessionKey, toolResult string) error {
	if o.tracks == nil {
		return nil
	}
	tier := o.sessions.HighestTier(sessionKey)
	clean := toolResult
	if tier == model.TierS2 {
		clean = o.redactText(ctx, toolResult)
	}
	if err := o.tracks.Persist(o.cfg.AgentID, sessionKey, tier, toolResult, clean); err != nil {
		return &PolicyError{Kind: KindPersistFailed, Op: "ToolResultPersist", Err: err}
	}
	return nil
}

// SessionEnd runs the memory sync (full memory, guard-block stripped and
// redacted, projected to the clean memory file). A nil memory manager
// makes this a no-op — not every deployment carries a memory substrate.
func (o *Orchestrator) SessionEnd(ctx context.Context, sessionKey string) error {
	if o.memory == nil {
		return nil
	}
	if err := o.memory.SyncFullToClean(ctx); err != nil {
		return &PolicyError{Kind: KindMemorySyncFailed, Op: "SessionEnd", Err: err}
	}
	return nil
}
