package model

// RoutingKind discriminates the variants of RoutingDecision.
type RoutingKind int

const (
	KindPassthrough RoutingKind = iota
	KindOverridePrompt
	KindDirectResponse
	KindBlock
)

// RoutingDecision is the tagged union the orchestrator's ResolveModel (and,
// via NewBlock, BeforeToolCall) returns to the host runtime. Deliberately
// a single struct with a discriminant rather than an interface or a generic
// map, per design note in spec §9 ("do not overload a generic mapping").
type RoutingDecision struct {
	Kind RoutingKind

	// OverridePrompt / DirectResponse text payloads.
	Text string

	// DirectResponse only.
	Provider string
	Model    string

	// Block only.
	Reason string
}

// NewPassthrough builds a Passthrough decision: the host proceeds unchanged.
func NewPassthrough() RoutingDecision {
	return RoutingDecision{Kind: KindPassthrough}
}

// NewOverridePrompt builds an OverridePrompt decision carrying the
// desensitized text the host should substitute for the user's message.
func NewOverridePrompt(text string) RoutingDecision {
	return RoutingDecision{Kind: KindOverridePrompt, Text: text}
}

// NewDirectResponse builds a DirectResponse decision: the host should return
// text to the user without ever contacting a cloud model.
func NewDirectResponse(provider, model, text string) RoutingDecision {
	return RoutingDecision{Kind: KindDirectResponse, Provider: provider, Model: model, Text: text}
}

// NewBlock builds a Block decision with a human-readable reason.
func NewBlock(reason string) RoutingDecision {
	return RoutingDecision{Kind: KindBlock, Reason: reason}
}

// IsBlocked reports whether this decision blocks the in-flight call/message.
func (d RoutingDecision) IsBlocked() bool {
	return d.Kind == KindBlock
}
