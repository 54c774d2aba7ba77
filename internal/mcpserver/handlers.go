package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/OpenBMB/privacyguard/internal/model"
)

// --- Input/Output types ---

// MessageReceivedInput carries the inbound message to classify.
type MessageReceivedInput struct {
	SessionKey string `json:"session_key" jsonschema:"session identifier"`
	Message    string `json:"message" jsonschema:"the user's raw message text"`
}

// MessageReceivedOutput reports the classified tier.
type MessageReceivedOutput struct {
	Tier string `json:"tier"`
}

// ResolveModelInput carries the session's current message for routing.
type ResolveModelInput struct {
	SessionKey string `json:"session_key" jsonschema:"session identifier"`
	Message    string `json:"message" jsonschema:"the user's current message text"`
}

// ResolveModelOutput is the discriminated routing decision.
type ResolveModelOutput struct {
	Decision       string `json:"decision"` // passthrough | override_prompt | direct_response | block
	PromptOverride string `json:"prompt_override,omitempty"`
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	DirectResponse string `json:"direct_response,omitempty"`
}

// BeforeToolCallInput carries a proposed tool call to evaluate.
type BeforeToolCallInput struct {
	SessionKey string         `json:"session_key" jsonschema:"session identifier"`
	ToolName   string         `json:"tool_name" jsonschema:"name of the tool about to be invoked"`
	Params     map[string]any `json:"params,omitempty" jsonschema:"the tool call's parameters"`
}

// BeforeToolCallOutput reports Allow or Block with a reason.
type BeforeToolCallOutput struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// AfterToolCallInput carries a tool call's result to classify.
type AfterToolCallInput struct {
	SessionKey string `json:"session_key" jsonschema:"session identifier"`
	ToolName   string `json:"tool_name" jsonschema:"name of the tool that was invoked"`
	ToolResult string `json:"tool_result" jsonschema:"the tool call's raw result text"`
}

// AfterToolCallOutput reports the classified tier.
type AfterToolCallOutput struct {
	Tier string `json:"tier"`
}

// PersistToolResultInput carries a tool result to write to dual-track history.
type PersistToolResultInput struct {
	SessionKey string `json:"session_key" jsonschema:"session identifier"`
	ToolResult string `json:"tool_result" jsonschema:"the tool call's raw result text"`
}

// PersistToolResultOutput confirms the write.
type PersistToolResultOutput struct {
	Persisted bool `json:"persisted"`
}

// SessionEndInput identifies the ending session.
type SessionEndInput struct {
	SessionKey string `json:"session_key" jsonschema:"session identifier"`
}

// SessionEndOutput confirms the memory sync ran.
type SessionEndOutput struct {
	Synced bool `json:"synced"`
}

// --- Handlers ---

func (s *Server) handleMessageReceived(ctx context.Context, req *mcpsdk.CallToolRequest, input MessageReceivedInput) (*mcpsdk.CallToolResult, MessageReceivedOutput, error) {
	tier, err := s.orch.MessageReceived(ctx, input.SessionKey, input.Message)
	if err != nil {
		return nil, MessageReceivedOutput{}, err
	}
	return nil, MessageReceivedOutput{Tier: tier.String()}, nil
}

func (s *Server) handleResolveModel(ctx context.Context, req *mcpsdk.CallToolRequest, input ResolveModelInput) (*mcpsdk.CallToolResult, ResolveModelOutput, error) {
	decision, err := s.orch.ResolveModel(ctx, input.SessionKey, input.Message)
	if err != nil {
		return nil, ResolveModelOutput{}, err
	}

	out := ResolveModelOutput{}
	switch decision.Kind {
	case model.KindPassthrough:
		out.Decision = "passthrough"
	case model.KindOverridePrompt:
		out.Decision = "override_prompt"
		out.PromptOverride = decision.Text
	case model.KindDirectResponse:
		out.Decision = "direct_response"
		out.Provider = decision.Provider
		out.Model = decision.Model
		out.DirectResponse = decision.Text
	case model.KindBlock:
		out.Decision = "block"
	}
	return nil, out, nil
}

func (s *Server) handleBeforeToolCall(ctx context.Context, req *mcpsdk.CallToolRequest, input BeforeToolCallInput) (*mcpsdk.CallToolResult, BeforeToolCallOutput, error) {
	decision, err := s.orch.BeforeToolCall(ctx, input.SessionKey, input.ToolName, input.Params)
	if err != nil {
		return nil, BeforeToolCallOutput{}, err
	}
	if decision.IsBlocked() {
		return &mcpsdk.CallToolResult{IsError: true}, BeforeToolCallOutput{Allowed: false, Reason: decision.Reason}, nil
	}
	return nil, BeforeToolCallOutput{Allowed: true}, nil
}

func (s *Server) handleAfterToolCall(ctx context.Context, req *mcpsdk.CallToolRequest, input AfterToolCallInput) (*mcpsdk.CallToolResult, AfterToolCallOutput, error) {
	tier, err := s.orch.AfterToolCall(ctx, input.SessionKey, input.ToolName, input.ToolResult)
	if err != nil {
		return nil, AfterToolCallOutput{}, err
	}
	return nil, AfterToolCallOutput{Tier: tier.String()}, nil
}

func (s *Server) handlePersistToolResult(ctx context.Context, req *mcpsdk.CallToolRequest, input PersistToolResultInput) (*mcpsdk.CallToolResult, PersistToolResultOutput, error) {
	if err := s.orch.ToolResultPersist(ctx, input.SessionKey, input.ToolResult); err != nil {
		return nil, PersistToolResultOutput{}, err
	}
	return nil, PersistToolResultOutput{Persisted: true}, nil
}

func (s *Server) handleSessionEnd(ctx context.Context, req *mcpsdk.CallToolRequest, input SessionEndInput) (*mcpsdk.CallToolResult, SessionEndOutput, error) {
	if err := s.orch.SessionEnd(ctx, input.SessionKey); err != nil {
		return nil, SessionEndOutput{}, err
	}
	return nil, SessionEndOutput{Synced: true}, nil
}
