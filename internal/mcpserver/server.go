// Package mcpserver is a reference host-runtime integration: it wires the
// six lifecycle checkpoints in internal/orchestrator to MCP tools so any
// MCP-speaking host agent runtime can call into privacyguard directly,
// without pulling the checkpoint semantics out of the orchestrator itself.
package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/OpenBMB/privacyguard/internal/orchestrator"
)

// Config holds MCP server identity.
type Config struct {
	Name    string
	Version string
}

// Server wraps the MCP SDK server with privacyguard's checkpoint tools.
type Server struct {
	mcpServer *mcpsdk.Server
	orch      *orchestrator.Orchestrator
}

// New creates an MCP server exposing the six lifecycle checkpoints as tools.
func New(cfg Config, orch *orchestrator.Orchestrator) *Server {
	name := cfg.Name
	if name == "" {
		name = "privacyguard"
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	s := &Server{orch: orch}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: name, Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds the checkpoint tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "privacyguard_message_received",
		Description: "Classify an incoming user message and persist it to dual-track history. Call once per inbound message, before resolving which model will answer it.",
	}, s.handleMessageReceived)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "privacyguard_resolve_model",
		Description: "Resolve routing for the session's current message: pass-through, a desensitized prompt override, or a local direct response that must never reach a cloud model.",
	}, s.handleResolveModel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "privacyguard_before_tool_call",
		Description: "Check whether a proposed tool call should be allowed or blocked before it executes.",
	}, s.handleBeforeToolCall)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "privacyguard_after_tool_call",
		Description: "Classify a tool call's result and update session privacy state after it executes.",
	}, s.handleAfterToolCall)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "privacyguard_persist_tool_result",
		Description: "Persist a tool call's result to dual-track history, projected per the session's current tier.",
	}, s.handlePersistToolResult)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "privacyguard_session_end",
		Description: "Run end-of-session memory sync (full memory, redacted, projected to the clean memory file).",
	}, s.handleSessionEnd)
}
