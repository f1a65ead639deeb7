package core

import "github.com/toolhub/proxycurl-mcp/internal/proxycurl"

// ToolEnvelope is the standard response wrapper for tool calls served over
// the HTTP API.
type ToolEnvelope struct {
	OK     bool       `json:"ok"`
	Meta   ToolMeta   `json:"meta"`
	Result any        `json:"result"`
	Error  *ToolError `json:"error,omitempty"`
}

// ToolMeta contains audit metadata for a tool call.
type ToolMeta struct {
	TraceID    string `json:"trace_id"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Tool       string `json:"tool"`
	Provider   string `json:"provider,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// ProfileResult is the result payload of a successful profile lookup.
type ProfileResult struct {
	CanonicalURL string                   `json:"canonical_url"`
	Text         string                   `json:"text"`
	Profile      *proxycurl.PersonProfile `json:"profile"`
}

// ToolError represents a tool-level error (distinct from transport errors).
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
