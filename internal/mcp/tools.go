package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolhub/proxycurl-mcp/internal/core"
	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

const profileToolDescription = "Get enriched profile data for a person from LinkedIn, Twitter/X, or Facebook. Supports extracting contact info, social profiles, salary data, and more."

// ProfileTool exposes the person profile lookup as an MCP tool.
type ProfileTool struct {
	lookups *core.LookupService
}

func NewProfileTool(lookups *core.LookupService) *ProfileTool {
	return &ProfileTool{lookups: lookups}
}

// Definition returns the tool schema: a required profile_url plus every
// enrichment flag as an optional string enum.
func (t *ProfileTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(profileToolDescription),
		mcp.WithString("profile_url",
			mcp.Required(),
			mcp.Description("The profile URL (LinkedIn, Twitter/X, or Facebook) or username to look up"),
		),
	}
	for _, spec := range proxycurl.FlagSpecs {
		opts = append(opts, mcp.WithString(spec.Name,
			mcp.Enum(spec.Allowed...),
			mcp.Description(spec.Description),
		))
	}
	return mcp.NewTool(core.ToolGetPersonProfile, opts...)
}

// Handle never returns a protocol error. Every failure becomes an
// "Error: <message>" text result flagged isError.
func (t *ProfileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	in := core.LookupInput{
		Surface: core.SurfaceMCP,
		TraceID: traceIDFrom(ctx),
	}

	profileURL, err := stringArg(args, "profile_url", true)
	if err != nil {
		return errorResult(t.lookups.Reject(ctx, in, err)), nil
	}
	in.ProfileURL = profileURL
	in.RawFlags, err = rawFlagArgs(args)
	if err != nil {
		return errorResult(t.lookups.Reject(ctx, in, err)), nil
	}

	res, err := t.lookups.Lookup(ctx, in)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}

type argumentError struct {
	name   string
	reason string
}

func (e *argumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.name, e.reason)
}
func (e *argumentError) ErrorCode() string { return proxycurl.CodeSchemaValidation }

func stringArg(args map[string]any, name string, required bool) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		if required {
			return "", &argumentError{name: name, reason: "required"}
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &argumentError{name: name, reason: fmt.Sprintf("expected string, received %T", raw)}
	}
	return s, nil
}

// rawFlagArgs collects the flag arguments as strings. Enum checks happen in
// the lookup.
func rawFlagArgs(args map[string]any) (map[string]string, error) {
	raw := make(map[string]string)
	for _, spec := range proxycurl.FlagSpecs {
		v, err := stringArg(args, spec.Name, false)
		if err != nil {
			return nil, err
		}
		if v != "" {
			raw[spec.Name] = v
		}
	}
	return raw, nil
}
