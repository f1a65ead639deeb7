package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	mcpsvr "github.com/toolhub/proxycurl-mcp/internal/mcp"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the MCP tool and prompt catalogue as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writeCatalogue(cmd.OutOrStdout(), mcpsvr.ToolDefinitions(), mcpsvr.PromptDefinitions())
			return nil
		},
	}
}

func writeCatalogue(w io.Writer, tools []mcp.Tool, prompts []mcp.Prompt) {
	fmt.Fprintln(w, "# MCP Tools (Generated)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This file is generated by `proxycurl-mcp tools`.")
	fmt.Fprintln(w)

	for _, t := range tools {
		fmt.Fprintf(w, "- `%s`\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(w, "  - Description: %s\n", firstLine(t.Description))
		}

		required := make(map[string]bool, len(t.InputSchema.Required))
		for _, r := range t.InputSchema.Required {
			required[r] = true
		}
		keys := make([]string, 0, len(t.InputSchema.Properties))
		for k := range t.InputSchema.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		if len(keys) > 0 {
			fmt.Fprintln(w, "  - Input:")
			for _, k := range keys {
				req := "optional"
				if required[k] {
					req = "required"
				}
				line := fmt.Sprintf("    - `%s` (%s)", k, req)
				if prop, ok := t.InputSchema.Properties[k].(map[string]any); ok {
					if enum, ok := prop["enum"].([]string); ok && len(enum) > 0 {
						line += ": " + strings.Join(enum, " | ")
					}
				}
				fmt.Fprintln(w, line)
			}
		}
		fmt.Fprintln(w)
	}

	if len(prompts) == 0 {
		return
	}
	fmt.Fprintln(w, "# MCP Prompts (Generated)")
	fmt.Fprintln(w)
	for _, p := range prompts {
		fmt.Fprintf(w, "- `%s`\n", p.Name)
		if p.Description != "" {
			fmt.Fprintf(w, "  - Description: %s\n", p.Description)
		}
		if len(p.Arguments) > 0 {
			fmt.Fprintln(w, "  - Arguments:")
			for _, a := range p.Arguments {
				req := "optional"
				if a.Required {
					req = "required"
				}
				fmt.Fprintf(w, "    - `%s` (%s)\n", a.Name, req)
			}
		}
		fmt.Fprintln(w)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
