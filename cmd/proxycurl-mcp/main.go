package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = ""
	gitCommit = ""
	buildTime = ""
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "proxycurl-mcp",
		Short:         "MCP server for Proxycurl person profile lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newLookupCmd(),
		newToolsCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "proxycurl-mcp %s (commit %s, built %s)\n",
				orUnknown(version), orUnknown(gitCommit), orUnknown(buildTime))
			return nil
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
