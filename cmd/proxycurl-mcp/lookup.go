package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolhub/proxycurl-mcp/internal/core"
	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

func newLookupCmd() *cobra.Command {
	var asJSON bool
	flagValues := make(map[string]*string, len(proxycurl.FlagSpecs))

	cmd := &cobra.Command{
		Use:   "lookup <profile-url-or-username>",
		Short: "Fetch one person profile and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := make(map[string]string)
			for _, spec := range proxycurl.FlagSpecs {
				if v := *flagValues[spec.Name]; v != "" {
					raw[spec.Name] = v
				}
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			lookups, _, closeStore, err := newLookupService(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := lookups.Lookup(cmd.Context(), core.LookupInput{
				ProfileURL: args[0],
				RawFlags:   raw,
				Surface:    core.SurfaceCLI,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(core.ProfileResult{
					CanonicalURL: res.Reference.CanonicalURL,
					Text:         res.Text,
					Profile:      res.Profile,
				})
			}
			_, err = fmt.Fprintln(out, res.Text)
			return err
		},
	}

	for _, spec := range proxycurl.FlagSpecs {
		flagValues[spec.Name] = cmd.Flags().String(spec.Name, "", spec.Description)
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the canonical URL, rendered text and raw profile as JSON")
	return cmd
}
