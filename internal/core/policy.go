package core

import (
	"fmt"
	"strings"

	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

// FlagPolicy restricts which credit-costing enrichment flags callers may set
// to include. Cache controls and exclude values are always permitted.
type FlagPolicy struct {
	allowed map[string]bool
}

// NewFlagPolicy creates a FlagPolicy from a comma-separated allowlist of flag
// names. An empty string permits every flag.
func NewFlagPolicy(csv string) *FlagPolicy {
	return &FlagPolicy{allowed: parseCSV(csv)}
}

// PolicyViolation reports an enrichment flag blocked by the allowlist.
type PolicyViolation struct {
	Flag string `json:"flag"`
}

func (v *PolicyViolation) Error() string {
	return fmt.Sprintf("enrichment flag %q is not allowed by ENRICHMENT_ALLOWLIST", v.Flag)
}

func (v *PolicyViolation) ErrorCode() string { return "flag_not_allowed" }

// Check returns a *PolicyViolation for the first included flag, in wire
// order, that is not allowlisted. A nil policy allows everything.
func (p *FlagPolicy) Check(flags proxycurl.Flags) error {
	if p == nil || len(p.allowed) == 0 {
		return nil
	}
	values := flags.Values()
	for _, spec := range proxycurl.FlagSpecs {
		if values[spec.Name] != string(proxycurl.Include) {
			continue
		}
		if !p.allowed[spec.Name] {
			return &PolicyViolation{Flag: spec.Name}
		}
	}
	return nil
}

func parseCSV(s string) map[string]bool {
	m := make(map[string]bool)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			m[item] = true
		}
	}
	return m
}
