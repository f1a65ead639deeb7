// Package render turns a person profile into the plain-text document returned
// to tool callers.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

const (
	unknownName  = "Unknown"
	notAvailable = "N/A"
	// Absent salary bounds are printed verbatim as NaN rather than zero.
	notANumber = "NaN"
)

// Profile renders p as an ordered Markdown-flavoured document. Sections are
// emitted in a fixed order and only when their data is present. A nil
// profile renders as an empty string.
func Profile(p *proxycurl.PersonProfile) string {
	if p == nil {
		return ""
	}
	var lines []string
	add := func(s ...string) { lines = append(lines, s...) }

	add("# " + orDefault(p.FullName, unknownName))
	if present(p.Headline) {
		add("**" + *p.Headline + "**")
	}
	if present(p.City) && present(p.State) && present(p.CountryFullName) {
		add(fmt.Sprintf("📍 %s, %s, %s", *p.City, *p.State, *p.CountryFullName))
	}
	if p.Connections != nil && *p.Connections != 0 {
		add(fmt.Sprintf("🔗 %d+ connections", *p.Connections))
	}

	if present(p.Summary) {
		add("\n## Summary", *p.Summary)
	}

	if cur := p.CurrentExperience(); cur != nil {
		add("\n## Current Position")
		add(fmt.Sprintf("**%s** at %s", orDefault(cur.Title, notAvailable), orDefault(cur.Company, notAvailable)))
		if present(cur.Description) {
			add(*cur.Description)
		}
	}

	if len(p.Education) > 0 {
		add("\n## Education")
		for _, edu := range p.Education {
			add(fmt.Sprintf("- **%s** - %s in %s",
				orDefault(edu.School, notAvailable),
				orDefault(edu.DegreeName, notAvailable),
				orDefault(edu.FieldOfStudy, notAvailable)))
		}
	}

	if len(p.Skills) > 0 {
		add("\n## Skills", strings.Join(p.Skills, ", "))
	}

	if p.Extra != nil {
		add("\n## Additional Information")
		if present(p.Extra.Website) {
			add("🌐 Website: " + *p.Extra.Website)
		}
		if present(p.Extra.GitHubProfileID) {
			add("💻 GitHub: @" + *p.Extra.GitHubProfileID)
		}
		if present(p.Extra.TwitterProfileID) {
			add("🐦 Twitter: @" + *p.Extra.TwitterProfileID)
		}
	}

	if len(p.PersonalEmails) > 0 {
		add("\n## Contact", "📧 Email: "+strings.Join(p.PersonalEmails, ", "))
	}

	if p.InferredSalary != nil {
		add("\n## Salary Range")
		add(fmt.Sprintf("💰 $%s - $%s", salary(p.InferredSalary.Min), salary(p.InferredSalary.Max)))
	}

	return strings.Join(lines, "\n")
}

// salary groups thousands and keeps at most three fraction digits.
func salary(v *float64) string {
	if v == nil {
		return notANumber
	}
	return humanize.Commaf(math.Round(*v*1000) / 1000)
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func orDefault(s *string, def string) string {
	if present(s) {
		return *s
	}
	return def
}
