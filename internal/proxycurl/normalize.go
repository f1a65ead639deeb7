package proxycurl

import (
	"regexp"
	"strings"
)

// Provider identifies the identity network a profile reference belongs to.
type Provider string

const (
	ProviderLinkedIn Provider = "linkedin"
	ProviderTwitter  Provider = "twitter"
	ProviderFacebook Provider = "facebook"
)

// ProfileReference is a normalized profile reference. It is only produced by
// NormalizeReference.
type ProfileReference struct {
	Provider     Provider `json:"provider"`
	CanonicalURL string   `json:"canonical_url"`
}

// Domain forms must start at a host label boundary so "netflix.com/a" is
// not read as "x.com/a".
const hostBoundary = `(?:^|[^A-Za-z0-9-])`

type providerMatcher struct {
	provider  Provider
	patterns  []*regexp.Regexp
	canonical func(handle string) string
}

// Order matters: the bare-token LinkedIn pattern claims any plain handle
// before Twitter and Facebook are considered.
var matchers = []providerMatcher{
	{
		provider: ProviderLinkedIn,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/in/([A-Za-z0-9_-]+)`),
			regexp.MustCompile(hostBoundary + `linkedin\.com/in/([A-Za-z0-9_-]+)`),
			regexp.MustCompile(`^([A-Za-z0-9_-]+)$`),
		},
		canonical: func(h string) string { return "https://linkedin.com/in/" + h },
	},
	{
		provider: ProviderTwitter,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/([A-Za-z0-9_]+)`),
			regexp.MustCompile(hostBoundary + `(?:twitter|x)\.com/([A-Za-z0-9_]+)`),
			regexp.MustCompile(`^@([A-Za-z0-9_]+)$`),
		},
		canonical: func(h string) string { return "https://x.com/" + h },
	},
	{
		provider: ProviderFacebook,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`https?://(?:www\.)?facebook\.com/([A-Za-z0-9.]+)`),
			regexp.MustCompile(hostBoundary + `facebook\.com/([A-Za-z0-9.]+)`),
		},
		canonical: func(h string) string { return "https://facebook.com/" + h },
	},
}

// NormalizeReference classifies a free-form profile reference (full URL, bare
// domain form, @handle or bare username) and returns its canonical URL.
// It returns an *InvalidReferenceError when no provider pattern matches.
func NormalizeReference(input string) (ProfileReference, error) {
	s := strings.TrimSpace(input)
	for _, m := range matchers {
		for _, re := range m.patterns {
			sub := re.FindStringSubmatch(s)
			if sub == nil {
				continue
			}
			return ProfileReference{Provider: m.provider, CanonicalURL: m.canonical(sub[1])}, nil
		}
	}
	return ProfileReference{}, &InvalidReferenceError{Input: input}
}
