package proxycurl

import (
	"net/url"
)

// Inclusion toggles a paid add-on field.
type Inclusion string

const (
	Include Inclusion = "include"
	Exclude Inclusion = "exclude"
)

// CacheMode controls how the remote service may answer from its cache.
type CacheMode string

const (
	CacheIfPresent CacheMode = "if-present"
	CacheIfRecent  CacheMode = "if-recent"
)

// FallbackMode controls whether the remote service falls back to cached data
// on errors. It is forwarded only; nothing here interprets it.
type FallbackMode string

const (
	FallbackOnError FallbackMode = "on-error"
	FallbackNever   FallbackMode = "never"
)

var (
	inclusionValues = []string{string(Include), string(Exclude)}
	cacheValues     = []string{string(CacheIfPresent), string(CacheIfRecent)}
	fallbackValues  = []string{string(FallbackOnError), string(FallbackNever)}
)

// Flags holds the optional enrichment parameters. The zero value of each
// field means "not set" and the parameter is omitted from the request.
type Flags struct {
	Extra                 Inclusion    `json:"extra,omitempty" yaml:"extra,omitempty"`
	GitHubProfileID       Inclusion    `json:"github_profile_id,omitempty" yaml:"github_profile_id,omitempty"`
	FacebookProfileID     Inclusion    `json:"facebook_profile_id,omitempty" yaml:"facebook_profile_id,omitempty"`
	TwitterProfileID      Inclusion    `json:"twitter_profile_id,omitempty" yaml:"twitter_profile_id,omitempty"`
	PersonalContactNumber Inclusion    `json:"personal_contact_number,omitempty" yaml:"personal_contact_number,omitempty"`
	PersonalEmail         Inclusion    `json:"personal_email,omitempty" yaml:"personal_email,omitempty"`
	InferredSalary        Inclusion    `json:"inferred_salary,omitempty" yaml:"inferred_salary,omitempty"`
	Skills                Inclusion    `json:"skills,omitempty" yaml:"skills,omitempty"`
	UseCache              CacheMode    `json:"use_cache,omitempty" yaml:"use_cache,omitempty"`
	FallbackToCache       FallbackMode `json:"fallback_to_cache,omitempty" yaml:"fallback_to_cache,omitempty"`
}

// FlagSpec describes one enrichment flag: its wire name, allowed values and
// the description shown to tool callers.
type FlagSpec struct {
	Name        string
	Allowed     []string
	Description string
}

// FlagSpecs lists every enrichment flag in wire order.
var FlagSpecs = []FlagSpec{
	{Name: "extra", Allowed: inclusionValues, Description: "Include extra data (gender, birth date, industry, interests) - costs 1 extra credit"},
	{Name: "github_profile_id", Allowed: inclusionValues, Description: "Include GitHub profile ID - costs 1 extra credit"},
	{Name: "facebook_profile_id", Allowed: inclusionValues, Description: "Include Facebook profile ID - costs 1 extra credit"},
	{Name: "twitter_profile_id", Allowed: inclusionValues, Description: "Include Twitter profile ID - costs 1 extra credit"},
	{Name: "personal_contact_number", Allowed: inclusionValues, Description: "Include personal phone numbers - costs 1 credit per number"},
	{Name: "personal_email", Allowed: inclusionValues, Description: "Include personal emails - costs 1 credit per email"},
	{Name: "inferred_salary", Allowed: inclusionValues, Description: "Include inferred salary range - costs 1 extra credit"},
	{Name: "skills", Allowed: inclusionValues, Description: "Include skills data - costs 1 extra credit"},
	{Name: "use_cache", Allowed: cacheValues, Description: "Cache usage: if-present (any age), if-recent (max 29 days old)"},
	{Name: "fallback_to_cache", Allowed: fallbackValues, Description: "Fallback behavior on errors"},
}

// Values returns the set flags keyed by wire name, in FlagSpecs order.
func (f Flags) Values() map[string]string {
	raw := []string{
		string(f.Extra),
		string(f.GitHubProfileID),
		string(f.FacebookProfileID),
		string(f.TwitterProfileID),
		string(f.PersonalContactNumber),
		string(f.PersonalEmail),
		string(f.InferredSalary),
		string(f.Skills),
		string(f.UseCache),
		string(f.FallbackToCache),
	}
	out := make(map[string]string, len(raw))
	for i, v := range raw {
		if v != "" {
			out[FlagSpecs[i].Name] = v
		}
	}
	return out
}

// SetFlag assigns a flag by wire name. Unknown names and out-of-enum values
// return a *ValidationError.
func (f *Flags) SetFlag(name, value string) error {
	for _, spec := range FlagSpecs {
		if spec.Name != name {
			continue
		}
		if value != "" && !contains(spec.Allowed, value) {
			return &ValidationError{Field: name, Value: value, Allowed: spec.Allowed}
		}
		switch name {
		case "extra":
			f.Extra = Inclusion(value)
		case "github_profile_id":
			f.GitHubProfileID = Inclusion(value)
		case "facebook_profile_id":
			f.FacebookProfileID = Inclusion(value)
		case "twitter_profile_id":
			f.TwitterProfileID = Inclusion(value)
		case "personal_contact_number":
			f.PersonalContactNumber = Inclusion(value)
		case "personal_email":
			f.PersonalEmail = Inclusion(value)
		case "inferred_salary":
			f.InferredSalary = Inclusion(value)
		case "skills":
			f.Skills = Inclusion(value)
		case "use_cache":
			f.UseCache = CacheMode(value)
		case "fallback_to_cache":
			f.FallbackToCache = FallbackMode(value)
		}
		return nil
	}
	return &ValidationError{Field: name, Value: value, Allowed: nil}
}

// Validate checks every set flag against its enumeration.
func (f Flags) Validate() error {
	values := f.Values()
	for _, spec := range FlagSpecs {
		v, ok := values[spec.Name]
		if ok && !contains(spec.Allowed, v) {
			return &ValidationError{Field: spec.Name, Value: v, Allowed: spec.Allowed}
		}
	}
	return nil
}

// Request is a person profile lookup. Exactly one of the three provider URL
// fields must be set.
type Request struct {
	LinkedInProfileURL string `json:"linkedin_profile_url,omitempty"`
	TwitterProfileURL  string `json:"twitter_profile_url,omitempty"`
	FacebookProfileURL string `json:"facebook_profile_url,omitempty"`
	Flags              Flags  `json:"flags"`
}

// NewRequest builds a Request for ref, selecting the URL field by provider and
// carrying flags through unchanged.
func NewRequest(ref ProfileReference, flags Flags) (Request, error) {
	req := Request{Flags: flags}
	switch ref.Provider {
	case ProviderLinkedIn:
		req.LinkedInProfileURL = ref.CanonicalURL
	case ProviderTwitter:
		req.TwitterProfileURL = ref.CanonicalURL
	case ProviderFacebook:
		req.FacebookProfileURL = ref.CanonicalURL
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate enforces the single provider URL invariant and flag enumerations.
func (r Request) Validate() error {
	set := 0
	for _, u := range []string{r.LinkedInProfileURL, r.TwitterProfileURL, r.FacebookProfileURL} {
		if u != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return ErrMissingReference
	case set > 1:
		return ErrMultipleReferences
	}
	return r.Flags.Validate()
}

// Query encodes the request as URL query parameters. Parameter names match
// the remote API verbatim.
func (r Request) Query() url.Values {
	q := url.Values{}
	if r.LinkedInProfileURL != "" {
		q.Set("linkedin_profile_url", r.LinkedInProfileURL)
	}
	if r.TwitterProfileURL != "" {
		q.Set("twitter_profile_url", r.TwitterProfileURL)
	}
	if r.FacebookProfileURL != "" {
		q.Set("facebook_profile_url", r.FacebookProfileURL)
	}
	for name, v := range r.Flags.Values() {
		q.Set(name, v)
	}
	return q
}

func contains(values []string, v string) bool {
	for _, a := range values {
		if a == v {
			return true
		}
	}
	return false
}
