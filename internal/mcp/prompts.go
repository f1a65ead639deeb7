package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolhub/proxycurl-mcp/internal/telemetry"
)

// Prompt is a canned instruction template. Rendering is plain string
// interpolation of the supplied arguments.
type Prompt struct {
	name        string
	description string
	arguments   []promptArg
	render      func(args map[string]string) string
}

type promptArg struct {
	name        string
	description string
	required    bool
}

// Prompts returns the built-in prompt catalogue in listing order.
func Prompts() []*Prompt {
	return []*Prompt{
		{
			name:        "analyze-profile",
			description: "Analyze a person's professional profile for insights",
			arguments:   []promptArg{{"profile_url", "The profile URL to analyze", true}},
			render: func(a map[string]string) string {
				return fmt.Sprintf(`Please analyze the professional profile at %s and provide insights on:

1. **Career Trajectory**: Analyze their career progression and key transitions
2. **Skills & Expertise**: Identify core competencies and areas of specialization
3. **Industry Presence**: Assess their influence and standing in their field
4. **Professional Network**: Evaluate the strength and relevance of their connections
5. **Growth Potential**: Identify opportunities for career advancement
6. **Unique Strengths**: Highlight what sets this person apart

Use the get_person_profile tool with relevant enrichment options to gather comprehensive data.`, a["profile_url"])
			},
		},
		{
			name:        "compare-candidates",
			description: "Compare multiple candidate profiles for a role",
			arguments: []promptArg{
				{"profile_urls", "Comma-separated list of profile URLs", true},
				{"role_requirements", "Key requirements for the role", true},
			},
			render: func(a map[string]string) string {
				return fmt.Sprintf(`Compare the following candidate profiles for the role:

Profiles: %s
Role Requirements: %s

For each candidate:
1. Fetch their profile using get_person_profile
2. Assess fit against the role requirements
3. Identify strengths and potential gaps
4. Compare experience levels and skills
5. Provide a ranking with justification

Create a comparison table and recommendation.`, a["profile_urls"], a["role_requirements"])
			},
		},
		{
			name:        "enrich-contact",
			description: "Enrich a contact with additional information",
			arguments:   []promptArg{{"profile_url", "The profile URL to enrich", true}},
			render: func(a map[string]string) string {
				return fmt.Sprintf(`Enrich the contact information for: %s

Use get_person_profile with these options:
- personal_email: include
- personal_contact_number: include
- github_profile_id: include
- twitter_profile_id: include
- facebook_profile_id: include
- extra: include

Provide a comprehensive contact card with all available information.`, a["profile_url"])
			},
		},
		{
			name:        "sales-research",
			description: "Research a prospect for sales outreach",
			arguments: []promptArg{
				{"profile_url", "The prospect's profile URL", true},
				{"product_context", "Your product/service context", false},
			},
			render: func(a map[string]string) string {
				productContext := ""
				if pc := a["product_context"]; pc != "" {
					productContext = "Product/Service Context: " + pc
				}
				return fmt.Sprintf(`Research the prospect at %s for sales outreach.

%s

Using get_person_profile, gather information to:
1. Understand their role and responsibilities
2. Identify potential pain points or needs
3. Find common connections or interests
4. Determine the best approach angle
5. Suggest personalization elements for outreach

Provide actionable insights for effective outreach.`, a["profile_url"], productContext)
			},
		},
	}
}

func (p *Prompt) Name() string { return p.name }

func (p *Prompt) Definition() mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(p.description)}
	for _, a := range p.arguments {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(a.description)}
		if a.required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(a.name, argOpts...))
	}
	return mcp.NewPrompt(p.name, opts...)
}

// Text renders the prompt body for args. Missing arguments interpolate as
// empty strings.
func (p *Prompt) Text(args map[string]string) string {
	if args == nil {
		args = map[string]string{}
	}
	return p.render(args)
}

func (p *Prompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	telemetry.IncPromptGet(p.name)
	return mcp.NewGetPromptResult(p.description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(p.Text(req.Params.Arguments))),
	}), nil
}
