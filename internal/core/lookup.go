// Package core implements the profile lookup pipeline shared by every
// inbound surface, plus its error mapping and audit trail.
package core

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
	"github.com/toolhub/proxycurl-mcp/internal/render"
	"github.com/toolhub/proxycurl-mcp/internal/telemetry"
)

// ToolGetPersonProfile is the name of the single lookup tool.
const ToolGetPersonProfile = "get_person_profile"

// Surfaces a lookup can arrive through.
const (
	SurfaceMCP  = "mcp"
	SurfaceHTTP = "http"
	SurfaceCLI  = "cli"
)

// ProfileFetcher is the enrichment client used by LookupService.
type ProfileFetcher interface {
	GetPersonProfile(ctx context.Context, r proxycurl.Request) (*proxycurl.PersonProfile, error)
}

// LookupService runs normalize, request, fetch and render for one profile
// reference. It is safe for concurrent use.
type LookupService struct {
	client ProfileFetcher
	audit  *AuditService
	policy *FlagPolicy
	logger *zap.SugaredLogger
}

// LookupOption customizes a LookupService.
type LookupOption func(*LookupService)

// WithFlagPolicy rejects lookups whose flags the policy blocks.
func WithFlagPolicy(p *FlagPolicy) LookupOption {
	return func(s *LookupService) { s.policy = p }
}

// NewLookupService creates a LookupService. audit may be nil.
func NewLookupService(client ProfileFetcher, audit *AuditService, logger *zap.SugaredLogger, opts ...LookupOption) *LookupService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &LookupService{client: client, audit: audit, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupInput is one lookup request from any surface. RawFlags carries
// enrichment flags as received, keyed by wire name; they are validated inside
// the lookup so a rejected value is still counted and audited.
type LookupInput struct {
	ProfileURL string
	Flags      proxycurl.Flags
	RawFlags   map[string]string
	Surface    string
	TraceID    string
}

// flagValues merges typed and raw flags for the audit record. Raw values are
// kept verbatim, including rejected ones.
func (in LookupInput) flagValues() map[string]string {
	out := in.Flags.Values()
	for name, v := range in.RawFlags {
		if v != "" {
			out[name] = v
		}
	}
	return out
}

// resolveFlags applies RawFlags on top of Flags, in wire order and then by
// name for unknown flags.
func (in LookupInput) resolveFlags() (proxycurl.Flags, error) {
	flags := in.Flags
	seen := make(map[string]bool, len(in.RawFlags))
	for _, spec := range proxycurl.FlagSpecs {
		v, ok := in.RawFlags[spec.Name]
		if !ok {
			continue
		}
		seen[spec.Name] = true
		if v == "" {
			continue
		}
		if err := flags.SetFlag(spec.Name, v); err != nil {
			return proxycurl.Flags{}, err
		}
	}
	unknown := make([]string, 0)
	for name := range in.RawFlags {
		if !seen[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		if err := flags.SetFlag(name, in.RawFlags[name]); err != nil {
			return proxycurl.Flags{}, err
		}
	}
	return flags, nil
}

// LookupResult is a successful lookup.
type LookupResult struct {
	TraceID   string
	Reference proxycurl.ProfileReference
	Profile   *proxycurl.PersonProfile
	Text      string
	Duration  time.Duration
}

// Lookup performs a single lookup. Errors are returned unchanged so callers
// can surface their message and map their code.
func (s *LookupService) Lookup(ctx context.Context, in LookupInput) (*LookupResult, error) {
	traceID := in.TraceID
	if traceID == "" {
		traceID = uuid.New().String()
	}
	start := time.Now()

	var ref *proxycurl.ProfileReference
	res, err := s.lookup(ctx, in, &ref)
	return s.finish(ctx, traceID, in, ref, time.Since(start), res, err)
}

// Reject counts and audits a call the surface refused before the lookup
// could run, such as a missing or mistyped argument, and returns err.
func (s *LookupService) Reject(ctx context.Context, in LookupInput, err error) error {
	traceID := in.TraceID
	if traceID == "" {
		traceID = uuid.New().String()
	}
	_, err = s.finish(ctx, traceID, in, nil, 0, nil, err)
	return err
}

func (s *LookupService) finish(ctx context.Context, traceID string, in LookupInput, ref *proxycurl.ProfileReference, elapsed time.Duration, res *LookupResult, err error) (*LookupResult, error) {
	status := StatusOK
	if err != nil {
		status = StatusFail
	}
	telemetry.IncToolCall(ToolGetPersonProfile, status)
	telemetry.ObserveToolDuration(ToolGetPersonProfile, elapsed)
	s.record(ctx, traceID, in, ref, elapsed, err)

	if err != nil {
		info := MapError(err, 500)
		s.logger.Warnw("tool call failed",
			"trace_id", traceID,
			"tool_name", ToolGetPersonProfile,
			"surface", in.Surface,
			"code", info.Code,
			"err", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return nil, err
	}

	res.TraceID = traceID
	res.Duration = elapsed
	s.logger.Infow("tool call completed",
		"trace_id", traceID,
		"tool_name", ToolGetPersonProfile,
		"surface", in.Surface,
		"provider", res.Reference.Provider,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}

func (s *LookupService) lookup(ctx context.Context, in LookupInput, refOut **proxycurl.ProfileReference) (*LookupResult, error) {
	flags, err := in.resolveFlags()
	if err != nil {
		return nil, err
	}
	ref, err := proxycurl.NormalizeReference(in.ProfileURL)
	if err != nil {
		return nil, err
	}
	*refOut = &ref

	req, err := proxycurl.NewRequest(ref, flags)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(flags); err != nil {
		return nil, err
	}
	profile, err := s.client.GetPersonProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	return &LookupResult{
		Reference: ref,
		Profile:   profile,
		Text:      render.Profile(profile),
	}, nil
}

func (s *LookupService) record(ctx context.Context, traceID string, in LookupInput, ref *proxycurl.ProfileReference, elapsed time.Duration, callErr error) {
	if s.audit == nil {
		return
	}
	rec := RecordInput{
		TraceID:  traceID,
		ToolName: ToolGetPersonProfile,
		Surface:  in.Surface,
		Flags:    in.flagValues(),
		Duration: elapsed,
		Err:      callErr,
	}
	if ref != nil {
		rec.Reference = &ReferenceInfo{Provider: string(ref.Provider), CanonicalURL: ref.CanonicalURL}
	}
	// The audit write must not inherit a canceled request context.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.audit.Record(auditCtx, rec); err != nil {
		telemetry.IncAuditWriteFailure()
		s.logger.Errorw("audit write failed", "trace_id", traceID, "err", err)
	}
}
