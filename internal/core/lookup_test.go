package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhub/proxycurl-mcp/internal/db"
	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

type fakeFetcher struct {
	mu       sync.Mutex
	requests []proxycurl.Request
	profile  *proxycurl.PersonProfile
	err      error
}

func (f *fakeFetcher) GetPersonProfile(_ context.Context, r proxycurl.Request) (*proxycurl.PersonProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
	return f.profile, f.err
}

type memoryStore struct {
	mu    sync.Mutex
	calls []*db.ToolCall
	err   error
}

func (m *memoryStore) InsertToolCall(_ context.Context, tc *db.ToolCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, tc)
	return nil
}

func strPtr(s string) *string { return &s }

func TestLookupSuccess(t *testing.T) {
	fetcher := &fakeFetcher{profile: &proxycurl.PersonProfile{FullName: strPtr("Elon Musk")}}
	store := &memoryStore{}
	svc := NewLookupService(fetcher, NewAuditService(store), nil)

	res, err := svc.Lookup(context.Background(), LookupInput{
		ProfileURL: "@elonmusk",
		Flags:      proxycurl.Flags{Skills: proxycurl.Include},
		Surface:    SurfaceMCP,
		TraceID:    "trace-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "trace-1", res.TraceID)
	assert.Equal(t, proxycurl.ProviderTwitter, res.Reference.Provider)
	assert.Equal(t, "# Elon Musk", res.Text)

	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, "https://x.com/elonmusk", fetcher.requests[0].TwitterProfileURL)
	assert.Equal(t, proxycurl.Include, fetcher.requests[0].Flags.Skills)

	require.Len(t, store.calls, 1)
	tc := store.calls[0]
	assert.Equal(t, "ok", tc.Status)
	assert.Equal(t, "trace-1", tc.TraceID)
	assert.Equal(t, SurfaceMCP, tc.Surface)
	assert.Equal(t, map[string]string{"skills": "include"}, tc.Flags)
	require.NotNil(t, tc.CanonicalURL)
	assert.Equal(t, "https://x.com/elonmusk", *tc.CanonicalURL)
	assert.Nil(t, tc.ErrorCode)
}

func TestLookupInvalidReferenceSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &memoryStore{}
	svc := NewLookupService(fetcher, NewAuditService(store), nil)

	_, err := svc.Lookup(context.Background(), LookupInput{ProfileURL: "https://invalid-website.com/profile", Surface: SurfaceHTTP})
	require.Error(t, err)
	assert.True(t, proxycurl.IsInvalidReference(err))
	assert.Empty(t, fetcher.requests)

	require.Len(t, store.calls, 1)
	assert.Equal(t, "fail", store.calls[0].Status)
	require.NotNil(t, store.calls[0].ErrorCode)
	assert.Equal(t, "invalid_reference", *store.calls[0].ErrorCode)
	assert.Nil(t, store.calls[0].CanonicalURL)
	assert.NotEmpty(t, store.calls[0].TraceID, "a trace id is generated when none is given")
}

func TestLookupUpstreamErrorPropagatesMessage(t *testing.T) {
	fetcher := &fakeFetcher{err: &proxycurl.APIError{StatusCode: 401, Message: "Invalid API key"}}
	svc := NewLookupService(fetcher, nil, nil)

	_, err := svc.Lookup(context.Background(), LookupInput{ProfileURL: "johnrmarty"})
	require.Error(t, err)
	assert.Equal(t, "Proxycurl API error: Invalid API key", err.Error())
}

func TestLookupInvalidFlagSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	svc := NewLookupService(fetcher, nil, nil)

	_, err := svc.Lookup(context.Background(), LookupInput{ProfileURL: "johnrmarty", Flags: proxycurl.Flags{UseCache: "sometimes"}})
	var ve *proxycurl.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, fetcher.requests)
}

func TestLookupAuditFailureDoesNotFailCall(t *testing.T) {
	fetcher := &fakeFetcher{profile: &proxycurl.PersonProfile{}}
	store := &memoryStore{err: errors.New("connection refused")}
	svc := NewLookupService(fetcher, NewAuditService(store), nil)

	res, err := svc.Lookup(context.Background(), LookupInput{ProfileURL: "facebook.com/zuck"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, "# Unknown"))
}

func TestAuditServiceRecordWithoutStore(t *testing.T) {
	var a *AuditService
	_, err := a.Record(context.Background(), RecordInput{ToolName: ToolGetPersonProfile})
	assert.Error(t, err)
}

func TestLookupRejectsBlockedFlagBeforeFetch(t *testing.T) {
	fetcher := &fakeFetcher{profile: &proxycurl.PersonProfile{}}
	store := &memoryStore{}
	svc := NewLookupService(fetcher, NewAuditService(store), nil, WithFlagPolicy(NewFlagPolicy("skills")))

	_, err := svc.Lookup(context.Background(), LookupInput{
		ProfileURL: "johnrmarty",
		Flags:      proxycurl.Flags{PersonalEmail: proxycurl.Include},
		Surface:    SurfaceHTTP,
	})
	var v *PolicyViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "personal_email", v.Flag)
	assert.Empty(t, fetcher.requests)

	require.Len(t, store.calls, 1)
	require.NotNil(t, store.calls[0].ErrorCode)
	assert.Equal(t, "flag_not_allowed", *store.calls[0].ErrorCode)
}

func TestLookupAuditsRejectedRawFlag(t *testing.T) {
	fetcher := &fakeFetcher{profile: &proxycurl.PersonProfile{}}
	store := &memoryStore{}
	svc := NewLookupService(fetcher, NewAuditService(store), nil)

	_, err := svc.Lookup(context.Background(), LookupInput{
		ProfileURL: "johnrmarty",
		RawFlags:   map[string]string{"use_cache": "always", "skills": "include"},
		Surface:    SurfaceHTTP,
		TraceID:    "trace-bad-flag",
	})
	assert.EqualError(t, err, `invalid value "always" for use_cache (allowed: if-present, if-recent)`)
	assert.Empty(t, fetcher.requests)

	require.Len(t, store.calls, 1)
	tc := store.calls[0]
	assert.Equal(t, StatusFail, tc.Status)
	assert.Equal(t, "trace-bad-flag", tc.TraceID)
	require.NotNil(t, tc.ErrorCode)
	assert.Equal(t, "schema_validation_failed", *tc.ErrorCode)
	assert.Equal(t, map[string]string{"use_cache": "always", "skills": "include"}, tc.Flags)
}

func TestLookupRawFlagsReachRequest(t *testing.T) {
	fetcher := &fakeFetcher{profile: &proxycurl.PersonProfile{}}
	svc := NewLookupService(fetcher, nil, nil)

	_, err := svc.Lookup(context.Background(), LookupInput{
		ProfileURL: "johnrmarty",
		Flags:      proxycurl.Flags{Extra: proxycurl.Include},
		RawFlags:   map[string]string{"skills": "include", "personal_email": ""},
	})
	require.NoError(t, err)
	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, proxycurl.Include, fetcher.requests[0].Flags.Extra)
	assert.Equal(t, proxycurl.Include, fetcher.requests[0].Flags.Skills)
	assert.Empty(t, fetcher.requests[0].Flags.PersonalEmail)
}

func TestLookupUnknownRawFlag(t *testing.T) {
	store := &memoryStore{}
	svc := NewLookupService(&fakeFetcher{}, NewAuditService(store), nil)

	_, err := svc.Lookup(context.Background(), LookupInput{
		ProfileURL: "johnrmarty",
		RawFlags:   map[string]string{"zodiac": "include"},
	})
	assert.EqualError(t, err, `unknown enrichment flag "zodiac"`)
	require.Len(t, store.calls, 1)
	assert.Equal(t, "schema_validation_failed", *store.calls[0].ErrorCode)
}

func TestRejectRecordsFailedCall(t *testing.T) {
	store := &memoryStore{}
	svc := NewLookupService(&fakeFetcher{}, NewAuditService(store), nil)

	argErr := &proxycurl.ValidationError{Field: "skills", Value: "maybe", Allowed: []string{"include", "exclude"}}
	err := svc.Reject(context.Background(), LookupInput{Surface: SurfaceMCP, TraceID: "trace-reject"}, argErr)
	assert.Same(t, argErr, err)

	require.Len(t, store.calls, 1)
	tc := store.calls[0]
	assert.Equal(t, StatusFail, tc.Status)
	assert.Equal(t, SurfaceMCP, tc.Surface)
	assert.Equal(t, "trace-reject", tc.TraceID)
	require.NotNil(t, tc.ErrorCode)
	assert.Equal(t, "schema_validation_failed", *tc.ErrorCode)
	assert.Nil(t, tc.CanonicalURL)
}
