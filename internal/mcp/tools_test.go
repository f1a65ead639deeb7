package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhub/proxycurl-mcp/internal/core"
	"github.com/toolhub/proxycurl-mcp/internal/db"
	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

func newUpstream(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTool(baseURL string) *ProfileTool {
	client := proxycurl.NewClient("test-key", proxycurl.WithBaseURL(baseURL))
	return NewProfileTool(core.NewLookupService(client, nil, nil))
}

type recordingStore struct {
	mu    sync.Mutex
	calls []*db.ToolCall
}

func (s *recordingStore) InsertToolCall(_ context.Context, tc *db.ToolCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, tc)
	return nil
}

func (s *recordingStore) snapshot() []*db.ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*db.ToolCall(nil), s.calls...)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = core.ToolGetPersonProfile
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestProfileToolDefinition(t *testing.T) {
	def := NewProfileTool(nil).Definition()

	assert.Equal(t, "get_person_profile", def.Name)
	assert.Equal(t, profileToolDescription, def.Description)
	assert.Equal(t, []string{"profile_url"}, def.InputSchema.Required)
	assert.Len(t, def.InputSchema.Properties, 1+len(proxycurl.FlagSpecs))

	useCache, ok := def.InputSchema.Properties["use_cache"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", useCache["type"])
	assert.Equal(t, []string{"if-present", "if-recent"}, useCache["enum"])
}

func TestProfileToolHandleSuccess(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{"full_name":"John Marty","headline":"Investor"}`, nil)

	res, err := newTool(up.URL).Handle(context.Background(), callRequest(map[string]any{
		"profile_url": "https://www.linkedin.com/in/johnrmarty",
		"skills":      "include",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "# John Marty\n**Investor**", resultText(t, res))
}

func TestProfileToolHandleErrors(t *testing.T) {
	var hits int32
	up := newUpstream(t, http.StatusUnauthorized, `{"message":"Invalid API key"}`, &hits)
	tool := newTool(up.URL)

	tests := []struct {
		name     string
		args     map[string]any
		wantText string
		wantHit  bool
	}{
		{
			name:     "invalid reference",
			args:     map[string]any{"profile_url": "https://invalid-website.com/profile"},
			wantText: "Error: Invalid profile URL or username provided. Please provide a valid LinkedIn, Twitter/X, or Facebook URL or username.",
		},
		{
			name:     "missing profile_url",
			args:     map[string]any{},
			wantText: "Error: invalid argument profile_url: required",
		},
		{
			name:     "non-string profile_url",
			args:     map[string]any{"profile_url": 42},
			wantText: "Error: invalid argument profile_url: expected string, received int",
		},
		{
			name:     "flag outside enum",
			args:     map[string]any{"profile_url": "johnrmarty", "extra": "always"},
			wantText: `Error: invalid value "always" for extra (allowed: include, exclude)`,
		},
		{
			name:     "upstream error",
			args:     map[string]any{"profile_url": "johnrmarty"},
			wantText: "Error: Proxycurl API error: Invalid API key",
			wantHit:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := atomic.LoadInt32(&hits)
			res, err := tool.Handle(context.Background(), callRequest(tt.args))
			require.NoError(t, err, "failures must not surface as protocol errors")
			assert.True(t, res.IsError)
			assert.Equal(t, tt.wantText, resultText(t, res))
			assert.Equal(t, tt.wantHit, atomic.LoadInt32(&hits) > before)
		})
	}
}

func TestProfileToolHandleAuditsEveryFailure(t *testing.T) {
	var hits int32
	up := newUpstream(t, http.StatusOK, `{"full_name":"John Marty"}`, &hits)
	store := &recordingStore{}
	client := proxycurl.NewClient("test-key", proxycurl.WithBaseURL(up.URL))
	tool := NewProfileTool(core.NewLookupService(client, core.NewAuditService(store), nil))

	tests := []struct {
		name     string
		args     map[string]any
		wantCode string
	}{
		{name: "flag outside enum", args: map[string]any{"profile_url": "johnrmarty", "extra": "bogus"}, wantCode: "schema_validation_failed"},
		{name: "non-string flag", args: map[string]any{"profile_url": "johnrmarty", "skills": true}, wantCode: "schema_validation_failed"},
		{name: "missing profile_url", args: map[string]any{"skills": "include"}, wantCode: "schema_validation_failed"},
		{name: "invalid reference", args: map[string]any{"profile_url": "https://invalid-website.com/profile"}, wantCode: "invalid_reference"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tool.Handle(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)

			calls := store.snapshot()
			require.Len(t, calls, i+1, "one audit row per call")
			tc := calls[i]
			assert.Equal(t, core.StatusFail, tc.Status)
			assert.Equal(t, core.SurfaceMCP, tc.Surface)
			require.NotNil(t, tc.ErrorCode)
			assert.Equal(t, tt.wantCode, *tc.ErrorCode)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&hits), "rejected calls never reach upstream")
}
