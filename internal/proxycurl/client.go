// Package proxycurl is a client for the Proxycurl person profile endpoint,
// plus the reference normalization and request building that precede a call.
package proxycurl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/toolhub/proxycurl-mcp/internal/telemetry"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://nubela.co/proxycurl/api/v2"

const opPersonProfile = "person profile"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets an overall request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetPersonProfile performs a single lookup. There is no retry: a failed
// attempt is returned to the caller as an *APIError.
func (c *Client) GetPersonProfile(ctx context.Context, r Request) (*PersonProfile, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/linkedin?" + r.Query().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &APIError{Operation: opPersonProfile, Message: err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Operation: opPersonProfile, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		telemetry.IncUpstreamAPIError(opPersonProfile, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		msg := reasonPhrase(resp)
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return nil, &APIError{Operation: opPersonProfile, StatusCode: resp.StatusCode, Message: msg}
	}

	var profile PersonProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, &APIError{
			Operation:  opPersonProfile,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode profile: %v", err),
			Err:        err,
		}
	}
	return &profile, nil
}

// reasonPhrase returns the status text without the numeric code.
func reasonPhrase(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if s := strings.TrimPrefix(resp.Status, prefix); s != "" && s != resp.Status {
		return s
	}
	if s := http.StatusText(resp.StatusCode); s != "" {
		return s
	}
	return resp.Status
}
