package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toolhub/proxycurl-mcp/internal/db"
)

// Call statuses shared by the audit trail and the tool call metrics.
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// ToolCallStore persists audited tool calls. *db.DB satisfies it.
type ToolCallStore interface {
	InsertToolCall(ctx context.Context, tc *db.ToolCall) error
}

// AuditService records tool invocation metadata. Profile content is never
// stored.
type AuditService struct {
	store ToolCallStore
}

// NewAuditService wires the audit layer to its store.
func NewAuditService(store ToolCallStore) *AuditService {
	return &AuditService{store: store}
}

// RecordInput captures what is needed to log a tool call.
type RecordInput struct {
	TraceID   string
	ToolName  string
	Surface   string
	Reference *ReferenceInfo
	Flags     map[string]string
	Duration  time.Duration
	Err       error
}

// ReferenceInfo is the normalized reference of an audited call, if
// normalization succeeded.
type ReferenceInfo struct {
	Provider     string
	CanonicalURL string
}

// Record persists one tool call.
func (a *AuditService) Record(ctx context.Context, in RecordInput) (*db.ToolCall, error) {
	if a == nil || a.store == nil {
		return nil, fmt.Errorf("audit store not configured")
	}

	status := StatusOK
	var errCode *string
	if in.Err != nil {
		status = StatusFail
		code := MapError(in.Err, 500).Code
		errCode = &code
	}

	tc := &db.ToolCall{
		ToolCallID: uuid.New().String(),
		TraceID:    in.TraceID,
		ToolName:   in.ToolName,
		Surface:    in.Surface,
		Flags:      in.Flags,
		Status:     status,
		ErrorCode:  errCode,
		DurationMS: in.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if in.Reference != nil {
		provider, canonical := in.Reference.Provider, in.Reference.CanonicalURL
		tc.Provider = &provider
		tc.CanonicalURL = &canonical
	}
	if err := a.store.InsertToolCall(ctx, tc); err != nil {
		return nil, fmt.Errorf("insert tool_call: %w", err)
	}
	return tc, nil
}
