package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/toolhub/proxycurl-mcp/internal/db"
)

type invalidQueryError struct{ msg string }

func (e *invalidQueryError) Error() string     { return e.msg }
func (e *invalidQueryError) ErrorCode() string { return "invalid_request_schema" }

type auditUnavailableError struct{}

func (auditUnavailableError) Error() string     { return "audit store not configured" }
func (auditUnavailableError) ErrorCode() string { return "audit_unavailable" }

func (s *Server) handleListToolCalls(c *gin.Context) {
	if s.calls == nil {
		writeError(c, auditUnavailableError{}, "", http.StatusServiceUnavailable)
		return
	}
	filter, err := parseToolCallListFilters(c.Request)
	if err != nil {
		writeError(c, err, "", http.StatusBadRequest)
		return
	}
	calls, err := s.calls.ListToolCalls(c.Request.Context(), filter)
	if err != nil {
		s.logger.Errorw("list tool calls failed", "trace_id", traceID(c), "err", err)
		writeError(c, err, "", http.StatusInternalServerError)
		return
	}
	if calls == nil {
		calls = []*db.ToolCall{}
	}
	c.JSON(http.StatusOK, gin.H{"tool_calls": calls})
}

func parseToolCallListFilters(r *http.Request) (db.ToolCallFilter, error) {
	q := r.URL.Query()
	f := db.ToolCallFilter{
		TraceID:  q.Get("trace_id"),
		Status:   q.Get("status"),
		ToolName: q.Get("tool_name"),
		Surface:  q.Get("surface"),
	}
	if f.Status != "" && f.Status != "ok" && f.Status != "fail" {
		return f, &invalidQueryError{msg: fmt.Sprintf("invalid status %q (valid: ok, fail)", f.Status)}
	}
	if raw := q.Get("created_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, &invalidQueryError{msg: fmt.Sprintf("invalid created_after: %v", err)}
		}
		f.CreatedAfter = &t
	}
	if raw := q.Get("created_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, &invalidQueryError{msg: fmt.Sprintf("invalid created_before: %v", err)}
		}
		f.CreatedBefore = &t
	}
	if f.CreatedAfter != nil && f.CreatedBefore != nil && !f.CreatedAfter.Before(*f.CreatedBefore) {
		return f, &invalidQueryError{msg: "created_after must be before created_before"}
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return f, &invalidQueryError{msg: fmt.Sprintf("invalid limit %q (1..500)", raw)}
		}
		f.Limit = n
	}
	return f, nil
}
