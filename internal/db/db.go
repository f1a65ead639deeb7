// Package db provides PostgreSQL persistence for the tool call audit trail.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the underlying *sql.DB and provides typed query methods.
type DB struct {
	conn *sql.DB
}

// New opens a PostgreSQL connection, verifies connectivity and applies
// pending migrations.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := ApplyMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying *sql.DB.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// ToolCall is one audited tool invocation. Only request metadata is kept;
// profile content is never stored.
type ToolCall struct {
	ToolCallID   string            `json:"tool_call_id"`
	TraceID      string            `json:"trace_id"`
	ToolName     string            `json:"tool_name"`
	Surface      string            `json:"surface"`
	Provider     *string           `json:"provider,omitempty"`
	CanonicalURL *string           `json:"canonical_url,omitempty"`
	Flags        map[string]string `json:"flags"`
	Status       string            `json:"status"`
	ErrorCode    *string           `json:"error_code,omitempty"`
	DurationMS   int64             `json:"duration_ms"`
	CreatedAt    time.Time         `json:"created_at"`
}

// InsertToolCall creates a new tool call record.
func (d *DB) InsertToolCall(ctx context.Context, tc *ToolCall) error {
	flags := tc.Flags
	if flags == nil {
		flags = map[string]string{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	_, err = d.conn.ExecContext(ctx,
		`INSERT INTO tool_calls (tool_call_id, trace_id, tool_name, surface, provider, canonical_url, flags, status, error_code, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tc.ToolCallID, tc.TraceID, tc.ToolName, tc.Surface, tc.Provider, tc.CanonicalURL, string(flagsJSON), tc.Status, tc.ErrorCode, tc.DurationMS, tc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tool_call: %w", err)
	}
	return nil
}

// ToolCallFilter narrows ListToolCalls. Zero values match everything.
type ToolCallFilter struct {
	TraceID       string
	Status        string
	ToolName      string
	Surface       string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
}

// ListToolCalls returns matching tool calls, most recent first.
func (d *DB) ListToolCalls(ctx context.Context, f ToolCallFilter) ([]*ToolCall, error) {
	query, args := buildToolCallQuery(f)
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tool_calls: %w", err)
	}
	defer rows.Close()

	var tcs []*ToolCall
	for rows.Next() {
		tc := &ToolCall{}
		var flagsJSON []byte
		if err := rows.Scan(&tc.ToolCallID, &tc.TraceID, &tc.ToolName, &tc.Surface, &tc.Provider, &tc.CanonicalURL, &flagsJSON, &tc.Status, &tc.ErrorCode, &tc.DurationMS, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tool_call: %w", err)
		}
		if len(flagsJSON) > 0 {
			if err := json.Unmarshal(flagsJSON, &tc.Flags); err != nil {
				return nil, fmt.Errorf("decode tool_call flags: %w", err)
			}
		}
		tcs = append(tcs, tc)
	}
	return tcs, rows.Err()
}

func buildToolCallQuery(f ToolCallFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.TraceID != "" {
		add("trace_id = $%d", f.TraceID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.ToolName != "" {
		add("tool_name = $%d", f.ToolName)
	}
	if f.Surface != "" {
		add("surface = $%d", f.Surface)
	}
	if f.CreatedAfter != nil {
		add("created_at >= $%d", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		add("created_at < $%d", *f.CreatedBefore)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var sb strings.Builder
	sb.WriteString(`SELECT tool_call_id, trace_id, tool_name, surface, provider, canonical_url, flags, status, error_code, duration_ms, created_at FROM tool_calls`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))
	return sb.String(), args
}
