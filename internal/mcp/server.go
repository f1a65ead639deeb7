// Package mcp serves the profile lookup tool and its prompts over the Model
// Context Protocol, on stdio or on a TCP listener.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/toolhub/proxycurl-mcp/internal/core"
)

// ServerName is reported in the initialize handshake.
const ServerName = "mcp-server-proxycurl"

type ctxKey string

const ctxKeyTraceID ctxKey = "trace_id"

func traceIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyTraceID).(string)
	return v
}

type Server struct {
	mcp    *server.MCPServer
	addr   string
	logger *zap.SugaredLogger

	ln     net.Listener
	mu     sync.Mutex
	closed bool
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
}

// NewServer registers the lookup tool and every prompt. addr is only used by
// ListenAndServe.
func NewServer(addr, version string, lookups *core.LookupService, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	tool := NewProfileTool(lookups)
	s.AddTool(tool.Definition(), tool.Handle)

	for _, p := range Prompts() {
		s.AddPrompt(p.Definition(), p.Handle)
	}

	return &Server{
		mcp:    s,
		addr:   addr,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
	}
}

// ToolDefinitions returns every tool the server registers.
func ToolDefinitions() []mcp.Tool {
	return []mcp.Tool{NewProfileTool(nil).Definition()}
}

// PromptDefinitions returns every prompt the server registers.
func PromptDefinitions() []mcp.Prompt {
	out := make([]mcp.Prompt, 0, 4)
	for _, p := range Prompts() {
		out = append(out, p.Definition())
	}
	return out
}

// ServeStdio serves a single session on in/out until ctx is canceled or in
// reaches EOF.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Desugar()))
	s.logger.Infow("mcp server starting", "transport", "stdio")
	return stdio.Listen(ctx, in, out)
}

// ListenAndServe accepts TCP connections on the configured address. Each
// connection carries newline-delimited JSON-RPC messages.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()

	s.logger.Infow("mcp server starting", "transport", "tcp", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			s.logger.Errorw("mcp accept error", "err", err)
			continue
		}
		if !s.track(conn) {
			conn.Close()
			return nil
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting, closes open connections and waits for their
// handlers to return or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		traceID := uuid.New().String()
		ctx := context.WithValue(context.Background(), ctxKeyTraceID, traceID)
		resp := s.mcp.HandleMessage(ctx, json.RawMessage(append([]byte(nil), line...)))
		if resp == nil {
			continue
		}
		s.writeResponse(conn, traceID, resp)
	}
	if err := scanner.Err(); err != nil {
		s.logger.Debugw("mcp connection closed", "remote", conn.RemoteAddr().String(), "err", err)
	}
}

func (s *Server) writeResponse(w io.Writer, traceID string, resp mcp.JSONRPCMessage) {
	b, err := json.Marshal(resp)
	if err != nil {
		s.logger.Errorw("mcp marshal response", "trace_id", traceID, "err", err)
		return
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		s.logger.Debugw("mcp write response", "trace_id", traceID, "err", err)
	}
}
