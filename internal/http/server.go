package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toolhub/proxycurl-mcp/internal/core"
	"github.com/toolhub/proxycurl-mcp/internal/db"
	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
	"github.com/toolhub/proxycurl-mcp/internal/telemetry"
)

// BuildInfo is reported by GET /version.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// ToolCallLister reads the audit trail. *db.DB satisfies it.
type ToolCallLister interface {
	ListToolCalls(ctx context.Context, f db.ToolCallFilter) ([]*db.ToolCall, error)
}

type Server struct {
	lookups *core.LookupService
	calls   ToolCallLister
	srv     *http.Server
	logger  *zap.SugaredLogger
	build   BuildInfo
}

// NewServer builds the ops and API server. calls may be nil when no audit
// store is configured. An empty jwtSecret leaves /api/v1 unauthenticated.
func NewServer(addr string, lookups *core.LookupService, calls ToolCallLister, jwtSecret string, logger *zap.SugaredLogger, build BuildInfo) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		lookups: lookups,
		calls:   calls,
		logger:  logger,
		build:   build,
	}

	router := gin.New()
	router.Use(withTraceID(), withLogging(logger), gin.Recovery())

	router.GET("/healthz", s.handleHealthz)
	router.GET("/version", s.handleVersion)
	router.GET("/metrics", s.handleMetrics)

	api := router.Group("/api/v1", requireBearer(jwtSecret))
	api.GET("/profile", s.handleProfile)
	api.GET("/tool-calls", s.handleListToolCalls)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Infow("http server starting", "addr", s.srv.Addr)
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, s.build)
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(telemetry.RenderPrometheus()))
}

func (s *Server) handleProfile(c *gin.Context) {
	raw := make(map[string]string)
	for _, spec := range proxycurl.FlagSpecs {
		if v := c.Query(spec.Name); v != "" {
			raw[spec.Name] = v
		}
	}

	res, err := s.lookups.Lookup(c.Request.Context(), core.LookupInput{
		ProfileURL: c.Query("profile_url"),
		RawFlags:   raw,
		Surface:    core.SurfaceHTTP,
		TraceID:    traceID(c),
	})
	if err != nil {
		writeError(c, err, core.ToolGetPersonProfile, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, core.ToolEnvelope{
		OK: true,
		Meta: core.ToolMeta{
			TraceID:    res.TraceID,
			Tool:       core.ToolGetPersonProfile,
			Provider:   string(res.Reference.Provider),
			DurationMS: res.Duration.Milliseconds(),
		},
		Result: core.ProfileResult{
			CanonicalURL: res.Reference.CanonicalURL,
			Text:         res.Text,
			Profile:      res.Profile,
		},
	})
}

func writeError(c *gin.Context, err error, tool string, fallbackStatus int) {
	info := core.MapError(err, fallbackStatus)
	c.JSON(info.HTTPStatus, core.ToolEnvelope{
		OK:    false,
		Meta:  core.ToolMeta{TraceID: traceID(c), Tool: tool},
		Error: &core.ToolError{Code: info.Code, Message: info.Message},
	})
}

const traceHeader = "X-Request-ID"

func withTraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(traceHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("trace_id", id)
		c.Header(traceHeader, id)
		c.Next()
	}
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func withLogging(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("http request",
			"trace_id", traceID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
