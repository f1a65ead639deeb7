package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toolhub/proxycurl-mcp/internal/config"
	"github.com/toolhub/proxycurl-mcp/internal/core"
	"github.com/toolhub/proxycurl-mcp/internal/db"
	httpsvr "github.com/toolhub/proxycurl-mcp/internal/http"
	"github.com/toolhub/proxycurl-mcp/internal/logging"
	mcpsvr "github.com/toolhub/proxycurl-mcp/internal/mcp"
	"github.com/toolhub/proxycurl-mcp/internal/proxycurl"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tool and prompts (stdio or tcp) and the optional HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, cfg, logger)
		},
	}
}

// setup loads and validates configuration and builds the process logger.
func setup() (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newLookupService wires the enrichment client and, when DATABASE_URL is set,
// the audit store. The returned closer releases the store.
func newLookupService(cfg *config.Config, logger *zap.SugaredLogger) (*core.LookupService, *db.DB, func(), error) {
	client := proxycurl.NewClient(cfg.APIKey, cfg.ClientOptions()...)
	policy := core.WithFlagPolicy(cfg.FlagPolicy())
	if cfg.DatabaseURL == "" {
		return core.NewLookupService(client, nil, logger, policy), nil, func() {}, nil
	}
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	closer := func() {
		if err := database.Close(); err != nil {
			logger.Warnw("database close failed", "err", err)
		}
	}
	return core.NewLookupService(client, core.NewAuditService(database), logger, policy), database, closer, nil
}

func serve(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *zap.SugaredLogger) error {
	logger.Infow("effective config",
		"profile", cfg.Profile,
		"mcp_transport", cfg.MCPTransport,
		"mcp_listen", cfg.MCPListen,
		"http_listen", cfg.HTTPListen,
		"http_auth", cfg.HTTPJWTSecret != "",
		"http_timeout", cfg.HTTPTimeout.String(),
		"audit", cfg.DatabaseURL != "",
		"enrichment_allowlist", cfg.EnrichmentAllowlist,
	)

	lookups, database, closeStore, err := newLookupService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	mcpServer := mcpsvr.NewServer(cfg.MCPListen, version, lookups, logger)

	var httpServer *httpsvr.Server
	if cfg.HTTPListen != "" {
		gin.SetMode(gin.ReleaseMode)
		var calls httpsvr.ToolCallLister
		if database != nil {
			calls = database
		}
		httpServer = httpsvr.NewServer(cfg.HTTPListen, lookups, calls, cfg.HTTPJWTSecret, logger, httpsvr.BuildInfo{
			Version:   version,
			GitCommit: gitCommit,
			BuildTime: buildTime,
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MCPTransport == config.TransportStdio {
		g.Go(func() error {
			// The process lives as long as the stdio session.
			defer cancel()
			err := mcpServer.ServeStdio(gctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		g.Go(func() error {
			defer cancel()
			return mcpServer.ListenAndServe()
		})
	}
	if httpServer != nil {
		g.Go(func() error {
			defer cancel()
			return httpServer.ListenAndServe()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Infow("shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		var errs []error
		if cfg.MCPTransport == config.TransportTCP {
			errs = append(errs, mcpServer.Shutdown(shutdownCtx))
		}
		if httpServer != nil {
			errs = append(errs, httpServer.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	logger.Infow("shutdown complete")
	return err
}
