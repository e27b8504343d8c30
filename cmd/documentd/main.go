// Command documentd is the MCP command-surface adapter for the
// spreadsheet data-studio core: a thin stdio server exposing Document
// operations as MCP tools (flag parsing, zerolog hooks, runtime
// guardrails, graceful shutdown).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/eruostudio/sheetcore/internal/docmanager"
	"github.com/eruostudio/sheetcore/internal/guard"
	"github.com/eruostudio/sheetcore/internal/spillpath"
	"github.com/eruostudio/sheetcore/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		shutdownTimeout time.Duration
	)
	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.Parse()

	logger := zlog.With().Str("service", "sheetcore-documentd").Logger()

	scratch, err := spillpath.NewResolverFromEnv()
	if err != nil {
		logger.Error().Err(err).Msg("spillpath: failed to resolve scratch directory")
		fmt.Fprintln(os.Stderr, "invalid scratch directory; set SHEETCORE_SCRATCH_DIR")
		os.Exit(1)
	}
	logger.Info().Str("scratch_dir", scratch.ScratchDir()).Msg("scratch directory configured")

	limits := guard.NewLimits(16, 8)
	controller := guard.NewController(limits)

	docs := docmanager.NewManager(0, 0, controller, nil)
	docs.Start()

	srv := server.NewMCPServer(
		"sheetcore document engine",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(buildHooks(logger)),
	)

	registerTools(srv, docs, scratch, controller)

	logger.Info().
		Str("version", version.Version()).
		Int("max_concurrent_commands", limits.MaxConcurrentCommands).
		Int("max_open_documents", limits.MaxOpenDocuments).
		Bool("stdio", useStdio).
		Msg("documentd bootstrap configured")

	if useStdio {
		if err := server.ServeStdio(srv); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = docs.Close(ctx)
		return
	}

	fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
	os.Exit(2)
}

func buildHooks(logger zerolog.Logger) *server.Hooks {
	hooks := &server.Hooks{}

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session registered")
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session unregistered")
	})
	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		logger.Info().Str("tool", req.Params.Name).Msg("tool call served")
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}
