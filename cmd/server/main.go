// server is the main debate pipeline binary. It exposes the
// argumentation pipeline either as an MCP server over stdio or as an
// HTTP API with a WebSocket progress stream.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fredcamaral/gomcp-sdk/transport"

	"github.com/caseymrobbins/personal-ai-sub001/internal/api"
	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/di"
	"github.com/caseymrobbins/personal-ai-sub001/internal/mcp"
)

func main() {
	var (
		mode = flag.String("mode", "stdio", "Server mode: stdio or http")
		addr = flag.String("addr", "", "HTTP server address (when mode=http); overrides config")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to build application container: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "stdio":
		if err := runStdio(ctx, container); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("MCP server failed: %v", err)
		}
	case "http":
		listen := *addr
		if listen == "" {
			listen = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		}
		if err := runHTTP(ctx, container, listen); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("HTTP server failed: %v", err)
		}
	default:
		log.Printf("Invalid mode: %s. Use 'stdio' or 'http'", *mode)
	}

	if err := container.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// runStdio serves the MCP protocol over stdin/stdout
func runStdio(ctx context.Context, container *di.Container) error {
	debateServer, err := mcp.NewDebateServer(container.Executor, container.Logger)
	if err != nil {
		return err
	}

	mcpServer := debateServer.Server()
	mcpServer.SetTransport(transport.NewStdioTransport())

	container.Logger.Info("starting debate server in stdio mode")
	return mcpServer.Start(ctx)
}

// runHTTP serves the REST API and the WebSocket progress stream
func runHTTP(ctx context.Context, container *di.Container, addr string) error {
	container.StartHub(ctx)
	if err := container.HealthCheck(ctx); err != nil {
		container.Logger.Warn("backend health check failed, continuing startup", "error", err.Error())
	}

	router := api.NewRouter(container.Config, container.Executor, container.Hub, container.Logger)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  time.Duration(container.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(container.Config.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		container.Logger.Info("starting debate server in http mode", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return ctx.Err()
	}
}
