package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ghbridge/server/internal/config"
	"ghbridge/server/internal/mcp"
	"ghbridge/server/internal/modules"
	"ghbridge/server/internal/modules/github"
	"ghbridge/server/internal/observability"
	"ghbridge/server/internal/transport"
	"ghbridge/server/pkg/githubapi"
)

func main() {
	// Diagnostics go to stderr so stdio transport stays clean on stdout
	log.SetOutput(os.Stderr)

	// Initialize observability (Loki)
	observability.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	client, err := githubapi.New(githubapi.Config{
		Token:   cfg.GitHubToken,
		BaseURL: cfg.GitHubBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to create GitHub client: %v", err)
	}

	modules.RegisterModule(github.New(client))
	log.Printf("Registered modules: %v", modules.ListModules())

	handler := mcp.NewHandler()

	switch cfg.Transport {
	case "http":
		runHTTP(cfg, handler)
	default:
		runStdio(handler)
	}
}

func runStdio(handler *mcp.Handler) {
	log.Printf("Starting MCP server on stdio")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stdio := transport.NewStdio(handler)
	if err := stdio.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Stdio transport failed: %v", err)
	}
	log.Printf("Server stopped")
}

func runHTTP(cfg config.Config, handler *mcp.Handler) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	// MCP endpoint with recovery + auth + rate limit + transport
	verifier := transport.NewBearerVerifier(cfg.AuthSecret)
	rateLimiter := transport.NewRateLimiter(cfg.RateLimitRPS)
	mcpTransport := transport.NewHTTP(handler)
	mux.Handle("/mcp", transport.Recovery(verifier.Middleware(rateLimiter.Middleware(mcpTransport))))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
	}

	go func() {
		log.Printf("Starting MCP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal %s, shutting down gracefully...", sig)

	// Give in-flight requests up to 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Printf("Server stopped")
}
