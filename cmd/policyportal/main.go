// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the policy portal server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"policyportal/internal/ai"
	"policyportal/internal/cache"
	"policyportal/internal/config"
	"policyportal/internal/database"
	"policyportal/internal/handlers"
	"policyportal/internal/markdown"
	"policyportal/internal/middleware"
	"policyportal/internal/policydoc"
	"policyportal/internal/portal"
	"policyportal/internal/render"
	"policyportal/internal/router"
	"policyportal/internal/session"
	"policyportal/internal/storage"
	"policyportal/internal/store"
	"policyportal/internal/transfer"
	"policyportal/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables and .env.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the welcome policy (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + rendered fragment cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session cookies are Secure outside development.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	credentials, err := session.NewCredentials(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		slog.Error("failed to initialize credentials", "error", err)
		os.Exit(1)
	}

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Data stores.
	policyStore := store.NewPolicyStore(db)
	categoryStore := store.NewCategoryStore(db)

	// Policy rendering: annotator, optional sanitizer, fragment cache.
	var opts []policydoc.Option
	if cfg.RenderSanitize {
		opts = append(opts, policydoc.WithSanitizer(policydoc.NewSanitizer()))
	} else {
		slog.Warn("policy HTML is not sanitized; set RENDER_SANITIZE=true to enable")
	}
	annotator := policydoc.NewAnnotator(markdown.ToHTML, opts...)
	renderCache := cache.NewRenderCache(valkeyClient, cfg.RenderCacheTTL)
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if n, err := renderCache.InvalidateAll(flushCtx); err != nil {
		slog.Warn("failed to flush render cache", "error", err)
	} else {
		slog.Info("render cache flushed", "fragments", n, "markup_version", policydoc.MarkupVersion)
	}
	flushCancel()
	service := portal.NewService(policyStore, categoryStore, portal.NewRenderer(annotator, renderCache))

	// AI providers. The writer stays nil when the active provider has no key.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"gemini": {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)
	var writer handlers.Drafter
	if aiRegistry.HasProvider(aiRegistry.ActiveName()) {
		writer = ai.NewPolicyWriter(aiRegistry, cfg.AITimeout)
	} else {
		slog.Warn("ai provider not configured, drafting disabled", "provider", cfg.AIProvider)
	}

	// S3-compatible storage for export archives (optional).
	var archiver handlers.ArchiveStore
	if cfg.HasStorage() {
		storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		archiver = transfer.NewArchiver(storageClient)
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, export archives disabled")
	}

	// Live sync. An initial SYNC_URL is fetched in the background.
	syncer := transfer.NewSyncer(policyStore, nil)
	if cfg.SyncURL != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := syncer.Sync(ctx, cfg.SyncURL); err != nil {
				slog.Error("initial sync failed", "url", cfg.SyncURL, "error", err)
			}
		}()
	}

	xfer := handlers.NewTransfer(sessionStore, service, transfer.NewImporter(policyStore), syncer, archiver)
	h := router.Handlers{
		Auth:     handlers.NewAuth(renderer, sessionStore, credentials),
		Pages:    handlers.NewPages(renderer, sessionStore, service, writer, xfer),
		Transfer: xfer,
		API:      handlers.NewAPI(service),
	}

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()
	draftLimiter := middleware.NewRateLimiter(5, time.Minute)
	defer draftLimiter.Stop()

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	r := router.New(sessionStore, h, router.Limits{Login: loginLimiter, Draft: draftLimiter}, static, secureCookies)

	// WriteTimeout must cover AI drafts, which wait on the provider.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
