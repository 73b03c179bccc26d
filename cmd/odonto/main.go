package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DesireeAI/odonto/internal/auth"
	"github.com/DesireeAI/odonto/internal/config"
	"github.com/DesireeAI/odonto/internal/database"
	"github.com/DesireeAI/odonto/internal/dispatch"
	"github.com/DesireeAI/odonto/internal/llm"
	"github.com/DesireeAI/odonto/internal/logger"
	"github.com/DesireeAI/odonto/internal/persona"
	"github.com/DesireeAI/odonto/internal/platform"
	"github.com/DesireeAI/odonto/internal/scheduler"
	"github.com/DesireeAI/odonto/internal/server"
	"github.com/DesireeAI/odonto/internal/thread"
	ws "github.com/DesireeAI/odonto/internal/websocket"
)

var version = "dev"

func main() {
	// Handle --version / -v flag
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println("odonto " + version)
		os.Exit(0)
	}

	// Load .env if present; real env vars take precedence
	godotenv.Load()

	logger.Banner()

	cfg := config.Load()

	// Transcript sidecar database
	db, err := database.New(cfg.DataDir)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Resolve JWT secret: env var > ephemeral per-boot value. Sessions live
	// in memory anyway, so losing tokens on restart only forces a new session.
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = generateSecret()
		if err != nil {
			logger.Fatal("Failed to generate JWT secret: %v", err)
		}
		logger.Warn("Generated ephemeral JWT secret. Set ODONTO_JWT_SECRET to keep tokens valid across restarts.")
	}
	authService := auth.NewService(jwtSecret)

	// Persona catalog; document search is enabled only when a vector store
	// is configured.
	var search *persona.DocumentSearch
	if cfg.VectorStoreID != "" {
		search = &persona.DocumentSearch{
			MaxResults:    cfg.SearchMaxResults,
			VectorStoreID: cfg.VectorStoreID,
		}
	}
	catalog, err := persona.NewCatalog(persona.Options{Search: search})
	if err != nil {
		logger.Fatal("Failed to build persona catalog: %v", err)
	}
	if search != nil {
		logger.Success("Document search enabled (vector store %s)", cfg.VectorStoreID)
	}

	registry := thread.NewRegistry(persona.Triage)

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:          cfg.OpenAIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		Model:           cfg.Model,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	if err != nil {
		logger.Fatal("Failed to create model service client: %v", err)
	}

	// Turn dispatcher (WebSocket broadcasts are wired after server creation).
	// Turn events carry conversation text and only go to the thread's own
	// subscribers; registry stats fan out to everyone.
	var wsHub *ws.Hub
	turnBroadcast := func(threadID, eventType string, payload interface{}) {
		if wsHub == nil {
			return
		}
		wsHub.BroadcastToThread(threadID, eventType, payload)
	}
	statsBroadcast := func(eventType string, payload interface{}) {
		if wsHub == nil {
			return
		}
		wsHub.Broadcast(eventType, payload)
	}

	dispatcher := dispatch.New(catalog, registry, llmClient, dispatch.Options{
		HistoryWindow: cfg.HistoryWindow,
		Recorder:      db,
		Broadcast:     turnBroadcast,
	})

	srv := server.New(server.Config{
		DB:        db,
		Auth:      authService,
		Registry:  registry,
		Catalog:   catalog,
		Processor: dispatcher,
		Port:      cfg.Port,
	})
	wsHub = srv.WSHub

	go srv.WSHub.Run()
	defer srv.WSHub.Stop()

	sched := scheduler.New(db, registry)
	sched.SetBroadcast(statsBroadcast)
	sched.Start()
	defer sched.Stop()

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	if cfg.BindAddress != "127.0.0.1" && cfg.BindAddress != "localhost" {
		logger.Warn("Binding to %s — accessible from the network. Use ODONTO_BIND=127.0.0.1 for localhost-only.", cfg.BindAddress)
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // intentionally zero for WebSocket support
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		url := fmt.Sprintf("http://localhost:%d", cfg.Port)
		logger.Listen(addr, url, cfg.Port)
		if cfg.DevMode {
			platform.OpenBrowser(url)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	<-done
	logger.Shutdown("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("Server shutdown failed: %v", err)
	}

	logger.Bye()
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
