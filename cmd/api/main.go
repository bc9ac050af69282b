package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/galan4520/finanzas/internal/api/handlers"
	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/config"
	"github.com/galan4520/finanzas/internal/ledger"
	"github.com/galan4520/finanzas/internal/logger"
	"github.com/galan4520/finanzas/internal/remote"
	"github.com/galan4520/finanzas/internal/state"
	enginesync "github.com/galan4520/finanzas/internal/sync"
)

func main() {
	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Wire the engine: store, gateway, coordinator
	store := state.New(ledger.NewStamper(nil))
	gateway := remote.NewGateway(cfg.BaseURL, cfg.PIN, cfg.HTTPTimeout, log)
	coordinator := enginesync.New(store, gateway, enginesync.RealClock(), cfg.ResyncDelay, log)

	coordinator.OnDivergence(func(d enginesync.Divergence) {
		log.Warn().
			Str("command", d.Command).
			Str("reason", string(d.Reason)).
			Str("detail", d.Detail).
			Msg("Local and remote state diverged")
	})

	// Load the initial snapshot; starting from an empty local state is
	// acceptable when the remote store is unreachable, the first resync
	// will catch up.
	if err := coordinator.Resync(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Initial sync failed; starting with empty local state")
	}

	// Initialize handlers
	transactionsHandler := handlers.NewTransactionsHandler(coordinator, log)
	obligationsHandler := handlers.NewObligationsHandler(coordinator, log)
	goalsHandler := handlers.NewGoalsHandler(coordinator, log)
	accountsHandler := handlers.NewAccountsHandler(coordinator, log)
	summaryHandler := handlers.NewSummaryHandler(coordinator, log)
	syncHandler := handlers.NewSyncHandler(coordinator, log)
	profileHandler := handlers.NewProfileHandler(coordinator, log)

	// Create router
	mux := http.NewServeMux()

	// Ledger endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		stamp := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if stamp == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction timestamp is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			transactionsHandler.Update(w, r, stamp)
		case http.MethodDelete:
			transactionsHandler.Delete(w, r, stamp)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Obligation endpoints
	mux.HandleFunc("/api/obligations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			obligationsHandler.List(w, r)
		case http.MethodPost:
			obligationsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/obligations/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/obligations/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Obligation ID is required")
			return
		}
		if rest, found := strings.CutSuffix(id, "/settle"); found {
			if r.Method != http.MethodPost {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			obligationsHandler.Settle(w, r, rest)
			return
		}
		switch r.Method {
		case http.MethodPut:
			obligationsHandler.Update(w, r, id)
		case http.MethodDelete:
			obligationsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Goal endpoints
	mux.HandleFunc("/api/goals", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			goalsHandler.List(w, r)
		case http.MethodPost:
			goalsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/goals/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/goals/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Goal ID is required")
			return
		}
		if rest, found := strings.CutSuffix(id, "/contribute"); found {
			if r.Method != http.MethodPost {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			goalsHandler.Contribute(w, r, rest)
			return
		}
		if rest, found := strings.CutSuffix(id, "/release"); found {
			if r.Method != http.MethodPost {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			goalsHandler.Release(w, r, rest)
			return
		}
		switch r.Method {
		case http.MethodPut:
			goalsHandler.Update(w, r, id)
		case http.MethodDelete:
			goalsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Account endpoints
	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			accountsHandler.List(w, r)
		case http.MethodPost:
			accountsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Account ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			accountsHandler.Update(w, r, id)
		case http.MethodDelete:
			accountsHandler.Delete(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Read-side endpoints
	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			summaryHandler.Summary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/snapshot", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			summaryHandler.Snapshot(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Sync endpoints
	mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			syncHandler.Resync(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sync/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			syncHandler.Status(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Profile endpoints
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			profileHandler.Get(w, r)
		case http.MethodPut:
			profileHandler.Save(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight remote writes finish before exiting
	coordinator.Flush()

	log.Info().Msg("Server exited")
}
