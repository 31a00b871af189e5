package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tradincode-dashboard-go/internal/config"
	"tradincode-dashboard-go/internal/database"
	"tradincode-dashboard-go/internal/loader"
	"tradincode-dashboard-go/internal/logger"
	"tradincode-dashboard-go/internal/store"
	"tradincode-dashboard-go/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(&cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Stores and worker API client
	ledger := store.NewLedgerStore(db, log)
	analysis := store.NewAnalysisStore(db)
	workerClient := worker.NewClient(&cfg.Worker, log)

	// Page loaders
	handler := NewAPIHandler(log, ledger, workerClient,
		loader.NewDashboardLoader(analysis, log),
		loader.NewPaperTradingLoader(ledger, analysis, log),
		loader.NewRankingsLoader(workerClient, log),
		loader.NewAccountLoader(workerClient, log),
		loader.NewCreateAccountLoader(workerClient, log),
	)

	mux := http.NewServeMux()

	// Page data endpoints
	mux.HandleFunc("GET /api/dashboard", handler.DashboardHandler)
	mux.HandleFunc("GET /api/paper-trading", handler.PaperTradingHandler)
	mux.HandleFunc("GET /api/rankings", handler.RankingsHandler)

	// Ledger control endpoints
	mux.HandleFunc("GET /api/paper-trading/config", handler.GetConfigHandler)
	mux.HandleFunc("POST /api/paper-trading/config", handler.UpdateConfigHandler)
	mux.HandleFunc("POST /api/paper-trading/reset", handler.ResetHandler)

	// Worker account endpoints
	mux.HandleFunc("GET /api/accounts/new", handler.CreateAccountFormHandler)
	mux.HandleFunc("POST /api/accounts", handler.CreateAccountHandler)
	mux.HandleFunc("GET /api/accounts/{id}", handler.AccountDetailHandler)
	mux.HandleFunc("DELETE /api/accounts/{id}", handler.DeleteAccountHandler)
	mux.HandleFunc("POST /api/accounts/{id}/toggle", handler.ToggleAccountHandler)

	mux.HandleFunc("GET /api/health", handler.HealthHandler)

	// Static file serving for CSS, JS, etc.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	// HTML template serving
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	// Setup context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting web server", zap.String("address", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
