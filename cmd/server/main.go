// Package main initializes and starts the event wallet server, setting
// up configuration, logging, the persistent store, the ledger core, the
// auth gate and the HTTP surface.
package main

import (
	"cmp"
	"context"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/festipay/festipay/internal/config"
	"github.com/festipay/festipay/internal/logger"
	"github.com/festipay/festipay/internal/server/handler/http"
	"github.com/festipay/festipay/internal/service"
	"github.com/festipay/festipay/internal/session"
	"github.com/festipay/festipay/internal/store"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize the persistent store: postgres when a DSN is given,
	// the local file store otherwise.
	var kv store.KV
	if options.DatabaseDSN != "" {
		pg, err := store.OpenPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		kv = pg
	} else {
		fs, err := store.NewFileStore(options.DataDir)
		if err != nil {
			zapLogger.Fatal("cannot init file store", zap.Error(err))
		}
		kv = fs
	}

	// Load the ledger core, seeding sample data on a cold start.
	ledger, err := service.NewLedger(context.Background(), kv, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot load ledger", zap.Error(err))
	}

	// Initialize the session manager and the auth gate.
	sessions := session.NewManager()
	auth := service.NewAuth(ledger, sessions, zapLogger)

	// Create HTTP handlers for auth, ledger and statistics endpoints.
	authHandler := &http.AuthHandler{AuthService: auth}
	ledgerHandler := &http.LedgerHandler{LedgerService: ledger}
	statsHandler := &http.StatsHandler{StatsService: ledger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, ledgerHandler, statsHandler, auth, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
