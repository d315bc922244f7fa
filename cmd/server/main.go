/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the VetCare clinic server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment), apply flag overrides
  2. Build the zap logger
  3. Open the SQLite store (ledger + patients)
  4. Load the catalog (CATALOG_FILE or the built-in default)
  5. Wire engine, queue, directory, reporting and the HTTP router
  6. Start the end-of-day report scheduler
  7. Serve with graceful shutdown

COMMAND-LINE FLAGS:
  -env     .env file to load (default: .env if present)
  -port    HTTP server port (overrides APP_PORT)
  -db      SQLite database path (overrides DATABASE_PATH)
           ":memory:" keeps data for the process lifetime only

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, close the database
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vetcare/clinic-engine/api"
	"github.com/vetcare/clinic-engine/billing"
	"github.com/vetcare/clinic-engine/config"
	"github.com/vetcare/clinic-engine/factory"
	"github.com/vetcare/clinic-engine/frontdesk"
	"github.com/vetcare/clinic-engine/logger"
	"github.com/vetcare/clinic-engine/reporting"
	"github.com/vetcare/clinic-engine/store/sqlite"
)

func main() {
	// Flags
	envFile := flag.String("env", "", "env file to load")
	port := flag.Int("port", 0, "HTTP server port (overrides APP_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DATABASE_PATH)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		baseLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Catalog
	catalogFactory := factory.NewCatalogFactory()
	var catalog *billing.Catalog
	if cfg.Clinic.CatalogFile != "" {
		catalog, err = catalogFactory.LoadFile(cfg.Clinic.CatalogFile)
	} else {
		catalog, err = catalogFactory.ParseCatalog(factory.DefaultCatalogJSON)
	}
	if err != nil {
		baseLogger.Fatal("failed to load catalog", zap.Error(err))
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	clock := func() time.Time { return time.Now().In(loc) }

	ledger := billing.NewLedger(store)
	engine := billing.NewEngine(catalog, ledger,
		billing.WithClock(clock),
		billing.WithLogger(logger.Named(baseLogger, "billing")))
	reportingSvc := reporting.NewService(ledger, logger.Named(baseLogger, "reporting"))

	layout := billing.DefaultInvoiceLayout()
	layout.ClinicName = cfg.Clinic.Name

	handler := api.NewHandler(api.Deps{
		Engine:    engine,
		Queue:     frontdesk.NewQueue(),
		Patients:  frontdesk.NewDirectory(store),
		Reporting: reportingSvc,
		Layout:    layout,
		Now:       clock,
		Logger:    logger.Named(baseLogger, "api"),
	})
	router := api.NewRouter(handler, nil)

	scheduler := api.NewReportScheduler(reportingSvc, catalog, cfg.Reporting.LowStockThreshold, logger.Named(baseLogger, "scheduler"))
	if err := scheduler.Start(cfg.Reporting.CronSchedule, loc); err != nil {
		baseLogger.Fatal("failed to start report scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		baseLogger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("database", cfg.Database.Path),
			zap.Int("medicines", len(catalog.ListMedicines())),
			zap.Int("procedures", len(catalog.ListProcedures())))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	baseLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		baseLogger.Error("server forced to shutdown", zap.Error(err))
	}

	baseLogger.Info("server stopped")
}
