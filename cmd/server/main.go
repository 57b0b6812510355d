/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave management engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse flags
  2. Initialize SQLite store
  3. Seed standard policies and holidays (unless -no-seed)
  4. Wire the balance engine, validator, and workflow
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags win over environment variables.
  -port / PORT          HTTP server port (default: 8080)
  -db / DB_PATH         SQLite database path (default: leave.db)
                        Use ":memory:" for in-memory database
  -log-level / LOG_LEVEL  logrus level (default: info)
  -no-seed              Skip seeding standard policies and holidays

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/leave.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "leave.db"), "SQLite database path")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	noSeed := flag.Bool("no-seed", false, "skip seeding standard policies and holidays")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, using info", *logLevel)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	// Seed standard policies and default holidays
	if !*noSeed {
		pf := factory.NewPolicyFactory()
		if err := pf.SeedDefaults(context.Background(), store, store); err != nil {
			log.WithError(err).Fatal("Failed to seed defaults")
		}
	}

	// Wire the engine
	balances := leave.NewBalanceEngine(store, store, store)
	index := leave.NewCalendarIndex(store)
	validator := leave.NewValidator(store, store, balances, store, index)
	workflow := leave.NewWorkflow(store, validator, balances)

	handler := api.NewHandler(workflow, balances, index, store, store, store, store, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", *port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
