package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/badweather-data/bwmt/internal/api"
	"github.com/badweather-data/bwmt/internal/config"
	"github.com/badweather-data/bwmt/internal/monitoring"
	"github.com/badweather-data/bwmt/internal/runlog"
	"github.com/badweather-data/bwmt/internal/trajectory"
	"github.com/badweather-data/bwmt/internal/version"
)

var (
	listen        = flag.String("listen", "", "Listen address (overrides the config file)")
	configPath    = flag.String("config", "bwmt.json", "Path to the configuration file")
	dbPath        = flag.String("db", "runs.db", "Path to the run history database (empty to disable)")
	migrationsDir = flag.String("migrations", "migrations", "Path to the schema migrations directory")
	debug         = flag.Bool("debug", false, "Enable verbose simulation logging")
)

func main() {
	flag.Parse()
	monitoring.Debug = *debug
	log.Printf("bwmt %s", version.String())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	addr := *listen
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	var runs *runlog.DB
	if *dbPath != "" {
		runs, err = runlog.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to open run database: %v", err)
		}
		defer runs.Close()
		if err := runs.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("failed to migrate run database: %v", err)
		}
	}

	sim := trajectory.NewSimulation(nil)
	server := api.NewServer(sim, cfg, *configPath, runs, nil)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		httpServer := &http.Server{
			Addr:    addr,
			Handler: api.LoggingMiddleware(server.ServeMux()),
		}

		go func() {
			log.Printf("listening on %s", addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
}
