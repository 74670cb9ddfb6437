// The recognition-listener serves the grasp-model recognition API: the
// perception stack posts segmented object clouds and receives the matched
// model with its transferred, ranked grasp poses.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhetherman/rail-pick-and-place/internal/api"
	"github.com/bhetherman/rail-pick-and-place/internal/config"
	"github.com/bhetherman/rail-pick-and-place/internal/graspdb"
	"github.com/bhetherman/rail-pick-and-place/internal/monitor"
	"github.com/bhetherman/rail-pick-and-place/internal/pointcloud"
	"github.com/bhetherman/rail-pick-and-place/internal/recognition"
	"github.com/bhetherman/rail-pick-and-place/internal/version"
)

var (
	dbPath     = flag.String("db", "graspdb.db", "Path to the grasp model database")
	listen     = flag.String("listen", ":8080", "Listen address")
	configPath = flag.String("config", "", "Optional recognition tuning config (JSON)")
	history    = flag.Int("history", 0, "Recognition attempts retained for the debug dashboard (0 = default)")
)

func main() {
	flag.Parse()
	log.Printf("recognition-listener %s (%s)", version.Version, version.GitSHA)

	tuning, err := config.LoadTuningConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load tuning config: %v", err)
	}

	store, err := graspdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open grasp database %s: %v", *dbPath, err)
	}
	defer store.Close()
	log.Printf("grasp database ready at %s", *dbPath)

	ops := pointcloud.NewOps(tuning.Registration())
	rec := recognition.NewRecognizer(ops, tuning.Recognition())
	mon := monitor.NewMonitor(*history)
	srv := api.NewServer(store, rec, mon)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    *listen,
		Handler: srv.ServeMux(),
	}

	go func() {
		log.Printf("Starting HTTP server on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Println("shutdown complete")
}
