// FlightWall acquisition daemon
// Polls nearby air traffic, enriches it with flight details, and serves the
// result over a small REST API for display frontends.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightwall/flightwall/internal/pipeline"
	"github.com/flightwall/flightwall/internal/server"
	"github.com/flightwall/flightwall/pkg/aeroapi"
	"github.com/flightwall/flightwall/pkg/config"
	"github.com/flightwall/flightwall/pkg/geo"
	"github.com/flightwall/flightwall/pkg/lookup"
	"github.com/flightwall/flightwall/pkg/netgate"
	"github.com/flightwall/flightwall/pkg/opensky"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	port       = flag.String("port", "", "HTTP server port (overrides config)")
)

// listenAddr builds the bind address from the server config.
func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
}

func main() {
	flag.Parse()

	log.Println("🚀 Starting FlightWall...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	log.Printf("📍 Observer: %s (%.4f, %.4f), radius %.1f km",
		cfg.Observer.Name, cfg.Observer.Latitude, cfg.Observer.Longitude, cfg.Tracking.RadiusKm)

	// One gate for all outbound API traffic: state and detail fetches never
	// overlap on the wire.
	gate := netgate.New()

	states := opensky.NewClient(opensky.Config{
		BaseURL:      cfg.OpenSky.BaseURL,
		TokenURL:     cfg.OpenSky.TokenURL,
		ClientID:     cfg.OpenSky.ClientID,
		ClientSecret: cfg.OpenSky.ClientSecret,
		Gate:         gate,
		BearingMin:   cfg.Tracking.BearingMinDeg,
		BearingMax:   cfg.Tracking.BearingMaxDeg,
	})

	details := aeroapi.NewClient(aeroapi.Config{
		APIKey:          cfg.AeroAPI.APIKey,
		BaseURL:         cfg.AeroAPI.BaseURL,
		RequestsPerHour: cfg.AeroAPI.RequestsPerHour,
		Gate:            gate,
	})

	p := pipeline.New(states, details, lookup.Default(), pipeline.Config{
		Center:            geo.Point{Latitude: cfg.Observer.Latitude, Longitude: cfg.Observer.Longitude},
		RadiusKm:          cfg.Tracking.RadiusKm,
		DetailFetchBudget: cfg.Tracking.DetailFetchBudget,
		CacheTTL:          time.Duration(cfg.Tracking.CacheTTLSeconds) * time.Second,
	})

	runner := pipeline.NewRunner(p, time.Duration(cfg.Tracking.PollIntervalSeconds)*time.Second)
	if err := runner.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	srv := server.New(runner, cfg)
	httpServer := &http.Server{
		Addr:         listenAddr(cfg),
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("📡 API listening on http://%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n👋 Shutting down...")

	runner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Stopped")
}
