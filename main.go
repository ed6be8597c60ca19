package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/climb-data/climb.report/internal/api"
	"github.com/climb-data/climb.report/internal/config"
	"github.com/climb-data/climb.report/internal/db"
	"github.com/climb-data/climb.report/internal/fetch"
	"github.com/climb-data/climb.report/internal/profile"
	"github.com/climb-data/climb.report/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "climb_profiles.db", "Path to the profile database")
	configFile = flag.String("config", "", "Path to a JSON render config overlay")
	sourceURL  = flag.String("source", "", "Base URL of an upstream segment stream service (enables /api/import)")
	migrations = flag.String("migrations", "", "Path to a migrations directory (skipped when empty)")
	seed       = flag.Bool("seed", false, "Insert a sample climb when the database is empty")
)

// seedProfile is a small well-known climb so a fresh install has something
// to render.
func seedProfile() *profile.ClimbProfile {
	start := 744.0
	return &profile.ClimbProfile{
		Name:            "Alpe d'Huez",
		StartElevationM: &start,
		Segments: []profile.Segment{
			{LengthKm: 1.0, GradePercent: 10.4},
			{LengthKm: 1.0, GradePercent: 7.9},
			{LengthKm: 1.0, GradePercent: 9.1},
			{LengthKm: 1.0, GradePercent: 8.3},
			{LengthKm: 1.0, GradePercent: 8.4},
			{LengthKm: 1.0, GradePercent: 7.8},
			{LengthKm: 1.0, GradePercent: 8.1},
			{LengthKm: 1.0, GradePercent: 9.2},
			{LengthKm: 1.0, GradePercent: 7.2},
			{LengthKm: 1.0, GradePercent: 8.1},
			{LengthKm: 1.0, GradePercent: 6.9},
			{LengthKm: 1.0, GradePercent: 7.5},
			{LengthKm: 1.0, GradePercent: 8.6},
			{LengthKm: 0.8, GradePercent: 5.1},
		},
	}
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	store, err := db.NewStore(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	if *migrations != "" {
		if err := store.MigrateUp(*migrations); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	if *seed {
		n, err := store.CountProfiles()
		if err != nil {
			log.Fatalf("failed to count profiles: %v", err)
		}
		if n == 0 {
			id, err := store.SaveProfile(seedProfile())
			if err != nil {
				log.Fatalf("failed to seed profile: %v", err)
			}
			log.Printf("seeded sample profile %s", id)
		}
	}

	var source *fetch.Source
	if *sourceURL != "" {
		source = fetch.NewSource(*sourceURL, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.NewServer(store, cfg, source).ServeMux()
	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	go func() {
		log.Printf("climb.report %s listening on %s", version.String(), *listen)
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
	}
	log.Printf("Graceful shutdown complete")
}
