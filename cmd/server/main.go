package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/edvart/fighter-roulette/internal/auth"
	"github.com/edvart/fighter-roulette/internal/config"
	"github.com/edvart/fighter-roulette/internal/coordinator"
	"github.com/edvart/fighter-roulette/internal/matchrecorder"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/store"
	"github.com/edvart/fighter-roulette/internal/tierlist"
	"github.com/edvart/fighter-roulette/internal/web"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Fighters with saved counters are registered before the tier list places them.
	registry, err := loadRegistry(context.Background(), db)
	if err != nil {
		log.Fatalf("Failed to load fighter stats: %v", err)
	}

	list, err := tierlist.Load(cfg.TierListPath)
	if err != nil {
		log.Fatalf("Failed to load tier list %s: %v", cfg.TierListPath, err)
	}
	pool, err := list.Pool(registry)
	if err != nil {
		log.Fatalf("Failed to build tier pool: %v", err)
	}
	log.Printf("Loaded %d fighters into the tier pool (%d known)", pool.Size(), registry.Len())

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	state, err := coordinator.NewState(pool, list.Settings, rand.New(rand.NewPCG(seed, seed>>1|1)))
	if err != nil {
		log.Fatalf("Invalid initial settings: %v", err)
	}
	state.LowestTier = cfg.LowestTier

	coord := coordinator.New(state)
	recorder := matchrecorder.New(db)
	server := web.NewServer(coord, db, auth.NewAdminConfig(cfg.AdminToken))

	// Subscribers must exist before the coordinator starts.
	recorderEvents := coord.Subscribe()
	server.StartEvents(coord.Subscribe())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		coord.Run(gctx)
		return nil
	})
	g.Go(func() error {
		recorder.Run(gctx, recorderEvents)
		return nil
	})
	g.Go(func() error {
		fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Server stopped: %v", err)
		return
	}
	log.Println("Server stopped")
}

func loadRegistry(ctx context.Context, db store.Store) (*roster.Registry, error) {
	stats, err := db.LoadFighterStats(ctx)
	if err != nil {
		return nil, err
	}
	registry := roster.NewRegistry()
	for _, st := range stats {
		f, err := registry.Ensure(st.Name, st.Tier)
		if err != nil {
			return nil, err
		}
		f.Records = st.Records
	}
	return registry, nil
}
