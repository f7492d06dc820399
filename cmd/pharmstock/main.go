package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"pharmstock/m/internal/api"
	"pharmstock/m/internal/blob"
	"pharmstock/m/internal/config"
	"pharmstock/m/internal/database"
	"pharmstock/m/internal/inventory"
	"pharmstock/m/internal/migrations"
	"pharmstock/m/internal/seed"
	"pharmstock/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	var (
		backend store.Backend
		blobs   blob.Store
	)
	switch cfg.DatabaseDriver {
	case "memory":
		backend = store.NewMemory(nil)
		blobs = blob.NewMemory(cfg.PublicBaseURL)
	default:
		db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("database error: %v", err)
		}
		defer db.Close()
		if err := migrations.Run(db); err != nil {
			log.Fatalf("migration error: %v", err)
		}
		backend = store.NewSQL(db, nil)
		blobs = blob.NewSQL(db, cfg.PublicBaseURL)
	}

	if cfg.SeedCSV != "" {
		seed.LoadItemsFile(context.Background(), backend.Items, cfg.SeedCSV)
	}

	svc, err := inventory.New(backend, blobs, inventory.Options{
		Roster:           cfg.Roster,
		CategoryPassword: cfg.CategoryPassword,
		HorizonMonths:    cfg.HorizonMonths,
		NotificationDays: cfg.NotificationDays,
		LowStockAt:       cfg.LowStockAt,
	})
	if err != nil {
		log.Fatalf("service error: %v", err)
	}

	handler, err := api.New(svc, blobs, cfg.Secret, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("api error: %v", err)
	}
	defer handler.Close()

	log.Printf("pharmstock server starting on :%s (%s store, %d employees)", cfg.HTTPPort, cfg.DatabaseDriver, len(cfg.Roster))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
