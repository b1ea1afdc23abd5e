package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"goeda/adapters/postgres"
	"goeda/app"
	"goeda/internal/config"
	"goeda/ports"
	"goeda/ui"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	var history ports.ReportRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatal("Failed to ensure schema:", err)
		}
		history = postgres.NewReportRepository(db)
	}

	service, err := app.NewAnalysisService(cfg, history)
	if err != nil {
		log.Fatal("Failed to create analysis service:", err)
	}

	server, err := ui.NewServer(ui.Config{
		Port:        cfg.Server.Port,
		GinMode:     cfg.Server.GinMode,
		MaxFileSize: cfg.Analysis.MaxFileSize,
	}, service, history)
	if err != nil {
		log.Fatal("Failed to create UI server:", err)
	}

	log.Printf("Starting EDA UI on http://localhost:%s", cfg.Server.Port)
	log.Fatal(server.Start())
}
