package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"goeda/adapters/postgres"
	"goeda/app"
	"goeda/internal/api"
	"goeda/internal/config"
	"goeda/ports"
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

	server := api.NewServer(api.Config{
		Port:        cfg.Server.APIPort,
		MaxFileSize: cfg.Analysis.MaxFileSize,
	}, service)

	log.Printf("Starting EDA API on http://localhost:%s", cfg.Server.APIPort)
	log.Fatal(server.Start())
}
