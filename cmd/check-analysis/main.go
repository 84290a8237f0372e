package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kdimtricp/formcheck/internal/analysis"
	"github.com/kdimtricp/formcheck/internal/app"
	"github.com/kdimtricp/formcheck/internal/config"
	"github.com/kdimtricp/formcheck/internal/database"
	"github.com/kdimtricp/formcheck/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	fmt.Println("Checking Analysis Setup")
	fmt.Println("=======================")
	fmt.Printf("Analysis service: %s\n", cfg.AnalysisURL)
	fmt.Printf("Mode:             %s\n", cfg.AnalysisMode)
	if cfg.AnalysisMode == config.ModeAsync {
		fmt.Printf("Enqueue timeout:  %s\n", cfg.AnalysisAsyncTimeout)
		fmt.Printf("Results dir:      %s\n", cfg.ResultsDir)
	} else {
		fmt.Printf("Timeout:          %s\n", cfg.AnalysisSyncTimeout)
	}
	fmt.Printf("Storage:          %s\n", cfg.StorageBackend)

	ctx := context.Background()

	store, err := app.NewStorage(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open storage: ", err)
	}
	if err := storage.Check(ctx, store); err != nil {
		fmt.Printf("Storage check:    FAILED (%v)\n", err)
	} else {
		fmt.Println("Storage check:    ok")
	}
	fmt.Println()

	db, err := database.NewDB(app.DatabaseConfig(cfg))
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	users, err := database.NewUserRepository(db).Count(ctx)
	if err != nil {
		fmt.Println("No users table found (run cmd/migrate first)")
		return
	}
	results, err := database.NewResultRepository(db).Count(ctx)
	if err != nil {
		log.Fatal("Failed to count results: ", err)
	}
	fmt.Printf("Users:   %d\n", users)
	fmt.Printf("Results: %d\n", results)

	if _, err := os.Stat(cfg.ResultsDir); err != nil {
		fmt.Println("\nNo results directory yet")
		return
	}

	artifacts, err := analysis.NewArtifactStore(cfg.ResultsDir)
	if err != nil {
		log.Fatal("Failed to open results directory: ", err)
	}

	ids, err := artifacts.JobIDs()
	if err != nil {
		log.Fatal("Failed to list artifacts: ", err)
	}

	corrupt := 0
	for _, id := range ids {
		if _, _, err := artifacts.Lookup(id); err != nil {
			corrupt++
			fmt.Printf("  corrupt: %s (%v)\n", id, err)
		}
	}
	fmt.Printf("\nArtifacts: %d (%d corrupt)\n", len(ids), corrupt)
}
