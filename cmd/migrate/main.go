package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kdimtricp/formcheck/internal/app"
	"github.com/kdimtricp/formcheck/internal/config"
	"github.com/kdimtricp/formcheck/internal/database"
)

func main() {
	status := flag.Bool("status", false, "Show migration status only")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := database.NewDB(app.DatabaseConfig(cfg))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	ctx := context.Background()

	if *status {
		migrator, err := database.NewMigrator(db.Conn(), db.Type())
		if err != nil {
			log.Fatal("Failed to initialize migrator: ", err)
		}

		fmt.Println("Migration Status:")
		fmt.Println("=================")
		if err := migrator.Status(ctx, os.Stdout); err != nil {
			log.Fatal("Failed to get migration status: ", err)
		}
		return
	}

	fmt.Printf("Running migrations on %s...\n", db.Type())
	applied, err := db.RunMigrations(ctx)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	fmt.Printf("Migrations completed successfully! (%d applied)\n", applied)
}
