package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/MayankGitHub86/solvehub-sub000/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/achievements"
	"github.com/MayankGitHub86/solvehub-sub000/internal/config"
	"github.com/MayankGitHub86/solvehub-sub000/internal/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/repository/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	// the badge catalog is reference data every environment needs
	if err := achievements.SeedCatalog(ctx, sqlite.New(database, nil)); err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database %s initialized with %d badges.\n", cfg.DatabasePath, len(achievements.Catalog()))
}
