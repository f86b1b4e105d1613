package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-career-scraper/internal/config"
	"go-career-scraper/internal/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.DatabaseURL == "" {
		fmt.Printf("Opening SQLite store at %s...\n", cfg.DBPath)
		store, err := database.Open(cfg.DBPath, zap.NewNop())
		if err != nil {
			log.Fatalf("❌ Failed to open the database: %v", err)
		}
		defer store.Close()

		n, err := store.Count(ctx)
		if err != nil {
			log.Fatalf("❌ Query failed: %v", err)
		}
		fmt.Printf("✅ SQLite store ready, %d jobs stored\n", n)
		return
	}

	fmt.Println("Attempting to connect to PostgreSQL...")

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to the database. Error: %v\n(Check your connection string, password, and ensure you have internet access)", err)
	}
	defer conn.Close(context.Background())

	var version string
	if err := conn.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}

	var dbSize string
	if err := conn.QueryRow(ctx, "SELECT pg_size_pretty(pg_database_size(current_database()))").Scan(&dbSize); err == nil {
		fmt.Printf("📦 Current Database Size: %s\n", dbSize)
	}

	fmt.Println("✅ Successfully connected to PostgreSQL!")
	fmt.Println("🚀 Database Version:", version)
}
