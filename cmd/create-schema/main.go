package main

import (
	"context"
	"log"

	"legalassist-backend/config"
	"legalassist-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, repository.ArticlesTableSQL); err != nil {
		log.Fatalf("Failed to create articles table: %v", err)
	}
	log.Println("✓ articles table ready")
}
