// Command seed populates a PersonalizeAI database with the demo audience:
// archetypal subscribers, newsletter content and a month of engagement
// history, then rebuilds every profile.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/ignite/personalize-ai/internal/config"
	"github.com/ignite/personalize-ai/internal/personalization"
	"github.com/ignite/personalize-ai/internal/seed"
	"github.com/ignite/personalize-ai/internal/store"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required: the in-memory store does not outlive the process")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Database ping failed: %v", err)
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Schema bootstrap failed: %v", err)
	}

	pg := store.NewStore(db)
	engine := personalization.NewEngine(pg, pg, pg)

	if err := seed.NewSeeder(pg, engine).Run(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Demo data seeded")
}
