package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/personalize-ai/internal/api"
	"github.com/ignite/personalize-ai/internal/cache"
	"github.com/ignite/personalize-ai/internal/config"
	"github.com/ignite/personalize-ai/internal/personalization"
	"github.com/ignite/personalize-ai/internal/pkg/logger"
	"github.com/ignite/personalize-ai/internal/platform"
	"github.com/ignite/personalize-ai/internal/seed"
	"github.com/ignite/personalize-ai/internal/store"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// serverStore is the union of persistence surfaces the server wires together.
// Both the Postgres and in-memory stores satisfy it.
type serverStore interface {
	api.Store
	personalization.EventSource
	personalization.SubscriberSource
	personalization.AudienceSource
	seed.Target
}

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  PersonalizeAI Server (cmd/server/main.go)                ║")
	log.Println("║  Engagement analytics and newsletter personalization      ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage: Postgres when configured, in-memory demo mode otherwise.
	var (
		dataStore serverStore
		db        *sql.DB
	)
	if cfg.Database.URL != "" {
		log.Printf("Connecting to Postgres at %s", extractHost(cfg.Database.URL))
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		pingCancel()
		if err != nil {
			log.Fatalf("Database ping failed: %v", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("Schema bootstrap failed: %v", err)
		}
		dataStore = store.NewStore(db)
		defer db.Close()
	} else {
		log.Println("No DATABASE_URL configured, running on the in-memory store")
		dataStore = store.NewMemoryStore()
		if !cfg.Demo.Seed {
			log.Println("Tip: set SEED_DEMO_DATA=true to populate demo data")
		}
	}

	// Personalization engine over the chosen store.
	engine := personalization.NewEngine(dataStore, dataStore, dataStore)
	reporter := personalization.NewReporter(engine, dataStore)

	// Redis profile cache (optional).
	var profileSource personalization.ProfileStore = dataStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v, profile cache disabled", cfg.Redis.Addr, err)
			redisClient.Close()
		} else {
			profileCache := cache.NewProfileCache(dataStore, redisClient, cfg.Redis.ProfileTTL())
			profileSource = profileCache
			engine = personalization.NewEngine(dataStore, dataStore, profileCache)
			reporter = personalization.NewReporter(engine, dataStore)
			log.Printf("Redis profile cache enabled (%s, TTL %s)", cfg.Redis.Addr, cfg.Redis.ProfileTTL())
			defer redisClient.Close()
		}
	}

	// Demo data.
	if cfg.Demo.Seed {
		log.Println("Seeding demo data...")
		if err := seed.NewSeeder(dataStore, engine).Run(ctx); err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
	}

	// HTTP surface.
	handlers := api.NewHandlers(dataStore, engine, reporter)
	handlers.SetProfileSource(profileSource)
	handlers.SetSalesforce(platform.NewSalesforceClient(cfg.Salesforce.InstanceURL))
	handlers.SetBaseline(personalization.BaselineMetrics{
		OpenRate:                cfg.Revenue.AvgOpenRate,
		ClickRate:               cfg.Revenue.AvgClickRate,
		ChurnRate:               cfg.Revenue.MonthlyChurnRate,
		AvgRevenuePerSubscriber: cfg.Revenue.RevenuePerSubscriber,
	})
	server := api.NewServer(handlers)

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := cfg.Server.Addr()
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized - server is ready")

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
