package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/gridiron/internal/api/rest"
	"github.com/fortuna/gridiron/internal/api/websocket"
	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/game"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/scheduler"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/fortuna/gridiron/internal/store/repository"
)

const (
	serviceName    = "gridiron-api"
	serviceVersion = "1.0.0"
)

type gameStore interface {
	service.GameRepository
	service.SummaryRepository
}

func main() {
	log.Printf("Starting %s v%s - Game Tracker API", serviceName, serviceVersion)

	cfg := config.Load()

	var (
		dsn      = flag.String("dsn", cfg.DatabaseURL, "PostgreSQL DSN (empty keeps games in memory)")
		redisURL = flag.String("redis", cfg.RedisURL, "Redis URL for the stats cache and change stream (empty disables both)")
		restPort = flag.String("port", cfg.RESTPort, "REST API port")
		wsPort   = flag.String("ws-port", cfg.WSPort, "WebSocket port")
		seedFile = flag.String("seed", "", "JSON file of games loaded when the store is empty")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]rest.HealthChecker{}

	var games gameStore
	if *dsn != "" {
		db, err := store.NewDatabase(*dsn)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		log.Println("✓ Connected to PostgreSQL")

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		log.Println("✓ Database migrations applied")

		games = struct {
			*repository.GameRepository
			*repository.StatsRepository
		}{repository.NewGameRepository(db), repository.NewStatsRepository(db)}
		checks["postgres"] = db
	} else {
		games = repository.NewMemoryGameRepository()
		log.Println("⚠️  DATABASE_URL not set, games are kept in memory")
	}

	wsServer := websocket.NewServer(*wsPort)

	// Redis is optional; when configured it must come up. Without it, writes
	// go straight to this instance's watchers. With it, they go to the stream
	// and the relay feeds every instance's hub.
	var (
		statsCache service.StatsCache
		changes    service.ChangePublisher = wsServer.Hub()
		relay      *scheduler.Relay
	)
	if *redisURL != "" {
		redisCache := connectRedis(*redisURL)
		defer redisCache.Close()

		stream := publisher.NewRedisStreamPublisher(redisCache.Client())
		statsCache = redisCache
		changes = stream
		checks["redis"] = redisCache

		relay = scheduler.NewRelay(stream, wsServer.Hub(), nil)
		go relay.Start(ctx)
		log.Println("✓ Redis stats cache and change stream ready")
	}

	statsService := service.NewStatsService(games, statsCache)
	gameService := service.NewGameService(games, changes, statsService)

	if *seedFile != "" {
		if err := seed(ctx, gameService, *seedFile); err != nil {
			log.Printf("⚠️  Seed data warning: %v (continuing anyway)", err)
		}
	}

	restServer := rest.NewServer(*restPort, gameService, statsService, checks)
	go func() {
		log.Printf("Starting REST API server on port %s", *restPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	go func() {
		log.Printf("Starting WebSocket server on port %s", *wsPort)
		if err := wsServer.Start(); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s/api", *restPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s/ws/games", *wsPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Printf("Shutting down %s gracefully...", serviceName)
	if relay != nil {
		relay.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

// connectRedis retries while Redis starts up alongside the API
func connectRedis(url string) *cache.RedisCache {
	const maxRetries = 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; ; i++ {
		redisCache, err := cache.NewRedisCache(url)
		if err == nil {
			log.Println("✓ Connected to Redis")
			return redisCache
		}
		if i == maxRetries-1 {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
		log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
		time.Sleep(retryDelay)
	}
}

// seed loads games from a JSON array when the store holds none. Records may
// use any of the accepted field spellings.
func seed(ctx context.Context, svc *service.GameService, path string) error {
	existing, err := svc.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Printf("Seed skipped: store already holds %d games", len(existing))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	created := 0
	for _, g := range game.NormalizeAll(raw) {
		if _, err := svc.CreateGame(ctx, g); err != nil {
			log.Printf("⚠️  skipping seed record %q vs %q: %v", g.Team, g.Opponent, err)
			continue
		}
		created++
	}
	log.Printf("✓ Seed data applied (%d games)", created)
	return nil
}
