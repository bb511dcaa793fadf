package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/api"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/config"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/database"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/game"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/history"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/migrations"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/redis"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/server"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Database is for match history and the operator API; the game
	// itself runs without it.
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Printf("[DB] Failed to connect, match history disabled: %v", err)
		db = nil
	} else {
		defer db.Close()
		if os.Getenv("MIGRATE_ON_START") == "true" {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	}

	// Redis carries the match event bus for live watchers; also
	// optional.
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("[WS] Failed to connect to Redis, live watching disabled: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	store := history.NewStore(db)
	game.InitializeManager(store, rdb)

	ws.SetRedisClient(rdb)
	ws.StartMatchEventSubscriber(context.Background())

	// Game server (TCP)
	gameServer := server.New(cfg, game.Manager)
	go func() {
		if err := gameServer.ListenAndServe(); err != nil {
			log.Fatalf("Failed to start game server: %v", err)
		}
	}()

	// Observer API (HTTP)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var stopOnce sync.Once
	requestStop := func() {
		stopOnce.Do(func() {
			select {
			case stop <- syscall.SIGTERM:
			default:
			}
		})
	}

	api.SetupRoutes(router, db, cfg, store, requestStop)

	httpServer := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}
	go func() {
		log.Printf("[API] observer API listening on :%s", cfg.APIPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start observer API: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")

	gameServer.Close()
	game.Manager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("[API] shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
