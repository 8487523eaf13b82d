package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diet-wizard/internal/cache"
	"diet-wizard/internal/config"
	"diet-wizard/internal/database"
	"diet-wizard/internal/diet"
	"diet-wizard/internal/history"
	"diet-wizard/internal/metrics"
	"diet-wizard/internal/nutrition"
	"diet-wizard/internal/telegram"
	"diet-wizard/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireDietAPI(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Storage
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	archive := history.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	// 3. Diet fetching
	client := diet.NewClient(cfg)
	controller := nutrition.NewController(client, cfg.DietAPITimeout, metricsStore, telemetry.FetchObserver{})

	// 4. Optional rate limiting
	var limiter telegram.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(cfg.RedisAddr, cfg.RateLimitPerMinute)
		if err != nil {
			log.Printf("Warning: rate limiting disabled: %v", err)
		} else {
			defer redisClient.Close()
			limiter = redisClient
		}
	}

	// 5. Telegram Bot
	bot, err := telegram.NewBot(cfg, controller, archive, metricsStore, limiter)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go bot.RunJanitor(janitorCtx, 10*time.Minute)

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		log.Printf("Diet Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let pending diets finish rendering before the database closes.
	bot.Wait()
	log.Println("Server exiting")
}
