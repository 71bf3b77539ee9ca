package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rituals/internal/config"
	"rituals/internal/logging"
	"rituals/internal/stub"
	"rituals/pkg/auth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Rituals stub server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	cfg := config.LoadServer()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	tokens, err := auth.NewTokenAuth(cfg.JWTSecret, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to initialize token auth: %v", err)
	}
	log.Println("✅ Token auth initialized")

	seed := stub.DefaultSeed()
	if cfg.SeedFile != "" {
		seed, err = stub.LoadSeed(cfg.SeedFile)
		if err != nil {
			log.Fatalf("❌ Failed to load seed file %s: %v", cfg.SeedFile, err)
		}
		log.Printf("✅ Seed catalog loaded from %s (%d plans, %d promo codes)", cfg.SeedFile, len(seed.Plans), len(seed.PromoCodes))
	} else {
		log.Println("⚠️  SEED_FILE not set, using built-in plan catalog")
	}

	store := stub.NewStore(seed)
	app := stub.NewApp(store, tokens)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("⚠️  Forced shutdown: %v", err)
		}
	}()

	log.Printf("🌐 Listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
	log.Println("✅ Server stopped cleanly")
}
