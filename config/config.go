package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings read from the environment.
type Config struct {
	Port            string
	DatabaseURL     string
	CardsFile       string
	DrawInterval    time.Duration
	LedgerTxTimeout time.Duration
}

// Load reads .env (if present) and builds the Config.
// DATABASE_URL is the only required variable.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	cfg := Config{
		Port:            getenv("PORT", "4000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CardsFile:       getenv("CARDS_FILE", "cards.json"),
		DrawInterval:    msEnv("DRAW_INTERVAL_MS", 5000),
		LedgerTxTimeout: msEnv("LEDGER_TX_TIMEOUT_MS", 5000),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func msEnv(key string, fallback int) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallback) * time.Millisecond
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		log.Printf("[WARN] invalid %s=%q, using default %dms", key, raw, fallback)
		return time.Duration(fallback) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
