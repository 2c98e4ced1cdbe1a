// Package config reads process-wide configuration once at startup from the
// environment, with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration. There is no hot reload; the
// process restarts to pick up changes.
type Config struct {
	Port string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	// ReceiptBucket enables GCS archiving of uploaded receipt images when
	// set. GoogleCredentials optionally points at a service account file.
	ReceiptBucket     string
	GoogleCredentials string

	// SeedFile optionally points at a JSON transaction file used by
	// /load-transactions when the request provides no records.
	SeedFile string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present; real environment variables win.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GEMINI_MODEL", "")
	v.SetDefault("GEMINI_TIMEOUT_SECONDS", 30)
	v.SetDefault("PLAID_ENV", "sandbox")

	cfg := Config{
		Port:              v.GetString("PORT"),
		GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
		GeminiModel:       v.GetString("GEMINI_MODEL"),
		GeminiTimeout:     time.Duration(v.GetInt("GEMINI_TIMEOUT_SECONDS")) * time.Second,
		PlaidClientID:     v.GetString("PLAID_CLIENT_ID"),
		PlaidSecret:       v.GetString("PLAID_SECRET"),
		PlaidEnv:          v.GetString("PLAID_ENV"),
		ReceiptBucket:     v.GetString("RECEIPT_BUCKET"),
		GoogleCredentials: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		SeedFile:          v.GetString("SEED_FILE"),
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("config: GEMINI_API_KEY is required")
	}

	return cfg, nil
}
