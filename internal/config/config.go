package config

import (
	"os"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	DatabaseURL string

	ListenAddr string

	// CORSOrigins is the comma-separated list of origins allowed for
	// browser clients. "*" allows any origin.
	CORSOrigins string

	// GeminiAPIKey enables LLM narrative generation. If empty, every
	// narrative request falls back to the template generator.
	GeminiAPIKey string
	GeminiModel  string

	// MaxFetchRows caps how many transactions a single analytics
	// computation may load from the store.
	MaxFetchRows int

	// ImportMaxRows caps how many rows a single uploaded file may carry.
	ImportMaxRows int

	// ExportMaxRows caps the CSV export size.
	ExportMaxRows int
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	return &Config{
		DatabaseURL:   os.Getenv("APP_DATABASE_URL"),
		ListenAddr:    getenv("APP_LISTEN_ADDR", ":8080"),
		CORSOrigins:   getenv("APP_CORS_ORIGINS", "*"),
		GeminiAPIKey:  getenv("GEMINI_API_KEY", ""),
		GeminiModel:   getenv("APP_GEMINI_MODEL", "gemini-2.5-flash"),
		MaxFetchRows:  getenvInt("APP_MAX_FETCH_ROWS", 100000),
		ImportMaxRows: getenvInt("APP_IMPORT_MAX_ROWS", 50000),
		ExportMaxRows: getenvInt("APP_EXPORT_MAX_ROWS", 5000),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
