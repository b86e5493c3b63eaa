package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"notary-dash/internal/enrich"
	"notary-dash/internal/eventlog"
	"notary-dash/internal/stats"
	"notary-dash/internal/supabase"
)

// Backend names the upstream the board is read from.
type Backend string

const (
	BackendNone     Backend = "none"
	BackendPostgres Backend = "postgres"
	BackendSupabase Backend = "supabase"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Supabase    supabase.Config
	DatabaseURL string
	HTTPAddr    string

	PageSize    int
	ChunkSize   int
	Concurrency int
	Stats       stats.Config

	RedisURL   string
	CacheTTL   time.Duration
	CacheGrace time.Duration

	DataPath string
	LogDir   string
	CacheDir string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	cfg := FromEnv(exeDir)

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cfg.CacheDir).Msg("Failed to create cache directory")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds the configuration from the process environment only.
func FromEnv(exeDir string) *AppConfig {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	sc := stats.DefaultConfig()
	sc.EntryListIDs = getEnvList("ENTRY_LIST_IDS", nil)
	sc.EntryListMarkers = getEnvList("ENTRY_LIST_MARKERS", sc.EntryListMarkers)
	sc.ConcludedMarker = getEnv("CONCLUDED_MARKER", sc.ConcludedMarker)

	return &AppConfig{
		Supabase: supabase.Config{
			URL:        getEnv("SUPABASE_URL", ""),
			ServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Timeout:    time.Duration(getEnvInt("SUPABASE_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		PageSize:    getEnvInt("EVENT_PAGE_SIZE", eventlog.DefaultPageSize),
		ChunkSize:   getEnvInt("ENRICH_CHUNK_SIZE", enrich.DefaultChunkSize),
		Concurrency: getEnvInt("ENRICH_CONCURRENCY", enrich.DefaultConcurrency),
		Stats:       sc,
		RedisURL:    getEnv("REDIS_URL", ""),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_SECONDS", 0)) * time.Second,
		CacheGrace:  time.Duration(getEnvInt("CACHE_GRACE_SECONDS", 86400)) * time.Second,
		DataPath:    dataPath,
		LogDir:      filepath.Join(dataPath, "logs"),
		CacheDir:    filepath.Join(dataPath, "cache"),
	}
}

// Backend reports which upstream the configuration selects. DATABASE_URL wins over Supabase.
func (c *AppConfig) Backend() Backend {
	switch {
	case c.DatabaseURL != "":
		return BackendPostgres
	case c.Supabase.URL != "" && c.Supabase.ServiceKey != "":
		return BackendSupabase
	default:
		return BackendNone
	}
}

// Validate reports settings that can never produce a working dashboard.
// A missing backend is not an error: the server still starts and answers 503.
func (c *AppConfig) Validate() error {
	var errs []error
	if (c.Supabase.URL == "") != (c.Supabase.ServiceKey == "") {
		errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set together"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("EVENT_PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("ENRICH_CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("ENRICH_CONCURRENCY must be positive, got %d", c.Concurrency))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL_SECONDS must not be negative, got %s", c.CacheTTL))
	}
	if c.CacheGrace < 0 {
		errs = append(errs, fmt.Errorf("CACHE_GRACE_SECONDS must not be negative, got %s", c.CacheGrace))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
