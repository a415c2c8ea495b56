// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, slot storage, the upstream catalog, the
// simulated seller responder, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// StorageConfig selects and configures the slot backend.
type StorageConfig struct {
	Backend        string        // STORAGE_BACKEND: sqlite|redis|memory
	DBPath         string        // DB_PATH (sqlite)
	RedisAddr      string        // REDIS_ADDR
	RedisPassword  string        // REDIS_PASSWORD
	RedisDB        int           // REDIS_DB
	RedisTTL       time.Duration // REDIS_SLOT_TTL, 0 keeps slots forever
	MemoryMaxBytes int           // MEMORY_MAX_BYTES, 0 means unlimited
}

// CatalogConfig points at the upstream product API.
type CatalogConfig struct {
	BaseURL         string        // CATALOG_BASE_URL; empty disables the catalog
	Timeout         time.Duration // CATALOG_TIMEOUT
	RefreshInterval time.Duration // CATALOG_REFRESH_INTERVAL, 0 refreshes only at startup
}

// ChatConfig tunes the chat store and the simulated seller.
type ChatConfig struct {
	AutoReply       bool          // AUTO_REPLY
	ReplyDelay      time.Duration // REPLY_DELAY
	RepliesFile     string        // REPLY_TEMPLATES_FILE (TOML)
	MaxMessageRunes int           // MAX_MESSAGE_RUNES, 0 disables the limit
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "marketplace-state")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	Storage    StorageConfig
	Catalog    CatalogConfig
	Chat       ChatConfig
	SessionTTL time.Duration // idle sessions are dropped from memory after this

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		Storage: StorageConfig{
			Backend:        strings.ToLower(getenv("STORAGE_BACKEND", "sqlite")),
			DBPath:         getenv("DB_PATH", "app.db"),
			RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  getenv("REDIS_PASSWORD", ""),
			RedisDB:        getint("REDIS_DB", 0),
			RedisTTL:       getdur("REDIS_SLOT_TTL", 0),
			MemoryMaxBytes: getint("MEMORY_MAX_BYTES", 0),
		},
		Catalog: CatalogConfig{
			BaseURL:         getenv("CATALOG_BASE_URL", ""),
			Timeout:         getdur("CATALOG_TIMEOUT", 10*time.Second),
			RefreshInterval: getdur("CATALOG_REFRESH_INTERVAL", 0),
		},
		Chat: ChatConfig{
			AutoReply:       getbool("AUTO_REPLY", true),
			ReplyDelay:      getdur("REPLY_DELAY", 1500*time.Millisecond),
			RepliesFile:     getenv("REPLY_TEMPLATES_FILE", ""),
			MaxMessageRunes: getint("MAX_MESSAGE_RUNES", 2000),
		},
		SessionTTL: getdur("SESSION_TTL", 30*time.Minute),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "marketplace-state"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.Storage.Backend {
	case "sqlite":
		if strings.TrimSpace(cfg.Storage.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "redis":
		if strings.TrimSpace(cfg.Storage.RedisAddr) == "" {
			return cfg, errors.New("REDIS_ADDR must not be empty")
		}
	case "memory":
	default:
		return cfg, errors.New("STORAGE_BACKEND must be one of: sqlite, redis, memory")
	}
	if cfg.Storage.RedisDB < 0 || cfg.Storage.RedisTTL < 0 || cfg.Storage.MemoryMaxBytes < 0 {
		return cfg, errors.New("REDIS_DB, REDIS_SLOT_TTL and MEMORY_MAX_BYTES must be >= 0")
	}
	if cfg.Catalog.BaseURL != "" && !strings.HasPrefix(cfg.Catalog.BaseURL, "http://") && !strings.HasPrefix(cfg.Catalog.BaseURL, "https://") {
		return cfg, errors.New("CATALOG_BASE_URL must be an http(s) URL")
	}
	if cfg.Catalog.Timeout <= 0 {
		return cfg, errors.New("CATALOG_TIMEOUT must be > 0")
	}
	if cfg.Catalog.RefreshInterval < 0 {
		return cfg, errors.New("CATALOG_REFRESH_INTERVAL must be >= 0")
	}
	if cfg.Chat.ReplyDelay < 0 {
		return cfg, errors.New("REPLY_DELAY must be >= 0")
	}
	if cfg.Chat.MaxMessageRunes < 0 {
		return cfg, errors.New("MAX_MESSAGE_RUNES must be >= 0")
	}
	if cfg.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	// if cfg.APIBasePath == "" || cfg.APIBasePath[0] != '/' {
	// 	return cfg, errors.New("API_BASE_PATH must start with '/'")
	// }

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
