package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	LogLevel          string
	DBUrl             string
	SupabaseUrl       string
	SupabaseJWTSecret string
	FrontendURL       string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitResolveThreshold int
	// Swagger UI
	SwaggerEnabled bool
	// Access guard tuning
	Guard GuardConfig
}

// GuardConfig holds the access guard timings and redirect targets.
type GuardConfig struct {
	SessionTimeout        time.Duration `env:"GUARD_SESSION_TIMEOUT" envDefault:"5s"`
	DenialCountdown       time.Duration `env:"GUARD_DENIAL_COUNTDOWN" envDefault:"3s"`
	ResolveTimeout        time.Duration `env:"GUARD_RESOLVE_TIMEOUT" envDefault:"10s"`
	EntitlementCacheTTL   time.Duration `env:"GUARD_ENTITLEMENT_CACHE_TTL" envDefault:"60s"`
	DeniedRedirect        string        `env:"GUARD_DENIED_REDIRECT" envDefault:"/pricing"`
	PaymentFailedRedirect string        `env:"GUARD_PAYMENT_FAILED_REDIRECT" envDefault:"/account"`
}

func LoadConfig() (*Config, error) {
	// Load .env file (only present locally; ignored in production when missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),
		DBUrl:    getEnv("DATABASE_URL", ""),
		// Strip trailing slash to avoid double slashes (e.g. .co//auth)
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitResolveThreshold: getEnvInt("RATE_LIMIT_RESOLVE_THRESHOLD", 120),
		SwaggerEnabled:            getEnvBool("SWAGGER_ENABLED", true),
	}

	if err := env.Parse(&cfg.Guard); err != nil {
		return nil, fmt.Errorf("parse guard config: %w", err)
	}
	if err := cfg.Guard.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Entitlement checks will not be cached.")
	}
	if cfg.SupabaseJWTSecret == "" && cfg.SupabaseUrl == "" {
		log.Println("WARNING: neither SUPABASE_JWT_SECRET nor SUPABASE_URL is set. Every session will resolve as logged out.")
	}

	return cfg, nil
}

// Validate rejects timings and redirect targets the guard cannot work with.
func (g GuardConfig) Validate() error {
	if g.SessionTimeout <= 0 {
		return fmt.Errorf("GUARD_SESSION_TIMEOUT must be positive, got %s", g.SessionTimeout)
	}
	if g.DenialCountdown < 0 {
		return fmt.Errorf("GUARD_DENIAL_COUNTDOWN must not be negative, got %s", g.DenialCountdown)
	}
	if g.ResolveTimeout < g.SessionTimeout {
		return fmt.Errorf("GUARD_RESOLVE_TIMEOUT (%s) must be at least GUARD_SESSION_TIMEOUT (%s)", g.ResolveTimeout, g.SessionTimeout)
	}
	for name, p := range map[string]string{
		"GUARD_DENIED_REDIRECT":         g.DeniedRedirect,
		"GUARD_PAYMENT_FAILED_REDIRECT": g.PaymentFailedRedirect,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must be an absolute path, got %q", name, p)
		}
	}
	return nil
}

// JWKSURL is the Supabase endpoint publishing asymmetric signing keys.
func (c *Config) JWKSURL() string {
	if c.SupabaseUrl == "" {
		return ""
	}
	return c.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
