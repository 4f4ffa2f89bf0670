package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Env      string
	Port     string
	LogLevel string

	// DBURL is the service endpoint of the hosted database.
	DBURL string
	// APIKey is the public key the dashboard sends in the apikey header.
	APIKey string

	RedisAddress      string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisMaxRetries   int

	SymmetricKey   string
	PublicBaseURL  string
	AllowedOrigins []string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	GoogleClientID     string
	GoogleClientSecret string

	RealtimeTriggers bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// Timezone names the zone dates are shown in.
	Timezone string
}

// GetAPIKey returns the public API key from the config
func (c *AppConfig) GetAPIKey() string {
	return c.APIKey
}

// IsDevelopment reports whether the service runs in a local development setup.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "local"
}

// OAuthEnabled reports whether Google sign-in is configured.
func (c *AppConfig) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// Load reads the configuration from the environment, loading a .env file first
// when one exists. The endpoint URL and the public API key are mandatory.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Relying on environment variables.")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment.
func FromEnv() (*AppConfig, error) {
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return nil, errors.New("DB_URL is not configured. Please set this environment variable")
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return nil, errors.New("API_KEY is not configured. Please set this environment variable")
	}

	redisAddress := os.Getenv("REDIS_URL")
	if redisAddress == "" {
		return nil, errors.New("missing REDIS_URL environment variable")
	}

	symmetricKey := os.Getenv("SYMMETRIC_KEY")
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long. Current length: %d", len(symmetricKey))
	}

	port := envOr("PORT", "8930")

	return &AppConfig{
		Env:      os.Getenv("ENV"),
		Port:     port,
		LogLevel: envOr("LOG_LEVEL", "info"),

		DBURL:  dbURL,
		APIKey: apiKey,

		RedisAddress:      redisAddress,
		RedisPoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
		RedisMinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		RedisDialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 30*time.Second),
		RedisReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 10*time.Second),
		RedisMaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),

		SymmetricKey:   symmetricKey,
		PublicBaseURL:  strings.TrimRight(envOr("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		AllowedOrigins: splitList(envOr("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvAsInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		RealtimeTriggers: getEnvAsBool("REALTIME_TRIGGERS", false),
		RateLimitRPS:     getEnvAsFloat("RATE_LIMIT_RPS", 15),
		RateLimitBurst:   getEnvAsInt("RATE_LIMIT_BURST", 30),

		Timezone: envOr("TIMEZONE", "Europe/Madrid"),
	}, nil
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsInt(name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s, using default: %d", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(name); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: Invalid number value for %s, using default: %g", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(name); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: Invalid boolean value for %s, using default: %t", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(name); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
		log.Printf("Warning: Invalid duration value for %s, using default: %s", name, defaultValue.String())
	}
	return defaultValue
}
