package config

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	DBDriver    string // "sqlite" or "postgres"
	SQLitePath  string
	DatabaseURL string

	JWTSecret    string
	SessionHours int
	EncryptKey   string
	LegacyKeys   []string
	FlashKey     string
	CookieSecure bool

	UploadDir   string
	CORSOrigins []string
	Debug       bool

	RedisURL         string
	MarkdownCacheTTL time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: reading .env: %v", err)
	}

	dbHost := getEnv("POSTGRES_HOST", "localhost")
	dbPort := getEnv("POSTGRES_PORT", "5432")
	dbUser := getEnv("POSTGRES_USER", "postgres")
	dbPass := getEnv("POSTGRES_PASSWORD", "postgres")
	dbName := getEnv("POSTGRES_DB", "devconnect_db")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(dbUser, dbPass),
		Host:     fmt.Sprintf("%s:%s", dbHost, dbPort),
		Path:     dbName,
		RawQuery: "sslmode=disable",
	}

	cfg := &Config{
		AppName: getEnv("APP_NAME", "devconnect"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 8000),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		SQLitePath:  getEnv("SQLITE_PATH", "devconnect.db"),
		DatabaseURL: getEnv("DATABASE_URL", u.String()),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionHours: getEnvAsInt("SESSION_HOURS", 24*7),
		EncryptKey:   os.Getenv("ENCRYPTION_KEY"),
		LegacyKeys:   getEnvAsList("LEGACY_ENCRYPTION_KEYS"),
		FlashKey:     os.Getenv("FLASH_KEY"),
		CookieSecure: getEnvAsBool("COOKIE_SECURE", false),

		UploadDir: getEnv("UPLOAD_DIR", "static/uploads"),
		Debug:     getEnvAsBool("DEBUG", true),

		RedisURL:         os.Getenv("REDIS_URL"),
		MarkdownCacheTTL: time.Duration(getEnvAsInt("MARKDOWN_CACHE_TTL_MINUTES", 60)) * time.Minute,
	}

	cfg.CORSOrigins = getEnvAsList("CORS_ORIGINS")
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.FlashKey == "" {
		cfg.FlashKey = deriveKey(cfg.JWTSecret)
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.EncryptKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}

// deriveKey turns a secret into a base64 encoded 32-byte key.
func deriveKey(secret string) string {
	sum := sha256.Sum256([]byte("flash:" + secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvAsList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
