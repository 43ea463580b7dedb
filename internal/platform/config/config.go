package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	JWTIssuer          string
	TokenTTL           time.Duration
	CORSAllowedOrigin  string
	PhotoRoot          string
	DocumentRoot       string
	CurrencyLocale     string
	DataEncryptionKey  string
	Environment        string
	SeedAdminEmail     string
	SeedAdminPassword  string
	SeedAdminName      string
	RunMigrations      bool
	RunSeed            bool
	MaxBodyBytes       int64
	MaxUploadBytes     int64
	RateLimitPerMinute int
	MetricsEnabled     bool
	LogLevel           string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv load failed", "err", err)
	}
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "ems"),
		TokenTTL:           getEnvDuration("JWT_TTL", 8*time.Hour),
		CORSAllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		PhotoRoot:          getEnv("PHOTO_ROOT", "uploads"),
		DocumentRoot:       getEnv("DOCUMENT_ROOT", "Uploads"),
		CurrencyLocale:     getEnv("CURRENCY_LOCALE", "en-US"),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:        getEnv("APP_ENV", "development"),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedAdminName:      getEnv("SEED_ADMIN_NAME", "Administrator"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 5*1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

// PayslipDir is the folder generated payslips are written to.
func (c Config) PayslipDir() string {
	return filepath.Join(c.DocumentRoot, "Payslips")
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// EnsureDirectories creates the photo and document roots if they are absent.
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{c.PhotoRoot, c.PayslipDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.IsProduction() && c.RunSeed && strings.TrimSpace(c.SeedAdminEmail) != "" && len(c.SeedAdminPassword) < 12 {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be at least 12 characters in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if strings.TrimSpace(c.DocumentRoot) == "" {
		return fmt.Errorf("DOCUMENT_ROOT is required")
	}
	if strings.TrimSpace(c.PhotoRoot) == "" {
		return fmt.Errorf("PHOTO_ROOT is required")
	}
	if _, err := language.Parse(c.CurrencyLocale); err != nil {
		return fmt.Errorf("CURRENCY_LOCALE %q is not a valid language tag", c.CurrencyLocale)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be smaller than MAX_BODY_BYTES")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
