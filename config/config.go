package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Env              string
	DBDriver         string
	DBDSN            string
	UploadDir        string
	JWTSecret        string
	AuthLogin        string
	AuthPassword     string
	AllowedOrigins   string
	BodyLimitBytes   int
	RateLimitMax     int
	RateLimitWindow  time.Duration
	IdempotencyTTL   time.Duration
	CleanupAt        string
	OrderLoadTimeout time.Duration
	TicketFontPath   string
	ShopName         string
}

// Load reads the environment, after an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	driver := strings.ToLower(readString("DB_DRIVER", "sqlite"))
	dsn := os.Getenv("DB_DSN")
	if dsn == "" && driver == "sqlite" {
		dsn = readString("DB_PATH", filepath.Join("data", "dev.db"))
	}

	return Config{
		Port:             readString("PORT", "5050"),
		Env:              readString("APP_ENV", "production"),
		DBDriver:         driver,
		DBDSN:            dsn,
		UploadDir:        readString("UPLOAD_DIR", filepath.Join("data", "uploads")),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AuthLogin:        readString("AUTH_LOGIN", "admin"),
		AuthPassword:     os.Getenv("AUTH_PASSWORD"),
		AllowedOrigins:   readString("ALLOWED_ORIGINS", "*"),
		BodyLimitBytes:   readInt("BODY_LIMIT_MB", 25) * 1024 * 1024,
		RateLimitMax:     readInt("RATE_LIMIT_MAX", 300),
		RateLimitWindow:  readDurationSeconds("RATE_LIMIT_WINDOW_SECONDS", 60),
		IdempotencyTTL:   time.Duration(readInt("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
		CleanupAt:        readString("CLEANUP_AT", "03:00"),
		OrderLoadTimeout: readDurationSeconds("ORDER_LOAD_TIMEOUT_SECONDS", 8),
		TicketFontPath:   os.Getenv("TICKET_FONT_PATH"),
		ShopName:         readString("SHOP_NAME", "Auto service"),
	}
}

func (c Config) Development() bool {
	return c.Env == "development"
}

func readString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
