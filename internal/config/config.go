package config

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                   string
	LogLevel              slog.Level
	MongoURI              string
	MongoDB               string
	MongoTimeoutSec       int
	ServerAddr            string
	FrontendOrigin        string
	RateLimitBookingRPS   float64
	RateLimitBookingBurst int
	RedisURL              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	CacheTTLSeconds       int
	AdminAPIKey           string
	AdminUser             string
	AdminPassword         string
	AdminPasswordHash     string
	JWTSecret             string
	AccessTTLMinutes      int
	RefreshTTLMinutes     int
	CookieSecure          bool
	KafkaBrokers          []string
	KafkaTopic            string
	ListLimit             int64
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Load reads the process environment. A .env file in the working directory
// fills in keys that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/workshop")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "workshop"
	}

	listLimit := int64(getEnvInt("LIST_LIMIT", 100))
	if listLimit <= 0 || listLimit > 100 {
		listLimit = 100
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		LogLevel:              parseLevel(getEnv("LOG_LEVEL", "info")),
		MongoURI:              mongoURI,
		MongoDB:               mongoDB,
		MongoTimeoutSec:       getEnvInt("MONGO_TIMEOUT_SEC", 10),
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigin:        getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		RateLimitBookingRPS:   getEnvFloat("RATE_LIMIT_BOOKING_RPS", 0.5),
		RateLimitBookingBurst: getEnvInt("RATE_LIMIT_BOOKING_BURST", 5),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:       getEnvInt("CACHE_TTL_SECONDS", 30),
		AdminAPIKey:           getEnv("ADMIN_API_KEY", ""),
		AdminUser:             getEnv("ADMIN_USER", "admin"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash:     getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:      getEnvInt("ACCESS_TTL_MINUTES", 15),
		RefreshTTLMinutes:     getEnvInt("REFRESH_TTL_MINUTES", 43200),
		CookieSecure:          getEnv("COOKIE_SECURE", "false") == "true",
		KafkaBrokers:          splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "workshop.appointments"),
		ListLimit:             listLimit,
	}

	return cfg, nil
}

// AdminAuthEnabled reports whether any admin credential is configured.
func (c *Config) AdminAuthEnabled() bool {
	return c.AdminAPIKey != "" || c.JWTSecret != ""
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(raw)))); err != nil {
		return slog.LevelInfo
	}
	return level
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
