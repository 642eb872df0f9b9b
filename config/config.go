package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	APIURL      string // Tarabaho REST API base URL
	FrontendURL string
	DBUrl       string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Sessions
	SessionTTL   time.Duration
	SessionFile  string // CLI only; empty means the user config dir
	CookieSecure bool
	// Outbound HTTP
	HTTPTimeout time.Duration
	// Avatar re-encoding
	AvatarMaxDimension int
	AvatarJPEGQuality  int
	// Rate Limiting Configuration
	RateLimitWindowSeconds  int
	RateLimitLoginThreshold int
	LogLevel                string
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production injects env directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		APIURL:                  strings.TrimRight(getEnv("TARABAHO_API_URL", "http://localhost:8080"), "/"),
		FrontendURL:             strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		DBUrl:                   getEnv("DATABASE_URL", ""),
		UpstashRedisURL:         getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword:    getEnv("UPSTASH_REDIS_PASSWORD", ""),
		SessionTTL:              time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		SessionFile:             getEnv("SESSION_FILE", ""),
		CookieSecure:            getEnvBool("COOKIE_SECURE", true),
		HTTPTimeout:             time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		AvatarMaxDimension:      getEnvInt("AVATAR_MAX_DIMENSION", 512),
		AvatarJPEGQuality:       getEnvInt("AVATAR_JPEG_QUALITY", 85),
		RateLimitWindowSeconds:  getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60), // 1 minute window
		RateLimitLoginThreshold: getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
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
