package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RecommendCacheTTL time.Duration

	RecommenderURL     string
	RecommenderTimeout time.Duration

	GeminiAPIKey string
	GeminiModel  string

	CORSOrigins []string

	OtelEnabled  bool
	OtelEndpoint string
	OtelInsecure bool

	LogHashSalt string
}

// Load reads .env (if present) and then the process environment.
// The returned bool reports whether a .env file was loaded.
func Load() (*Config, bool) {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		Port:   getEnvString("PORT", "8080"),
		AppEnv: getEnvString("APP_ENV", "development"),

		DatabaseURL: getEnvString("DATABASE_URL",
			"host=localhost user=postgres password=password dbname=jobboard port=5432 sslmode=disable"),

		JWTSecret: getEnvString("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:         getEnvString("REDIS_ADDR", ""),
		RedisPassword:     getEnvString("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RecommendCacheTTL: getEnvDuration("RECOMMEND_CACHE_TTL", 10*time.Minute),

		RecommenderURL:     getEnvString("RECOMMENDER_URL", ""),
		RecommenderTimeout: getEnvDuration("RECOMMENDER_TIMEOUT", 8*time.Second),

		GeminiAPIKey: getEnvString("GEMINI_API_KEY", ""),
		GeminiModel:  getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		OtelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint: getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),

		LogHashSalt: getEnvString("LOG_HASH_SALT", ""),
	}
	return cfg, loaded
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
