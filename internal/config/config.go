package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	PublicBaseURL        string
	DatabaseURL          string
	JWTSecret            string
	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration
	GoogleAudience       string
	AllowOrigins         []string
	LogstashTCPAddr      string
	ServiceName          string
	SwaggerSpecPath      string

	GeminiAPIKey          string
	GeminiModel           string
	GeminiBaseURL         string
	GeminiTemperature     float64
	GeminiMaxOutputTokens int
	GeminiTimeout         time.Duration
	GeminiMaxRetries      int
	GeminiRetryBackoff    time.Duration
	GenerationTimeout     time.Duration

	NominatimBaseURL   string
	NominatimUserAgent string
	PlaceCacheTTL      time.Duration

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketExports string
	MinIOPublicURL     string

	ElasticsearchURLs  []string
	ElasticsearchIndex string
}

// Load reads the process environment, after merging a .env file when one is
// present. Only the database and JWT secret are required; the optional
// integrations are switched off when their settings are empty.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	port := getenv("PORT", "8080")
	return Config{
		Port:                 port,
		PublicBaseURL:        strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		DatabaseURL:          must("DATABASE_URL"),
		JWTSecret:            must("JWT_SECRET"),
		SessionTTL:           getDuration("SESSION_TTL", 24*time.Hour),
		SessionPurgeInterval: getDuration("SESSION_PURGE_INTERVAL", time.Hour),
		GoogleAudience:       getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:         splitAndTrim(getenv("ALLOW_ORIGINS", "*"), "*"),
		LogstashTCPAddr:      getenv("LOGSTASH_TCP_ADDR", ""),
		ServiceName:          getenv("SERVICE_NAME", "trip-planner-api"),
		SwaggerSpecPath:      getenv("SWAGGER_SPEC_PATH", "docs/swagger.yaml"),

		GeminiAPIKey:          getenv("GEMINI_API_KEY", ""),
		GeminiModel:           getenv("GEMINI_MODEL", ""),
		GeminiBaseURL:         getenv("GEMINI_BASE_URL", ""),
		GeminiTemperature:     getFloat("GEMINI_TEMPERATURE", 0),
		GeminiMaxOutputTokens: getInt("GEMINI_MAX_OUTPUT_TOKENS", 0),
		GeminiTimeout:         getDuration("GEMINI_TIMEOUT", 60*time.Second),
		GeminiMaxRetries:      getInt("GEMINI_MAX_RETRIES", 0),
		GeminiRetryBackoff:    getDuration("GEMINI_RETRY_BACKOFF", 2*time.Second),
		GenerationTimeout:     getDuration("GENERATION_TIMEOUT", 0),

		NominatimBaseURL:   getenv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getenv("NOMINATIM_USER_AGENT", "trip-planner-api/1.0"),
		PlaceCacheTTL:      getDuration("PLACE_CACHE_TTL", 10*time.Minute),

		MinIOEndpoint:      getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketExports: getenv("MINIO_BUCKET_EXPORTS", "trip-exports"),
		MinIOPublicURL:     getenv("MINIO_PUBLIC_URL", ""),

		ElasticsearchURLs:  splitAndTrim(getenv("ELASTICSEARCH_URL", ""), ""),
		ElasticsearchIndex: getenv("ELASTICSEARCH_INDEX", "trips"),
	}
}

// MinIOEnabled reports whether itinerary export has a storage backend.
func (c Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// SearchEnabled reports whether trip search has an index backend.
func (c Config) SearchEnabled() bool {
	return len(c.ElasticsearchURLs) > 0
}

// splitAndTrim splits a comma list. An empty result becomes fallback, or nil
// when fallback is empty.
func splitAndTrim(input, fallback string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		if fallback == "" {
			return nil
		}
		return []string{fallback}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed < 0 {
		log.Printf("Warning: invalid %s=%q, using %s", k, v, d)
		return d
	}
	return parsed
}

func getInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		log.Printf("Warning: invalid %s=%q, using %d", k, v, d)
		return d
	}
	return parsed
}

func getFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil || parsed < 0 {
		log.Printf("Warning: invalid %s=%q, using %g", k, v, d)
		return d
	}
	return parsed
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
