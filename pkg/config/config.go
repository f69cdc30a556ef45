package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Consensus ConsensusConfig
	Reports   ReportsConfig
	Alerts    AlertsConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	OpenAI    OpenAIConfig
	OTEL      OTELConfig
	CORS      CORSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DataConfig holds the file-backed data locations
type DataConfig struct {
	CentersFile   string
	ReportsFile   string
	EnglishCorpus string
	MalayCorpus   string
	CSVCorpus     string
	TermsFile     string
	ProcessedDir  string
	UploadDir     string
	GoldenFile    string
}

// ConsensusConfig holds the live-status consensus tuning
type ConsensusConfig struct {
	ReportTimeoutSec  int
	CriticalThreshold int
	RefreshCron       string
}

// ReportsConfig holds report-submission abuse limits
type ReportsConfig struct {
	RateLimitPerHour int
	DedupWindowSec   int
}

// AlertsConfig holds the duty-staff numbers paged when a center turns
// critical. Empty recipients disable alerting.
type AlertsConfig struct {
	Recipients []string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Data: DataConfig{
			CentersFile:   getEnv("CENTERS_FILE", "data/centers.yaml"),
			ReportsFile:   getEnv("REPORTS_FILE", "data/pps_live_status.json"),
			EnglishCorpus: getEnv("ENGLISH_CORPUS_FILE", "data/english_prompt.parquet"),
			MalayCorpus:   getEnv("MALAY_CORPUS_FILE", "data/malay_prompt.parquet"),
			CSVCorpus:     getEnv("CSV_CORPUS_FILE", ""),
			TermsFile:     getEnv("TERMS_FILE", "data/term_expansion.json"),
			ProcessedDir:  getEnv("PROCESSED_DIR", "data/processed"),
			UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
			GoldenFile:    getEnv("GOLDEN_QUERIES_FILE", "data/golden_queries.yaml"),
		},
		Consensus: ConsensusConfig{
			ReportTimeoutSec:  getEnvAsInt("REPORT_TIMEOUT_SEC", 21600),
			CriticalThreshold: getEnvAsInt("CRITICAL_CONSENSUS_THRESHOLD", 2),
			RefreshCron:       getEnv("REFRESH_CRON", "*/10 * * * *"),
		},
		Reports: ReportsConfig{
			RateLimitPerHour: getEnvAsInt("REPORT_RATE_LIMIT_PER_HOUR", 5),
			DedupWindowSec:   getEnvAsInt("REPORT_DEDUP_WINDOW_SEC", 600),
		},
		Alerts: AlertsConfig{
			Recipients: getEnvAsSlice("ALERT_RECIPIENTS", nil),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", ""),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "relief-assistant"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		},
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
