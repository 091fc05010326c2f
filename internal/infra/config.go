package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	ScraperBaseURL     string
	ProvisionerBaseURL string
	VoiceBaseURL       string

	SearchConsoleBaseURL string
	IndexingBaseURL      string
	OAuthTokenURL        string
	OAuthClientID        string
	OAuthClientSecret    string

	LocalRepoRoot string
	StoragePath   string
	GeoIPDBPath   string
	DefaultLocale string

	ProvisionTimeout time.Duration
	VoiceTimeout     time.Duration
	BuildConcurrency int

	CORSAllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		ScraperBaseURL:     os.Getenv("SCRAPER_BASE_URL"),
		ProvisionerBaseURL: os.Getenv("PROVISIONER_BASE_URL"),
		VoiceBaseURL:       os.Getenv("VOICE_BASE_URL"),

		SearchConsoleBaseURL: getEnv("SEARCH_CONSOLE_BASE_URL", "https://www.googleapis.com/webmasters/v3"),
		IndexingBaseURL:      getEnv("INDEXING_BASE_URL", "https://indexing.googleapis.com/v3"),
		OAuthTokenURL:        getEnv("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		OAuthClientID:        os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret:    os.Getenv("OAUTH_CLIENT_SECRET"),

		LocalRepoRoot: getEnv("LOCAL_REPO_ROOT", "./repos"),
		StoragePath:   getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		ProvisionTimeout: time.Second * time.Duration(getEnvInt("PROVISION_TIMEOUT_SECONDS", 180)),
		VoiceTimeout:     time.Second * time.Duration(getEnvInt("VOICE_TIMEOUT_SECONDS", 60)),
		BuildConcurrency: getEnvInt("BUILD_CONCURRENCY", 4),

		CORSAllowedOrigins: splitEnv("CORS_ALLOWED_ORIGINS"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.BuildConcurrency < 1 {
		cfg.BuildConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
