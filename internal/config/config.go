package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Portal settings
	PortalBaseURL string
	UserAgent     string

	// Browser settings
	HeadlessMode   bool
	BrowserPath    string
	ScraperTimeout time.Duration

	// Town selection
	AllowedTowns []string

	// Party handling
	MaxPartiesPerCase int

	// Geocoding
	GeocodeEnabled   bool
	GeocodeCachePath string
	GeocodeUserAgent string

	// Document download
	DocumentDir       string
	DownloadTimeout   time.Duration
	DownloadStableFor time.Duration
	DownloadLimit     int

	// Extraction ledger
	LedgerDir string

	// Inference service
	InferenceAPIURL          string
	InferenceAPIKey          string
	InferenceModel           string
	InferenceRateLimitPerMin int
	RenderDPI                int

	// Audit output
	AuditCSVPath string

	// Email digest
	EmailProvider string
	EmailFrom     string
	ResendAPIKey  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:             getEnv("HOST", "0.0.0.0"),
		Port:             getEnv("PORT", "8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/ct_cases.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		PortalBaseURL:    getEnv("PORTAL_BASE_URL", "https://civilinquiry.jud.ct.gov"),
		UserAgent:        getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		BrowserPath:      getEnv("ROD_BROWSER_PATH", ""),
		GeocodeCachePath: getEnv("GEOCODE_CACHE_PATH", "./data/geocode_cache.json"),
		GeocodeUserAgent: getEnv("GEOCODE_USER_AGENT", "ct-harvester-service"),
		DocumentDir:      getEnv("DOCUMENT_DIR", "./data/summons/pdfs"),
		LedgerDir:        getEnv("LEDGER_DIR", "./data/summons/parties_pages"),
		InferenceAPIURL:  getEnv("INFERENCE_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		InferenceAPIKey:  getEnv("INFERENCE_API_KEY", ""),
		InferenceModel:   getEnv("INFERENCE_MODEL", "google/gemini-flash-1.5"),
		AuditCSVPath:     getEnv("AUDIT_CSV_PATH", ""),
		EmailProvider:    getEnv("EMAIL_PROVIDER", "none"),
		EmailFrom:        getEnv("EMAIL_FROM", "leads@example.com"),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
	}

	cfg.AllowedTowns = splitCSV(getEnv("ALLOWED_TOWNS", ""))

	var err error
	cfg.MaxPartiesPerCase, err = strconv.Atoi(getEnv("MAX_PARTIES_PER_CASE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PARTIES_PER_CASE: %w", err)
	}

	scraperTimeout, err := strconv.Atoi(getEnv("SCRAPER_TIMEOUT", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPER_TIMEOUT: %w", err)
	}
	cfg.ScraperTimeout = time.Duration(scraperTimeout) * time.Second

	cfg.HeadlessMode = getEnv("HEADLESS_MODE", "true") == "true"
	cfg.GeocodeEnabled = getEnv("GEOCODE_ENABLED", "true") == "true"

	downloadTimeout, err := strconv.Atoi(getEnv("DOWNLOAD_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TIMEOUT: %w", err)
	}
	cfg.DownloadTimeout = time.Duration(downloadTimeout) * time.Second

	downloadStable, err := strconv.Atoi(getEnv("DOWNLOAD_STABLE_SEC", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_STABLE_SEC: %w", err)
	}
	cfg.DownloadStableFor = time.Duration(downloadStable) * time.Second

	cfg.DownloadLimit, err = strconv.Atoi(getEnv("DOWNLOAD_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_LIMIT: %w", err)
	}

	cfg.InferenceRateLimitPerMin, err = strconv.Atoi(getEnv("INFERENCE_RATE_LIMIT_PER_MIN", "45"))
	if err != nil {
		return nil, fmt.Errorf("invalid INFERENCE_RATE_LIMIT_PER_MIN: %w", err)
	}

	cfg.RenderDPI, err = strconv.Atoi(getEnv("RENDER_DPI", "220"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDER_DPI: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
