package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server        ServerConfig
	Transcription TranscriptionConfig
	Google        GoogleConfig
	Library       LibraryConfig
	Features      FeatureConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// TranscriptionConfig holds the remote transcription webhook settings.
type TranscriptionConfig struct {
	WebhookURL string
	// RequestTimeoutSec bounds the transcription POST. 0 means no client
	// timeout; large recordings may legitimately take many minutes.
	RequestTimeoutSec int
	Language          string
}

// GoogleConfig holds Google Sheets/Drive settings.
type GoogleConfig struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	CacheTTLSec        int
}

// LibraryConfig holds the recording library settings.
type LibraryConfig struct {
	Categories       []string
	DefaultCategory  string
	SupportedFormats []string // accepted upload extensions, without dot
	SizeWarningMB    int
}

// FeatureConfig holds feature toggles.
type FeatureConfig struct {
	Dashboard      bool
	Search         bool
	CategoryFilter bool
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Transcription: TranscriptionConfig{
			WebhookURL:        getEnv("TRANSCRIPTION_WEBHOOK_URL", ""),
			RequestTimeoutSec: getEnvInt("TRANSCRIPTION_TIMEOUT_SEC", 0),
			Language:          getEnv("TRANSCRIPTION_LANGUAGE", "en"),
		},
		Google: GoogleConfig{
			SpreadsheetID:      getEnv("GOOGLE_SHEETS_ID", ""),
			SheetName:          getEnv("SHEET_NAME", "Recordings"),
			ServiceAccountFile: getEnv("SERVICE_ACCOUNT_FILE", "service_account.json"),
			CacheTTLSec:        getEnvInt("GOOGLE_CACHE_TTL_SEC", 300),
		},
		Library: LibraryConfig{
			Categories:       splitTrim(getEnv("CATEGORIES", "Podcast,Audio Book,Notes,Class,Business Meeting,Random"), ","),
			DefaultCategory:  getEnv("DEFAULT_CATEGORY", "Notes"),
			SupportedFormats: splitTrim(getEnv("SUPPORTED_AUDIO_FORMATS", "wav,mp3,m4a,mp4,webm,mpeg"), ","),
			SizeWarningMB:    getEnvInt("MAX_FILE_SIZE_WARNING_MB", 100),
		},
		Features: FeatureConfig{
			Dashboard:      getEnvBool("ENABLE_DASHBOARD", true),
			Search:         getEnvBool("ENABLE_SEARCH", true),
			CategoryFilter: getEnvBool("ENABLE_CATEGORY_FILTER", true),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
