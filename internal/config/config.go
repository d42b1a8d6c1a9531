package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/board-insights/internal/validation"
	"github.com/joho/godotenv"
)

const (
	// DefaultCompletionBaseURL is the OpenAI-compatible endpoint used for completions
	DefaultCompletionBaseURL = "https://api.deepseek.com"
	// DefaultCompletionModel is the chat model used for completions
	DefaultCompletionModel = "deepseek-chat"
	// DefaultSummaryTable holds one compressed history row per user
	DefaultSummaryTable = "user_analysis"
)

// Session verification modes
const (
	SessionVerificationRemote = "remote"
	SessionVerificationHMAC   = "hmac"
	SessionVerificationJWKS   = "jwks"
)

// Summary store backends
const (
	SummaryStorePostgREST = "postgrest"
	SummaryStorePostgres  = "postgres"
)

// Config holds application configuration
type Config struct {
	SupabaseURL         string        `env:"SUPABASE_URL" validate:"omitempty,url"`
	SupabaseKey         string        `env:"SUPABASE_KEY"`
	SupabaseJWTSecret   string        `env:"SUPABASE_JWT_SECRET" validate:"required_if=SessionVerification hmac"`
	SessionVerification string        `env:"SESSION_VERIFICATION" validate:"oneof=remote hmac jwks"`
	SummaryStore        string        `env:"SUMMARY_STORE" validate:"oneof=postgrest postgres"`
	SummaryTable        string        `env:"SUMMARY_TABLE" validate:"required"`
	DatabaseURL         string        `env:"DATABASE_URL" validate:"required_if=SummaryStore postgres"`
	CompletionAPIKey    string        `env:"COMPLETION_API_KEY"`
	CompletionBaseURL   string        `env:"COMPLETION_BASE_URL" validate:"required,url"`
	CompletionModel     string        `env:"COMPLETION_MODEL" validate:"required"`
	AnalysisTimeout     time.Duration `env:"ANALYSIS_TIMEOUT" validate:"gt=0"`
	CompressionTimeout  time.Duration `env:"COMPRESSION_TIMEOUT" validate:"gt=0"`
	ServerPort          string        `env:"SERVER_PORT"`
	DebugMode           bool          `env:"DEBUG_MODE"`
	EnableHSTS          bool          `env:"ENABLE_HSTS"`
	OTELEnabled         bool          `env:"OTEL_ENABLED"`
	OTELEndpoint        string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// requiredForCompression lists the secrets the compressor cannot run without
var requiredForCompression = []string{"SupabaseURL", "SupabaseKey", "CompletionAPIKey"}

// requiredForAnalysis lists the secrets the analyzer cannot run without
var requiredForAnalysis = []string{"CompletionAPIKey"}

// MissingError names required environment variables that are not set
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return "Missing environment variables: " + strings.Join(e.Vars, ", ")
}

// Load loads configuration from environment variables. A .env file in the working
// directory is read first when present; real environment variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		SupabaseURL:         strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:         getEnv("SUPABASE_KEY", ""),
		SupabaseJWTSecret:   getEnv("SUPABASE_JWT_SECRET", ""),
		SessionVerification: getEnv("SESSION_VERIFICATION", SessionVerificationRemote),
		SummaryStore:        getEnv("SUMMARY_STORE", SummaryStorePostgREST),
		SummaryTable:        getEnv("SUMMARY_TABLE", DefaultSummaryTable),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CompletionAPIKey:    getEnv("COMPLETION_API_KEY", getEnv("DEEPSEEK_API_KEY", "")),
		CompletionBaseURL:   getEnv("COMPLETION_BASE_URL", DefaultCompletionBaseURL),
		CompletionModel:     getEnv("COMPLETION_MODEL", DefaultCompletionModel),
		AnalysisTimeout:     getEnvDuration("ANALYSIS_TIMEOUT", 30*time.Second),
		CompressionTimeout:  getEnvDuration("COMPRESSION_TIMEOUT", 120*time.Second),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		DebugMode:           getEnvBool("DEBUG_MODE", false),
		EnableHSTS:          getEnvBool("ENABLE_HSTS", false),
		OTELEnabled:         getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := validation.Validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w",
			strings.Join(validation.FailedFields(err), ", "), err)
	}

	return cfg, nil
}

// RequireCompression reports the secrets missing for the compression handler
func (c *Config) RequireCompression() error {
	return c.require(requiredForCompression)
}

// RequireAnalysis reports the secrets missing for the analysis handler
func (c *Config) RequireAnalysis() error {
	return c.require(requiredForAnalysis)
}

func (c *Config) require(fields []string) error {
	type secrets struct {
		SupabaseURL      string `env:"SUPABASE_URL" validate:"required"`
		SupabaseKey      string `env:"SUPABASE_KEY" validate:"required"`
		CompletionAPIKey string `env:"COMPLETION_API_KEY" validate:"required"`
	}
	s := secrets{
		SupabaseURL:      c.SupabaseURL,
		SupabaseKey:      c.SupabaseKey,
		CompletionAPIKey: c.CompletionAPIKey,
	}
	if err := validation.Validate.StructPartial(s, fields...); err != nil {
		return &MissingError{Vars: validation.FailedFields(err)}
	}
	return nil
}

// JWKSURL returns the auth service's public signing keys endpoint
func (c *Config) JWKSURL() string {
	return c.SupabaseURL + "/auth/v1/.well-known/jwks.json"
}

// AuthIssuer returns the issuer claim carried by session access tokens
func (c *Config) AuthIssuer() string {
	return c.SupabaseURL + "/auth/v1"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
