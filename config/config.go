// Package config loads process settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/provider"
)

// EnvironmentProduction disables development only credential overrides.
const EnvironmentProduction = "production"

// Settings holds all configuration for the hub.
type Settings struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"` // json or text

	// Catalog
	DatabasePath   string        `env:"DATABASE_PATH" envDefault:"agenthub.db"`
	RedisURL       string        `env:"REDIS_URL"`
	ConfigCacheTTL time.Duration `env:"CONFIG_CACHE_TTL" envDefault:"1h"`

	// Knowledge retrieval; empty disables the vector store client.
	VectorStoreURL     string        `env:"VECTOR_STORE_URL"`
	VectorStoreTimeout time.Duration `env:"VECTOR_STORE_TIMEOUT" envDefault:"10s"`

	// Credentials
	FernetKeys      []string `env:"FERNET_KEY" envSeparator:","`
	DisableAuth     bool     `env:"DISABLE_AUTH" envDefault:"false"`
	TestBearerToken string   `env:"TEST_BEARER_TOKEN"`

	// Providers
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterReferer string `env:"OPENROUTER_REFERER" envDefault:"https://agenthub.local"`
	OpenRouterTitle   string `env:"OPENROUTER_TITLE" envDefault:"AgentHub"`
	GeminiBaseURL     string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	MaxTokens         int64  `env:"MODEL_MAX_TOKENS" envDefault:"4096"`

	// Pipeline limits
	RoutingModelID      string        `env:"ROUTING_MODEL_ID"`
	ModelTimeout        time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`
	ToolTimeout         time.Duration `env:"TOOL_TIMEOUT" envDefault:"30s"`
	MaxCapabilities     int           `env:"MAX_CAPABILITIES" envDefault:"5"`
	MaxParallelTools    int           `env:"MAX_PARALLEL_TOOLS" envDefault:"4"`
	MaxConcurrentRoutes int           `env:"MAX_CONCURRENT_ROUTES" envDefault:"10"`
}

// Load reads the given .env files (missing files are skipped) and parses
// the environment into Settings. Variables already set in the process
// environment win over file values.
func Load(envFiles ...string) (*Settings, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return Parse(env.Options{})
}

// Parse parses Settings with explicit env options and validates them.
func Parse(opts env.Options) (*Settings, error) {
	s := &Settings{}
	if err := env.ParseWithOptions(s, opts); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// IsProduction reports whether the hub runs in production.
func (s *Settings) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(s.Environment), EnvironmentProduction)
}

// Validate rejects inconsistent settings.
func (s *Settings) Validate() error {
	if s.IsProduction() && (s.DisableAuth || s.TestBearerToken != "") {
		return errors.New("DISABLE_AUTH and TEST_BEARER_TOKEN are not allowed in production")
	}
	if s.TestBearerToken != "" && !s.DisableAuth {
		return errors.New("TEST_BEARER_TOKEN requires DISABLE_AUTH=true")
	}
	if s.MaxCapabilities < 1 {
		return fmt.Errorf("MAX_CAPABILITIES must be positive, got %d", s.MaxCapabilities)
	}
	if s.MaxParallelTools < 0 {
		return fmt.Errorf("MAX_PARALLEL_TOOLS must not be negative, got %d", s.MaxParallelTools)
	}
	if s.MaxConcurrentRoutes < 0 {
		return fmt.Errorf("MAX_CONCURRENT_ROUTES must not be negative, got %d", s.MaxConcurrentRoutes)
	}
	return nil
}

// ProviderConfig returns the provider endpoint settings.
func (s *Settings) ProviderConfig() provider.Config {
	return provider.Config{
		OpenRouterBaseURL: s.OpenRouterBaseURL,
		OpenRouterReferer: s.OpenRouterReferer,
		OpenRouterTitle:   s.OpenRouterTitle,
		GeminiBaseURL:     s.GeminiBaseURL,
		MaxTokens:         s.MaxTokens,
	}
}

// LoggerConfig returns the logger configuration for the settings.
func (s *Settings) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLevel(s.LogLevel)
	if strings.EqualFold(s.LogFormat, "text") || strings.EqualFold(s.LogFormat, "console") {
		cfg.Format = "text"
	}
	cfg.Output = os.Stderr
	cfg.Component = "agenthub"
	return cfg
}
