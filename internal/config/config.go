// Package config reads the agent's runtime settings from the environment.
//
// Load is called once at startup; the resulting Config is passed by value into
// the provider and the tool constructors. Nothing re-reads the environment
// after that.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 1024
	defaultMaxTurns    = 8
	defaultRAGIndexDir = "rag/index"
	defaultSerperURL   = "https://google.serper.dev/search"
	defaultWebTimeout  = 20 * time.Second
	defaultArtifacts   = ".agent"
)

var ErrMissingModel = errors.New("model not configured")

// Config holds every setting the CLI needs to wire a run.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	MaxTurns    int

	RAGIndexDir  string
	SerperAPIKey string
	SerperURL    string
	WebTimeout   time.Duration

	ObserveJSON  bool
	ArtifactsDir string
	LogLevel     slog.Level
}

// LoadDotEnv loads the given files (default ".env") into the process
// environment. Variables that are already set are left alone. Missing files
// are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates it.
func Load() (Config, error) {
	cfg := Config{
		Provider:     ProviderOpenAI,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
		MaxTurns:     defaultMaxTurns,
		RAGIndexDir:  defaultRAGIndexDir,
		SerperURL:    defaultSerperURL,
		WebTimeout:   defaultWebTimeout,
		ArtifactsDir: defaultArtifacts,
		LogLevel:     slog.LevelInfo,
	}

	if v := os.Getenv("AGT_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	switch cfg.Provider {
	case ProviderAnthropic:
		cfg.Model = os.Getenv("ANTHROPIC_MODEL")
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		cfg.BaseURL = os.Getenv("ANTHROPIC_BASE_URL")
	default:
		cfg.Model = os.Getenv("OPENAI_MODEL")
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if v := os.Getenv("AGT_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse AGT_TEMPERATURE: %w", err)
		}
		cfg.Temperature = f
	}
	if err := positiveInt("ANTHROPIC_MAX_TOKENS", &cfg.MaxTokens); err != nil {
		return Config{}, err
	}
	if err := positiveInt("AGT_MAX_TURNS", &cfg.MaxTurns); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("RAG_INDEX_DIR"); v != "" {
		cfg.RAGIndexDir = v
	}
	cfg.SerperAPIKey = os.Getenv("SERPER_API_KEY")
	if v := os.Getenv("SERPER_URL"); v != "" {
		cfg.SerperURL = v
	}
	if v := os.Getenv("AGT_WEB_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse AGT_WEB_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("parse AGT_WEB_TIMEOUT: value must be > 0")
		}
		cfg.WebTimeout = d
	}

	cfg.ObserveJSON = os.Getenv("AGT_OBSERVE_JSON") == "1"
	if v := os.Getenv("AGT_ARTIFACTS_DIR"); v != "" {
		cfg.ArtifactsDir = v
	}
	if v := os.Getenv("AGT_LOG_LEVEL"); v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = lvl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that would make a run impossible.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("AGT_PROVIDER %q: want %s or %s", c.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: set %s_MODEL", ErrMissingModel, strings.ToUpper(c.Provider))
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be > 0, got %d", c.MaxTurns)
	}
	return nil
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse AGT_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func positiveInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if n <= 0 {
		return fmt.Errorf("parse %s: value must be > 0", name)
	}
	*dst = n
	return nil
}
