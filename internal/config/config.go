package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for a lexigen run.
type Config struct {
	Vocabulary VocabularyConfig `json:"vocabulary"`
	Output     OutputConfig     `json:"output"`
	LLM        LLMConfig        `json:"llm"`
	Generation GenerationConfig `json:"generation"`
	Scoring    ScoringConfig    `json:"scoring"`
	Metrics    MetricsConfig    `json:"metrics"`
	Tracing    TracingConfig    `json:"tracing"`
}

// VocabularyConfig locates the input vocabulary CSV.
type VocabularyConfig struct {
	Path string `json:"path"` // mandatory, no default
}

// OutputConfig holds the run's output and cache locations.
type OutputConfig struct {
	Dir      string `json:"dir"`       // mandatory, no default
	CacheDir string `json:"cache_dir"` // defaults to <dir>/cache
}

// LLMConfig holds the prompt-drafting LLM API configuration (vLLM/LiteLLM)
type LLMConfig struct {
	URL         string  `json:"url"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// GenerationConfig holds the image synthesis backend configuration.
type GenerationConfig struct {
	Backend     string `json:"backend"` // backend tag, e.g. "sd-webui"
	URL         string `json:"url"`
	APIKey      string `json:"api_key"`
	Images      int    `json:"images"` // artifacts generated per prompt
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Steps       int    `json:"steps"`
	Concurrency int    `json:"concurrency"` // max in-flight generation calls
}

// ScoringConfig holds the similarity scoring service configuration.
type ScoringConfig struct {
	URL    string `json:"url"`
	APIKey string `json:"api_key"`
	Model  string `json:"model"` // e.g., "ViT-B-32"
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `json:"addr"` // e.g., ":9090"; empty disables the listener
}

// TracingConfig enables stdout trace export for the run.
type TracingConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns the default configuration. The vocabulary path and
// output directory have no defaults and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			URL:         "http://localhost:8000/v1",
			APIKey:      "",
			Model:       "Qwen/Qwen3-8B-AWQ",
			MaxTokens:   256,
			Temperature: 0.7,
		},
		Generation: GenerationConfig{
			Backend:     "sd-webui",
			URL:         "http://localhost:7860",
			Images:      4,
			Width:       512,
			Height:      512,
			Steps:       30,
			Concurrency: 3,
		},
		Scoring: ScoringConfig{
			URL:   "http://localhost:8001",
			Model: "ViT-B-32",
		},
	}
}

// envString loads a string environment variable into the target pointer if set
func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// envInt loads an integer environment variable into the target pointer if set and valid
func envInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

// envFloat loads a float64 environment variable into the target pointer if set and valid
func envFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

// envBool loads a boolean environment variable into the target pointer if set and valid
func envBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

// Load loads configuration from the given JSON file and applies LEXIGEN_*
// environment overrides. When path is empty, LEXIGEN_CONFIG is consulted;
// when that is empty too, defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("LEXIGEN_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	envString("LEXIGEN_VOCABULARY_PATH", &cfg.Vocabulary.Path)
	envString("LEXIGEN_OUTPUT_DIR", &cfg.Output.Dir)
	envString("LEXIGEN_CACHE_DIR", &cfg.Output.CacheDir)

	envString("LEXIGEN_LLM_URL", &cfg.LLM.URL)
	envString("LEXIGEN_LLM_API_KEY", &cfg.LLM.APIKey)
	envString("LEXIGEN_LLM_MODEL", &cfg.LLM.Model)
	envInt("LEXIGEN_LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)
	envFloat("LEXIGEN_LLM_TEMPERATURE", &cfg.LLM.Temperature)

	envString("LEXIGEN_GENERATION_BACKEND", &cfg.Generation.Backend)
	envString("LEXIGEN_GENERATION_URL", &cfg.Generation.URL)
	envString("LEXIGEN_GENERATION_API_KEY", &cfg.Generation.APIKey)
	envInt("LEXIGEN_GENERATION_IMAGES", &cfg.Generation.Images)
	envInt("LEXIGEN_GENERATION_WIDTH", &cfg.Generation.Width)
	envInt("LEXIGEN_GENERATION_HEIGHT", &cfg.Generation.Height)
	envInt("LEXIGEN_GENERATION_STEPS", &cfg.Generation.Steps)
	envInt("LEXIGEN_GENERATION_CONCURRENCY", &cfg.Generation.Concurrency)

	envString("LEXIGEN_SCORING_URL", &cfg.Scoring.URL)
	envString("LEXIGEN_SCORING_API_KEY", &cfg.Scoring.APIKey)
	envString("LEXIGEN_SCORING_MODEL", &cfg.Scoring.Model)

	envString("LEXIGEN_METRICS_ADDR", &cfg.Metrics.Addr)
	envBool("LEXIGEN_TRACING_ENABLED", &cfg.Tracing.Enabled)

	if cfg.Output.CacheDir == "" && cfg.Output.Dir != "" {
		cfg.Output.CacheDir = filepath.Join(cfg.Output.Dir, "cache")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isValidURL validates that a URL has proper format
func isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	var errs []string

	if c.Vocabulary.Path == "" {
		errs = append(errs, "vocabulary path is required")
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output dir is required")
	}

	if c.LLM.URL == "" {
		errs = append(errs, "LLM URL is required")
	} else if !isValidURL(c.LLM.URL) {
		errs = append(errs, "LLM URL must be a valid URL")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "LLM temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 1 {
		errs = append(errs, "LLM max_tokens must be positive")
	}

	if c.Generation.Backend == "" {
		errs = append(errs, "generation backend is required")
	}
	if c.Generation.URL == "" {
		errs = append(errs, "generation URL is required")
	} else if !isValidURL(c.Generation.URL) {
		errs = append(errs, "generation URL must be a valid URL")
	}
	if c.Generation.Images < 1 {
		errs = append(errs, "generation images must be at least 1")
	}
	if c.Generation.Width < 1 || c.Generation.Height < 1 {
		errs = append(errs, "generation width and height must be positive")
	}
	if c.Generation.Steps < 1 {
		errs = append(errs, "generation steps must be positive")
	}
	if c.Generation.Concurrency < 1 {
		errs = append(errs, "generation concurrency must be at least 1")
	}

	if c.Scoring.URL == "" {
		errs = append(errs, "scoring URL is required")
	} else if !isValidURL(c.Scoring.URL) {
		errs = append(errs, "scoring URL must be a valid URL")
	}
	if c.Scoring.Model == "" {
		errs = append(errs, "scoring model is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
