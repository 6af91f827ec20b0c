// Package config provides configuration loading for the converter.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Classifier selection values.
const (
	ClassifierModel     = "model"
	ClassifierHeuristic = "heuristic"
)

// Config holds all settings for a conversion run.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Models        ModelsConfig        `yaml:"models"`
	Images        ImagesConfig        `yaml:"images"`
	Paths         PathsConfig         `yaml:"paths"`
	Classifier    ClassifierConfig    `yaml:"classifier"`
	Optimizer     OptimizerConfig     `yaml:"optimizer"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServiceConfig holds the hosted model service settings.
type ServiceConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	MaxRetries int           `yaml:"max_retries"`
	BaseWait   time.Duration `yaml:"base_wait"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ModelsConfig names the model used by each pipeline stage.
type ModelsConfig struct {
	Classify  string `yaml:"classify"`
	Analyze   string `yaml:"analyze"`
	Optimize  string `yaml:"optimize"`
	MaxTokens int    `yaml:"max_tokens"`
}

// ImagesConfig holds rasterization settings.
type ImagesConfig struct {
	PreviewDPI  float64 `yaml:"preview_dpi"`
	DrawingDPI  float64 `yaml:"drawing_dpi"`
	JPEGQuality int     `yaml:"jpeg_quality"`
}

// PathsConfig holds the scratch and output directories.
type PathsConfig struct {
	TempDir   string `yaml:"temp_dir"`
	OutputDir string `yaml:"output_dir"`
}

// ClassifierConfig selects the page classifier implementation.
type ClassifierConfig struct {
	Mode          string `yaml:"mode"`           // model or heuristic
	TextThreshold int    `yaml:"text_threshold"` // heuristic: fewer chars suggests a drawing
}

// OptimizerConfig holds the chunking policy for the markdown pass.
type OptimizerConfig struct {
	ChunkSize       int `yaml:"chunk_size"`
	SingleChunkMax  int `yaml:"single_chunk_max"`
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	// A .env next to the binary is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with working defaults.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:    "https://openrouter.ai/api/v1/chat/completions",
			MaxRetries: 5,
			BaseWait:   10 * time.Second,
			Timeout:    5 * time.Minute,
		},
		Models: ModelsConfig{
			Classify:  "google/gemini-2.5-flash-lite",
			Analyze:   "google/gemini-2.5-pro",
			Optimize:  "anthropic/claude-sonnet-4",
			MaxTokens: 5000,
		},
		Images: ImagesConfig{
			PreviewDPI:  72,
			DrawingDPI:  300,
			JPEGQuality: 80,
		},
		Paths: PathsConfig{
			TempDir:   "./temp",
			OutputDir: "./output",
		},
		Classifier: ClassifierConfig{
			Mode:          ClassifierModel,
			TextThreshold: 200,
		},
		Optimizer: OptimizerConfig{
			ChunkSize:       4000,
			SingleChunkMax:  3000,
			MaxOutputTokens: 4000,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Images.PreviewDPI <= 0 || c.Images.DrawingDPI <= 0 {
		return fmt.Errorf("image DPI must be positive")
	}
	if c.Images.JPEGQuality < 1 || c.Images.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.Images.JPEGQuality)
	}
	if c.Service.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.Classifier.Mode != ClassifierModel && c.Classifier.Mode != ClassifierHeuristic {
		return fmt.Errorf("classifier mode must be %q or %q, got %q",
			ClassifierModel, ClassifierHeuristic, c.Classifier.Mode)
	}
	if c.Optimizer.ChunkSize <= 0 {
		return fmt.Errorf("optimizer chunk_size must be positive")
	}
	if c.Paths.TempDir == "" || c.Paths.OutputDir == "" {
		return fmt.Errorf("temp_dir and output_dir must be set")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DRAWMARK_API_KEY"); v != "" {
		cfg.Service.APIKey = v
	}
	// Accept the provider's conventional variable as well.
	if cfg.Service.APIKey == "" {
		cfg.Service.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if v := os.Getenv("DRAWMARK_BASE_URL"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := os.Getenv("DRAWMARK_CLASSIFY_MODEL"); v != "" {
		cfg.Models.Classify = v
	}
	if v := os.Getenv("DRAWMARK_ANALYZE_MODEL"); v != "" {
		cfg.Models.Analyze = v
	}
	if v := os.Getenv("DRAWMARK_OPTIMIZE_MODEL"); v != "" {
		cfg.Models.Optimize = v
	}
	if v := os.Getenv("DRAWMARK_TEMP_DIR"); v != "" {
		cfg.Paths.TempDir = v
	}
	if v := os.Getenv("DRAWMARK_OUTPUT_DIR"); v != "" {
		cfg.Paths.OutputDir = v
	}
	if v := os.Getenv("DRAWMARK_CLASSIFIER"); v != "" {
		cfg.Classifier.Mode = v
	}
	if v := os.Getenv("DRAWMARK_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("DRAWMARK_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Service.MaxRetries = n
		}
	}
}
