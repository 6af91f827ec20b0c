// Package drawmark is the public entry point for converting PDF documents
// with technical drawings into markdown.
package drawmark

import (
	"context"

	"github.com/drawmark/drawmark/internal/config"
	"github.com/drawmark/drawmark/internal/domain"
	"github.com/drawmark/drawmark/internal/observability"
	"github.com/drawmark/drawmark/internal/pipeline"
)

// Re-export result types for the public API.
type (
	FinalDocument  = domain.FinalDocument
	AnalysisReport = domain.AnalysisReport
	DrawingFinding = domain.DrawingFinding
)

// Config holds all settings for a conversion run.
type Config = config.Config

// Options are the per-conversion switches.
type Options = pipeline.Options

// Classifier selection values for Config.Classifier.Mode.
const (
	ClassifierModel     = config.ClassifierModel
	ClassifierHeuristic = config.ClassifierHeuristic
)

// DefaultConfig returns a configuration with working defaults. Callers
// adjust it and pass it to NewClientWithConfig.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig reads a YAML config file and applies environment overrides.
// An empty path loads defaults plus environment only.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Client is the main entry point for the drawmark library.
type Client struct {
	cfg     *config.Config
	service *pipeline.Service
}

// NewClient creates a client from environment variables and defaults.
// A .env file in the working directory is honored when present.
func NewClient() (*Client, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client with explicit configuration.
func NewClientWithConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, domain.ConfigError("configuration is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "drawmark",
	})

	service, err := pipeline.NewService(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Client{cfg: cfg, service: service}, nil
}

// Convert runs the full pipeline on one PDF and returns the final document.
func (c *Client) Convert(ctx context.Context, pdfPath string) (*FinalDocument, error) {
	return c.ConvertWithOptions(ctx, pdfPath, Options{})
}

// ConvertWithOptions runs the pipeline with per-run switches.
func (c *Client) ConvertWithOptions(ctx context.Context, pdfPath string, opts Options) (*FinalDocument, error) {
	return c.service.Run(ctx, pdfPath, opts)
}
