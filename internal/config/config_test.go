package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Service.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Service.BaseWait)
	assert.Equal(t, float64(72), cfg.Images.PreviewDPI)
	assert.Equal(t, float64(300), cfg.Images.DrawingDPI)
	assert.Equal(t, 80, cfg.Images.JPEGQuality)
	assert.Equal(t, ClassifierModel, cfg.Classifier.Mode)
	assert.Equal(t, 4000, cfg.Optimizer.ChunkSize)
	assert.Equal(t, 3000, cfg.Optimizer.SingleChunkMax)

	require.NoError(t, cfg.Validate())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawmark.yaml")
	content := `
models:
  analyze: vendor/custom-vision
images:
  drawing_dpi: 150
classifier:
  mode: heuristic
  text_threshold: 120
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vendor/custom-vision", cfg.Models.Analyze)
	assert.Equal(t, float64(150), cfg.Images.DrawingDPI)
	assert.Equal(t, ClassifierHeuristic, cfg.Classifier.Mode)
	assert.Equal(t, 120, cfg.Classifier.TextThreshold)

	// Untouched settings keep their defaults.
	assert.Equal(t, "google/gemini-2.5-flash-lite", cfg.Models.Classify)
	assert.Equal(t, float64(72), cfg.Images.PreviewDPI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("DRAWMARK_API_KEY", "env-key")
	t.Setenv("DRAWMARK_ANALYZE_MODEL", "vendor/from-env")
	t.Setenv("DRAWMARK_OUTPUT_DIR", "/tmp/out")
	t.Setenv("DRAWMARK_MAX_RETRIES", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Service.APIKey)
	assert.Equal(t, "vendor/from-env", cfg.Models.Analyze)
	assert.Equal(t, "/tmp/out", cfg.Paths.OutputDir)
	assert.Equal(t, 2, cfg.Service.MaxRetries)
}

func TestLoadFallsBackToProviderAPIKey(t *testing.T) {
	t.Setenv("DRAWMARK_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "provider-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "provider-key", cfg.Service.APIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "zero preview dpi",
			mutate: func(c *Config) { c.Images.PreviewDPI = 0 },
		},
		{
			name:   "jpeg quality too high",
			mutate: func(c *Config) { c.Images.JPEGQuality = 150 },
		},
		{
			name:   "negative retries",
			mutate: func(c *Config) { c.Service.MaxRetries = -1 },
		},
		{
			name:   "unknown classifier mode",
			mutate: func(c *Config) { c.Classifier.Mode = "magic" },
		},
		{
			name:   "zero chunk size",
			mutate: func(c *Config) { c.Optimizer.ChunkSize = 0 },
		},
		{
			name:   "missing output dir",
			mutate: func(c *Config) { c.Paths.OutputDir = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
