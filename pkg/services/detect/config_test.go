package detect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "detection.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `rules:
  price_tolerance: 0.05
stats:
  min_group_size: 10
semantic:
  call_timeout: 5s
  confidence_threshold: 0.8
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, cfg.Rules.PriceTolerance, 1e-9)
	assert.Equal(t, 10, cfg.Stats.MinGroupSize)
	assert.Equal(t, 5*time.Second, cfg.Semantic.CallTimeout)
	assert.InDelta(t, 0.8, cfg.Semantic.ConfidenceThreshold, 1e-9)

	// untouched keys keep their defaults
	assert.InDelta(t, 0.02, cfg.Rules.InsuranceCeiling, 1e-9)
	assert.InDelta(t, 1.5, cfg.Stats.IQRMultiplier, 1e-9)
	assert.Equal(t, 5, cfg.Semantic.MaxInFlight)
	assert.Equal(t, 2, cfg.Semantic.MaxRetries)
	assert.InDelta(t, 0.10, cfg.Semantic.ShortlistFraction, 1e-9)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.InDelta(t, 0.02, cfg.Rules.PriceTolerance, 1e-9)
	assert.Equal(t, 4, cfg.Stats.MinGroupSize)
	assert.Equal(t, 10*time.Second, cfg.Semantic.CallTimeout)
	assert.InDelta(t, 0.6, cfg.Semantic.ConfidenceThreshold, 1e-9)
}
