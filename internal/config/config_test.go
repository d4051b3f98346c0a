package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/battwarn/internal/config"
	"codeberg.org/mutker/battwarn/internal/errors"
	"codeberg.org/mutker/battwarn/internal/warning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battwarn.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("BATTWARN_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
interval = 5
low = 25
critical = 10
log_level = "debug"
urgency = "normal"
sound = "bell"
timeout = 30
metrics = true
metrics_db = "/path/to/metrics.db"
`)
	t.Setenv("BATTWARN_CONFIG", path)

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval)
	require.NotNil(t, cfg.Low)
	require.NotNil(t, cfg.Critical)
	assert.Equal(t, 25, *cfg.Low)
	assert.Equal(t, 10, *cfg.Critical)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "normal", cfg.Urgency)
	assert.Equal(t, "bell", cfg.Sound)
	assert.Equal(t, 30, cfg.Timeout)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "/path/to/metrics.db", cfg.MetricsDB)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Nil(t, cfg.Low)
	assert.Nil(t, cfg.Critical)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultUrgency, cfg.Urgency)
	assert.Equal(t, config.DefaultSound, cfg.Sound)
	assert.Equal(t, 0, cfg.Timeout)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, config.DefaultMetricsDB, cfg.MetricsDB)

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Empty(t, th)
}

func TestFlagsOverrideFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
interval = 5
low = 25
`)

	cfg, err := config.Load(
		config.WithConfigFile(path),
		config.WithArgs([]string{"--low", "30", "--critical", "8", "--interval", "120"}),
	)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Interval)
	assert.Equal(t, 30, *cfg.Low)
	assert.Equal(t, 8, *cfg.Critical)

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, warning.Thresholds{
		{Kind: warning.Low, Level: 0.30},
		{Kind: warning.Critical, Level: 0.08},
	}, th)
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `low = 25`)
	t.Setenv("BATTWARN_LOW", "40")

	cfg, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.NoError(t, err)
	assert.Equal(t, 40, *cfg.Low)
}

func TestEnvPrefix(t *testing.T) {
	isolate(t)
	t.Setenv("POWERWARN_CRITICAL", "7")

	cfg, err := config.Load(config.WithEnvPrefix("POWERWARN"), config.WithArgs(nil))
	require.NoError(t, err)
	require.NotNil(t, cfg.Critical)
	assert.Equal(t, 7, *cfg.Critical)
}

func TestRejectsCriticalNotBelowLow(t *testing.T) {
	isolate(t)

	_, err := config.Load(config.WithArgs([]string{"--critical", "20", "--low", "15"}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidThresholdOrder))
	assert.Contains(t, err.Error(), "Critical battery percentage should be less than low battery percentage")
}

func TestValidate(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	valid := func() config.Config {
		return config.Config{
			Interval: 60,
			LogLevel: "info",
			Urgency:  "critical",
			Low:      intPtr(20),
			Critical: intPtr(10),
		}
	}

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		code   errors.ErrorCode
	}{
		{"zero interval", func(c *config.Config) { c.Interval = 0 }, errors.ErrInvalidInterval},
		{"negative interval", func(c *config.Config) { c.Interval = -3 }, errors.ErrInvalidInterval},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }, errors.ErrInvalidLogLevel},
		{"bad urgency", func(c *config.Config) { c.Urgency = "panic" }, errors.ErrInvalidUrgency},
		{"negative timeout", func(c *config.Config) { c.Timeout = -1 }, errors.ErrInvalidConfig},
		{"threshold above 100", func(c *config.Config) { c.Low = intPtr(101) }, errors.ErrInvalidThreshold},
		{"critical equals low", func(c *config.Config) { c.Critical = intPtr(20) }, errors.ErrInvalidThresholdOrder},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
This is not a valid TOML file
`)

	_, err := config.Load(config.WithConfigFile(path), config.WithArgs(nil))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := config.Load(
		config.WithConfigFile(filepath.Join(t.TempDir(), "missing.toml")),
		config.WithArgs(nil),
	)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestUnknownFlag(t *testing.T) {
	isolate(t)

	_, err := config.Load(config.WithArgs([]string{"--nope"}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrBindFlags))
}
