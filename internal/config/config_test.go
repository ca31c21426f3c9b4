package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusshell/nexusshell/internal/bytesize"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("PopulatesAllSections", func(t *testing.T) {
		cfg := DefaultConfig()

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "pretty", cfg.Logging.Format)
		assert.True(t, cfg.Logging.ConsoleOutput)

		assert.Equal(t, 10, cfg.Scheduler.MaxConcurrentJobs)
		assert.Equal(t, time.Second, cfg.Scheduler.CheckInterval)
		assert.Equal(t, 168*time.Hour, cfg.Scheduler.HistoryRetention)
		assert.Equal(t, 5*time.Minute, cfg.Scheduler.DefaultTimeout)

		assert.Equal(t, bytesize.ByteSize(512*1024*1024), cfg.PluginRuntime.ResourceLimits.MaxMemory)
		assert.True(t, cfg.PluginRuntime.Security.EnableSandbox)
		assert.True(t, cfg.PluginRuntime.Security.CapabilityBasedSecurity)

		assert.Equal(t, 100, cfg.Runtime.MaxMacroDepth)
		assert.Equal(t, 128*1024, cfg.Codec.MaxBlockSize)
	})

	t.Run("PassesValidation", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, Validate(cfg))
	})
}

func TestValidate(t *testing.T) {
	t.Run("RejectsZeroMaxConcurrentJobs", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Scheduler.MaxConcurrentJobs = 0
		assert.Error(t, Validate(cfg))
	})

	t.Run("RejectsInvalidLogLevel", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "verbose"
		assert.Error(t, Validate(cfg))
	})

	t.Run("RejectsOversizedCodecBlock", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Codec.MaxBlockSize = 1 << 22 // exceeds RFC 8878 2^21-1 cap
		assert.Error(t, Validate(cfg))
	})

	t.Run("RejectsZeroMacroDepth", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Runtime.MaxMacroDepth = 0
		assert.Error(t, Validate(cfg))
	})
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	t.Run("SaveThenLoadPreservesValues", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")

		cfg := DefaultConfig()
		cfg.Scheduler.MaxConcurrentJobs = 42
		cfg.Logging.Level = "debug"

		require.NoError(t, SaveConfig(cfg, path))

		loaded, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 42, loaded.Scheduler.MaxConcurrentJobs)
		assert.Equal(t, "debug", loaded.Logging.Level)
	})

	t.Run("LoadMissingFileReturnsDefaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(filepath.Join(dir, "nonexistent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Scheduler.MaxConcurrentJobs)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("ErrorsWhenExplicitPathMissing", func(t *testing.T) {
		dir := t.TempDir()
		_, err := MustLoad(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Run("EndsWithConfigYaml", func(t *testing.T) {
		path := GetDefaultConfigPath()
		assert.Equal(t, "config.yaml", filepath.Base(path))
	})
}
