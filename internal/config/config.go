// Package config loads and validates NexusShell's runtime configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (NEXUSSHELL_*), for keys present in the
//     configuration file (highest priority)
//  2. Configuration file (YAML or JSON)
//  3. Default values (lowest priority)
//
// No CLI flags are bound. When no configuration file is found, Load
// returns the defaults without consulting the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nexusshell/nexusshell/internal/bytesize"
)

// Config is NexusShell's top-level configuration document. It covers the
// four core engines (scheduler, plugin runtime, expression runtime, codec)
// plus the ambient logging layer; everything else (builtins, UI theming,
// line editing, completion) is out of the core's scope and configured by
// its own consumer.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Scheduler controls the job scheduler (§4.H).
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`

	// PluginRuntime controls the WASM plugin host (§4.F) and the resource
	// table / security policy it depends on (§4.C, §4.D).
	PluginRuntime PluginRuntimeConfig `mapstructure:"plugin_runtime" yaml:"plugin_runtime"`

	// Runtime controls the expression & closure runtime (§4.G).
	Runtime RuntimeConfig `mapstructure:"runtime" yaml:"runtime"`

	// Codec controls the zstd store-mode encoder's default block size (§4.B).
	Codec CodecConfig `mapstructure:"codec" yaml:"codec"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: trace, debug, info, warn, error (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=trace debug info warn error TRACE DEBUG INFO WARN ERROR" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: json, pretty, compact, full.
	Format string `mapstructure:"format" validate:"required,oneof=json pretty compact full" yaml:"format"`

	// Rotation specifies the log file rotation policy.
	// Valid values: hourly, daily, never.
	Rotation string `mapstructure:"rotation" validate:"omitempty,oneof=hourly daily never" yaml:"rotation"`

	// RetentionDays is how long rotated log files are kept.
	RetentionDays int `mapstructure:"retention_days" validate:"omitempty,gte=0" yaml:"retention_days"`

	// LogDir is the directory rotated log files are written to.
	LogDir string `mapstructure:"log_dir" yaml:"log_dir"`

	// FileOutput controls whether logs are written to LogDir.
	FileOutput bool `mapstructure:"file_output" yaml:"file_output"`

	// ConsoleOutput controls whether logs are written to stdout/stderr.
	ConsoleOutput bool `mapstructure:"console_output" yaml:"console_output"`

	// Output is the destination when ConsoleOutput is set: "stdout", "stderr",
	// or a file path (kept distinct from LogDir for single-file deployments).
	Output string `mapstructure:"output" yaml:"output"`
}

// SchedulerConfig controls the job scheduler (§4.H).
type SchedulerConfig struct {
	// MaxConcurrentJobs bounds how many job attempts may run at once.
	MaxConcurrentJobs int `mapstructure:"max_concurrent_jobs" validate:"required,gt=0" yaml:"max_concurrent_jobs"`

	// CheckInterval is the tick-loop polling interval.
	CheckInterval time.Duration `mapstructure:"check_interval_secs" validate:"required,gt=0" yaml:"check_interval_secs"`

	// HistoryRetention bounds how long history entries are kept before
	// eviction from the bounded FIFO.
	HistoryRetention time.Duration `mapstructure:"history_retention_hours" validate:"required,gt=0" yaml:"history_retention_hours"`

	// DefaultRetryCount is the retry policy default for jobs that don't
	// specify their own.
	DefaultRetryCount int `mapstructure:"default_retry_count" validate:"gte=0" yaml:"default_retry_count"`

	// DefaultRetryInterval is the base retry backoff interval default.
	DefaultRetryInterval time.Duration `mapstructure:"default_retry_interval_secs" validate:"gt=0" yaml:"default_retry_interval_secs"`

	// DefaultTimeout is the per-job execution timeout default.
	DefaultTimeout time.Duration `mapstructure:"default_timeout_secs" validate:"gt=0" yaml:"default_timeout_secs"`

	// EnablePriorityQueue is loaded from configuration but not read by the
	// scheduler: jobs due at the same scheduled_time are always ordered by
	// descending priority, whatever this flag is set to.
	EnablePriorityQueue bool `mapstructure:"enable_priority_queue" yaml:"enable_priority_queue"`

	// AutoDisableAfterFailures disables a job after this many consecutive
	// failures (0 disables the feature). See SPEC_FULL.md §12.1.
	AutoDisableAfterFailures int `mapstructure:"auto_disable_after_failures" validate:"gte=0" yaml:"auto_disable_after_failures"`
}

// PluginRuntimeConfig controls the WASM plugin host.
type PluginRuntimeConfig struct {
	ResourceLimits        ResourceLimitsConfig        `mapstructure:"resource_limits" yaml:"resource_limits"`
	Security              PluginSecurityConfig        `mapstructure:"security" yaml:"security"`
	PerformanceMonitoring PerformanceMonitoringConfig `mapstructure:"performance_monitoring" yaml:"performance_monitoring"`
}

// ResourceLimitsConfig bounds the resource table (§4.C).
type ResourceLimitsConfig struct {
	MaxMemory          bytesize.ByteSize `mapstructure:"max_memory" yaml:"max_memory"`
	MaxMemoryPerPlugin bytesize.ByteSize `mapstructure:"max_memory_per_plugin" yaml:"max_memory_per_plugin"`
	MaxResources       int               `mapstructure:"max_resources" validate:"gte=0" yaml:"max_resources"`
	MaxResourcesPerType int              `mapstructure:"max_resources_per_type" validate:"gte=0" yaml:"max_resources_per_type"`
	MaxLifetime        time.Duration     `mapstructure:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime        time.Duration     `mapstructure:"max_idle_time" yaml:"max_idle_time"`
}

// PluginSecurityConfig selects and tunes the capability/policy engine (§4.D).
type PluginSecurityConfig struct {
	EnableSandbox          bool     `mapstructure:"enable_sandbox" yaml:"enable_sandbox"`
	AllowNetwork           bool     `mapstructure:"allow_network" yaml:"allow_network"`
	AllowFilesystem        bool     `mapstructure:"allow_filesystem" yaml:"allow_filesystem"`
	AllowedDirectories     []string `mapstructure:"allowed_directories" yaml:"allowed_directories"`
	MaxExecutionTime       time.Duration `mapstructure:"max_execution_time" yaml:"max_execution_time"`
	CapabilityBasedSecurity bool    `mapstructure:"capability_based_security" yaml:"capability_based_security"`
	RequireSignatures      bool     `mapstructure:"require_signatures" yaml:"require_signatures"`
}

// PerformanceMonitoringConfig tunes the plugin performance monitor (§4.F).
type PerformanceMonitoringConfig struct {
	Enabled              bool          `mapstructure:"enabled" yaml:"enabled"`
	CollectionInterval   time.Duration `mapstructure:"collection_interval" yaml:"collection_interval"`
	MemoryWarningThreshold bytesize.ByteSize `mapstructure:"memory_warning_threshold" yaml:"memory_warning_threshold"`
	CPUWarningThreshold  float64       `mapstructure:"cpu_warning_threshold" validate:"gte=0" yaml:"cpu_warning_threshold"`
	MaxSamples           int           `mapstructure:"max_samples" validate:"gt=0" yaml:"max_samples"`
}

// RuntimeConfig controls the expression & closure runtime (§4.G).
type RuntimeConfig struct {
	// MaxMacroDepth caps macro expansion nesting (default 100).
	MaxMacroDepth int `mapstructure:"max_macro_depth" validate:"gt=0" yaml:"max_macro_depth"`
}

// CodecConfig controls the zstd store-mode codec (§4.B).
type CodecConfig struct {
	// MaxBlockSize is the encoder's maximum RAW block payload size, capped
	// at 2^21-1 per RFC 8878.
	MaxBlockSize int `mapstructure:"max_block_size" validate:"gt=0,lte=2097151" yaml:"max_block_size"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := DefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when the file is
// missing at the requested (or default) location.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please create a configuration file first, e.g. from the defaults:\n"+
				"  nexusshell config show > <path>\n\n"+
				"Or specify a custom config file:\n"+
				"  nexusshell <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories as needed.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("NEXUSSHELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v*float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "nexusshell")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "nexusshell")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
