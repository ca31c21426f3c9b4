package config

import "time"

// DefaultConfig returns a Config populated entirely with default values,
// suitable for printing via `nexusshell config show` or for running with no config file
// present.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields of cfg with defaults. It is
// called after unmarshaling a partial config file so that unset sections
// still end up with sane values.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applySchedulerDefaults(&cfg.Scheduler)
	applyPluginRuntimeDefaults(&cfg.PluginRuntime)
	applyRuntimeDefaults(&cfg.Runtime)
	applyCodecDefaults(&cfg.Codec)
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "pretty"
	}
	if l.Rotation == "" {
		l.Rotation = "daily"
	}
	if l.RetentionDays == 0 {
		l.RetentionDays = 7
	}
	if l.LogDir == "" {
		l.LogDir = "logs"
	}
	if l.Output == "" {
		l.Output = "stdout"
	}
	// ConsoleOutput defaults to true unless the file was explicit about
	// disabling it; viper leaves this false only when the key is absent
	// from the file AND env, which we can't distinguish here, so default
	// to enabled when neither output sink is configured.
	if !l.FileOutput && !l.ConsoleOutput {
		l.ConsoleOutput = true
	}
}

func applySchedulerDefaults(s *SchedulerConfig) {
	if s.MaxConcurrentJobs == 0 {
		s.MaxConcurrentJobs = 10
	}
	if s.CheckInterval == 0 {
		s.CheckInterval = time.Second
	}
	if s.HistoryRetention == 0 {
		s.HistoryRetention = 168 * time.Hour
	}
	if s.DefaultRetryInterval == 0 {
		s.DefaultRetryInterval = 30 * time.Second
	}
	if s.DefaultTimeout == 0 {
		s.DefaultTimeout = 5 * time.Minute
	}
	// EnablePriorityQueue and AutoDisableAfterFailures default to their
	// zero values: false for EnablePriorityQueue (a flag the scheduler
	// does not read), and 0, which means "never auto-disable".
}

func applyPluginRuntimeDefaults(p *PluginRuntimeConfig) {
	applyResourceLimitsDefaults(&p.ResourceLimits)
	applyPluginSecurityDefaults(&p.Security)
	applyPerformanceMonitoringDefaults(&p.PerformanceMonitoring)
}

func applyResourceLimitsDefaults(r *ResourceLimitsConfig) {
	if r.MaxMemory == 0 {
		r.MaxMemory = 512 * 1024 * 1024 // 512MiB
	}
	if r.MaxMemoryPerPlugin == 0 {
		r.MaxMemoryPerPlugin = 64 * 1024 * 1024 // 64MiB
	}
	if r.MaxResources == 0 {
		r.MaxResources = 10000
	}
	if r.MaxResourcesPerType == 0 {
		r.MaxResourcesPerType = 1000
	}
	if r.MaxLifetime == 0 {
		r.MaxLifetime = 24 * time.Hour
	}
	if r.MaxIdleTime == 0 {
		r.MaxIdleTime = 10 * time.Minute
	}
}

func applyPluginSecurityDefaults(s *PluginSecurityConfig) {
	if !s.EnableSandbox && !s.AllowNetwork && !s.AllowFilesystem {
		s.EnableSandbox = true
	}
	if s.MaxExecutionTime == 0 {
		s.MaxExecutionTime = 30 * time.Second
	}
	if !s.CapabilityBasedSecurity {
		s.CapabilityBasedSecurity = true
	}
}

func applyPerformanceMonitoringDefaults(m *PerformanceMonitoringConfig) {
	if m.CollectionInterval == 0 {
		m.CollectionInterval = 5 * time.Second
	}
	if m.MemoryWarningThreshold == 0 {
		m.MemoryWarningThreshold = 48 * 1024 * 1024 // 48MiB
	}
	if m.CPUWarningThreshold == 0 {
		m.CPUWarningThreshold = 80.0
	}
	if m.MaxSamples == 0 {
		m.MaxSamples = 1000
	}
}

func applyRuntimeDefaults(r *RuntimeConfig) {
	if r.MaxMacroDepth == 0 {
		r.MaxMacroDepth = 100
	}
}

func applyCodecDefaults(c *CodecConfig) {
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = 128 * 1024 // 128KiB
	}
}
