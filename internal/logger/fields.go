package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// These keys are shared across the scheduler, plugin host, expression
// runtime, and codec so log aggregation/querying stays consistent.
const (
	// ========================================================================
	// Correlation
	// ========================================================================
	KeyTraceID = "trace_id" // correlation ID for one job run / plugin call
	KeyDurationMs = "duration_ms"

	// ========================================================================
	// Job Scheduler
	// ========================================================================
	KeyJobID       = "job_id"
	KeyJobName     = "job_name"
	KeyAttempt     = "attempt"
	KeyPriority    = "priority"
	KeyScheduledAt = "scheduled_at"
	KeyDelayMs     = "delay_ms"
	KeyExitCode    = "exit_code"
	KeyRetryDelay  = "retry_delay"
	KeyQueueDepth  = "queue_depth"

	// ========================================================================
	// Plugin Host
	// ========================================================================
	KeyPluginID      = "plugin_id"
	KeyPluginVersion = "plugin_version"
	KeyFunction      = "function"
	KeyCapability    = "capability"
	KeyResourceID    = "resource_id"
	KeyResourceType  = "resource_type"
	KeyBytes         = "bytes"
	KeyHookName      = "hook"

	// ========================================================================
	// Security & Signature Verification
	// ========================================================================
	KeyKeyID      = "key_id"
	KeyPolicy     = "policy"
	KeyRiskLevel  = "risk_level"
	KeyTUFVersion = "tuf_version"

	// ========================================================================
	// Expression & Closure Runtime
	// ========================================================================
	KeyClosureID = "closure_id"
	KeyMacroName = "macro_name"
	KeyDepth     = "depth"

	// ========================================================================
	// Codec
	// ========================================================================
	KeyFrameSize  = "frame_size"
	KeyBlockCount = "block_count"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyError    = "error"
	KeyErrCode  = "error_code"
	KeySeverity = "severity"
)

// ----------------------------------------------------------------------------
// Correlation
// ----------------------------------------------------------------------------

func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// ----------------------------------------------------------------------------
// Job Scheduler
// ----------------------------------------------------------------------------

func JobID(id string) slog.Attr { return slog.String(KeyJobID, id) }

func JobName(name string) slog.Attr { return slog.String(KeyJobName, name) }

func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

func Priority(p int) slog.Attr { return slog.Int(KeyPriority, p) }

func ExitCode(code int) slog.Attr { return slog.Int(KeyExitCode, code) }

func RetryDelay(d string) slog.Attr { return slog.String(KeyRetryDelay, d) }

func QueueDepth(n int) slog.Attr { return slog.Int(KeyQueueDepth, n) }

// ----------------------------------------------------------------------------
// Plugin Host
// ----------------------------------------------------------------------------

func PluginID(id string) slog.Attr { return slog.String(KeyPluginID, id) }

func PluginVersion(v string) slog.Attr { return slog.String(KeyPluginVersion, v) }

func Function(name string) slog.Attr { return slog.String(KeyFunction, name) }

func Capability(name string) slog.Attr { return slog.String(KeyCapability, name) }

func ResourceID(id string) slog.Attr { return slog.String(KeyResourceID, id) }

func ResourceType(t string) slog.Attr { return slog.String(KeyResourceType, t) }

func Bytes(n int64) slog.Attr { return slog.Int64(KeyBytes, n) }

func HookName(name string) slog.Attr { return slog.String(KeyHookName, name) }

// ----------------------------------------------------------------------------
// Security & Signature Verification
// ----------------------------------------------------------------------------

func KeyID(id string) slog.Attr { return slog.String(KeyKeyID, id) }

func Policy(name string) slog.Attr { return slog.String(KeyPolicy, name) }

func RiskLevel(level string) slog.Attr { return slog.String(KeyRiskLevel, level) }

func TUFVersion(v int) slog.Attr { return slog.Int(KeyTUFVersion, v) }

// ----------------------------------------------------------------------------
// Expression & Closure Runtime
// ----------------------------------------------------------------------------

func ClosureID(id uint64) slog.Attr { return slog.Uint64(KeyClosureID, id) }

func MacroName(name string) slog.Attr { return slog.String(KeyMacroName, name) }

func Depth(n int) slog.Attr { return slog.Int(KeyDepth, n) }

// ----------------------------------------------------------------------------
// Codec
// ----------------------------------------------------------------------------

func FrameSize(n int) slog.Attr { return slog.Int(KeyFrameSize, n) }

func BlockCount(n int) slog.Attr { return slog.Int(KeyBlockCount, n) }

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func ErrCode(code string) slog.Attr { return slog.String(KeyErrCode, code) }

func Severity(level string) slog.Attr { return slog.String(KeySeverity, level) }
