package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context that is threaded through
// the four core engines: a scheduler job attempt, a plugin call, or an
// expression evaluation.
type LogContext struct {
	TraceID   string    // correlation ID for a single job run / plugin call
	JobID     string    // scheduler job ID, if applicable
	PluginID  string    // plugin host plugin ID, if applicable
	Attempt   int       // scheduler retry attempt number
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with a fresh start time.
func NewLogContext(traceID string) *LogContext {
	return &LogContext{
		TraceID:   traceID,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithJob returns a copy with the job ID and attempt set.
func (lc *LogContext) WithJob(jobID string, attempt int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.JobID = jobID
		clone.Attempt = attempt
	}
	return clone
}

// WithPlugin returns a copy with the plugin ID set.
func (lc *LogContext) WithPlugin(pluginID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.PluginID = pluginID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
