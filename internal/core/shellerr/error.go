package shellerr

import (
	"fmt"
	"sort"
	"strings"
)

// Location is a source position: file/line/column/length.
type Location struct {
	File   string
	Line   int
	Column int
	Length int
}

// IsZero reports whether the location carries no information.
func (l Location) IsZero() bool {
	return l == Location{}
}

// String renders the location as "file:line:col".
func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ShellError is the structured error type shared across the scheduler,
// plugin host, expression runtime, and codec.
type ShellError struct {
	Kind     Kind
	Message  string
	Location Location
	Context  map[string]string
	Inner    error
}

// New creates a ShellError of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *ShellError {
	return &ShellError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]string),
	}
}

// Wrap creates a ShellError of the given kind that chains an inner cause.
func Wrap(kind Kind, inner error, format string, args ...any) *ShellError {
	e := New(kind, format, args...)
	e.Inner = inner
	return e
}

// WithLocation sets the source location and returns the receiver for chaining.
func (e *ShellError) WithLocation(loc Location) *ShellError {
	e.Location = loc
	return e
}

// WithContext annotates the error with a string→string context pair and
// returns the receiver for chaining.
func (e *ShellError) WithContext(key, value string) *ShellError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *ShellError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind.Category, e.Message)
	if !e.Location.IsZero() {
		fmt.Fprintf(&b, " at %s", e.Location)
	}
	if len(e.Context) > 0 {
		b.WriteString(" (")
		b.WriteString(e.contextString())
		b.WriteString(")")
	}
	if e.Inner != nil {
		fmt.Fprintf(&b, "\nCaused by: %s", e.Inner.Error())
	}
	return b.String()
}

// contextString renders the context map in stable, sorted key order.
func (e *ShellError) contextString() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
	}
	return strings.Join(parts, ", ")
}

// Unwrap exposes the inner error chain to errors.Is / errors.As.
func (e *ShellError) Unwrap() error {
	return e.Inner
}

// Severity maps the error's kind to a severity level.
func (e *ShellError) Severity() Severity {
	if s, ok := severityByKind[e.Kind]; ok {
		return s
	}
	return SeverityError
}

// IsRecoverable reports whether the caller may reasonably retry or
// continue after this error. Security and Internal category errors are
// never recoverable.
func (e *ShellError) IsRecoverable() bool {
	switch e.Kind.Category {
	case CategorySecurity, CategoryInternal:
		return false
	}
	return recoverableKinds[e.Kind]
}

// RecoverySuggestions returns human-readable remediation hints for the
// error's kind, or nil if none are registered.
func (e *ShellError) RecoverySuggestions() []string {
	return recoverySuggestions[e.Kind]
}

// Is supports errors.Is by comparing Kind.
func (e *ShellError) Is(target error) bool {
	other, ok := target.(*ShellError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
