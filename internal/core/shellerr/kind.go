// Package shellerr implements the structured error taxonomy shared by the
// job scheduler, plugin host, expression runtime, and codec: a single
// result type wrapping a hierarchical error kind, source location,
// propagation context, and an optional inner cause.
package shellerr

import "fmt"

// Category is the top-level error classification.
type Category int

const (
	CategoryParse Category = iota + 1
	CategoryRuntime
	CategoryIO
	CategorySecurity
	CategorySystem
	CategoryPlugin
	CategoryConfig
	CategoryNetwork
	CategoryCrypto
	CategorySerialization
	CategoryResource
	CategoryInternal
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryParse:
		return "Parse"
	case CategoryRuntime:
		return "Runtime"
	case CategoryIO:
		return "Io"
	case CategorySecurity:
		return "Security"
	case CategorySystem:
		return "System"
	case CategoryPlugin:
		return "Plugin"
	case CategoryConfig:
		return "Config"
	case CategoryNetwork:
		return "Network"
	case CategoryCrypto:
		return "Crypto"
	case CategorySerialization:
		return "Serialization"
	case CategoryResource:
		return "Resource"
	case CategoryInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Kind is a hierarchical error kind: a top-level Category plus a
// subcategory tag unique within that category.
type Kind struct {
	Category Category
	Sub      string
}

// String renders the kind as "Category.sub".
func (k Kind) String() string {
	return fmt.Sprintf("%s.%s", k.Category, k.Sub)
}

// Parse kinds.
var (
	KindUnexpectedToken = Kind{CategoryParse, "unexpected_token"}
	KindUnexpectedEOF   = Kind{CategoryParse, "unexpected_eof"}
	KindInvalidSyntax   = Kind{CategoryParse, "invalid_syntax"}
)

// Runtime kinds.
var (
	KindUnknownVariable    = Kind{CategoryRuntime, "unknown_variable"}
	KindUnknownFunction    = Kind{CategoryRuntime, "unknown_function"}
	KindArityMismatch      = Kind{CategoryRuntime, "arity_mismatch"}
	KindTypeMismatch       = Kind{CategoryRuntime, "type_mismatch"}
	KindDivisionByZero     = Kind{CategoryRuntime, "division_by_zero"}
	KindCircularExpansion  = Kind{CategoryRuntime, "circular_expansion"}
	KindMaxDepthExceeded   = Kind{CategoryRuntime, "max_depth_exceeded"}
	KindUnknownClosure     = Kind{CategoryRuntime, "unknown_closure"}
)

// Io kinds.
var (
	KindNotFound         = Kind{CategoryIO, "not_found"}
	KindPermissionDenied = Kind{CategoryIO, "permission_denied"}
	KindAlreadyExists    = Kind{CategoryIO, "already_exists"}
	KindIOOther          = Kind{CategoryIO, "other"}
)

// Security kinds.
var (
	KindCapabilityDenied  = Kind{CategorySecurity, "capability_denied"}
	KindValidationFailed  = Kind{CategorySecurity, "validation_failed"}
	KindSignatureInvalid  = Kind{CategorySecurity, "signature_invalid"}
	KindKeyRevoked        = Kind{CategorySecurity, "key_revoked"}
	KindExpired           = Kind{CategorySecurity, "expired"}
	KindSignatureRequired = Kind{CategorySecurity, "signature_required"}
)

// System kinds.
var (
	KindTimeout          = Kind{CategorySystem, "timeout"}
	KindSemaphoreFailure = Kind{CategorySystem, "semaphore_failure"}
	KindSystemTime       = Kind{CategorySystem, "system_time"}
	KindProcessFailed    = Kind{CategorySystem, "process_failed"}
	KindJobNotFound      = Kind{CategorySystem, "job_not_found"}
	KindJobDisabled      = Kind{CategorySystem, "job_disabled"}
	KindInvalidCron      = Kind{CategorySystem, "invalid_cron"}
)

// Plugin kinds.
var (
	KindPluginNotFound       = Kind{CategoryPlugin, "not_found"}
	KindPluginLoadFailed     = Kind{CategoryPlugin, "load_failed"}
	KindPluginExecutionFailed = Kind{CategoryPlugin, "execution_failed"}
	KindPluginAlreadyLoaded  = Kind{CategoryPlugin, "already_loaded"}
)

// Config kinds.
var (
	KindConfigMissing         = Kind{CategoryConfig, "missing"}
	KindConfigInvalid         = Kind{CategoryConfig, "invalid"}
	KindConfigValidationFailed = Kind{CategoryConfig, "validation_failed"}
)

// Network kinds.
var (
	KindConnectionFailed = Kind{CategoryNetwork, "connection_failed"}
	KindAddressParse     = Kind{CategoryNetwork, "address_parse"}
)

// Crypto kinds.
var (
	KindHashMismatch = Kind{CategoryCrypto, "hash_mismatch"}
	KindKeyNotFound  = Kind{CategoryCrypto, "key_not_found"}
	KindBadSignature = Kind{CategoryCrypto, "bad_signature"}
)

// Serialization kinds.
var (
	KindJSONError = Kind{CategorySerialization, "json_error"}
	KindYAMLError = Kind{CategorySerialization, "yaml_error"}
)

// Resource kinds.
var (
	KindResourceExhausted = Kind{CategoryResource, "exhausted"}
	KindResourceNotFound  = Kind{CategoryResource, "not_found"}
	KindTypeTagMismatch   = Kind{CategoryResource, "type_tag_mismatch"}
)

// Internal kinds.
var (
	KindBug         = Kind{CategoryInternal, "bug"}
	KindUnreachable = Kind{CategoryInternal, "unreachable"}
	KindLockPoisoned = Kind{CategoryInternal, "lock_poisoned"}
)

// Severity ranks how serious an error is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityFatal
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	case SeverityCritical:
		return "Critical"
	case SeverityFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// severityByKind maps kinds with non-default severity. Everything absent
// from this map defaults to SeverityError.
var severityByKind = map[Kind]Severity{
	KindUnexpectedToken:    SeverityWarning,
	KindUnexpectedEOF:      SeverityWarning,
	KindInvalidSyntax:      SeverityWarning,
	KindUnknownVariable:    SeverityWarning,
	KindCircularExpansion:  SeverityWarning,
	KindNotFound:           SeverityWarning,
	KindCapabilityDenied:   SeverityCritical,
	KindValidationFailed:   SeverityCritical,
	KindSignatureInvalid:   SeverityCritical,
	KindKeyRevoked:         SeverityCritical,
	KindBug:                SeverityFatal,
	KindUnreachable:        SeverityFatal,
	KindLockPoisoned:       SeverityFatal,
}

// recoverableKinds lists kinds for which is_recoverable() is true. Security
// and Internal category errors are never recoverable regardless of this
// set (checked separately in IsRecoverable).
var recoverableKinds = map[Kind]bool{
	KindUnexpectedToken:   true,
	KindUnexpectedEOF:     true,
	KindInvalidSyntax:     true,
	KindNotFound:          true,
	KindUnknownVariable:   true,
	KindUnknownFunction:   true,
	KindCircularExpansion: true,
	KindResourceExhausted: true,
	KindTimeout:           true,
	KindAlreadyExists:     true,
}

// recoverySuggestions maps kinds to human-readable remediation hints.
var recoverySuggestions = map[Kind][]string{
	KindUnexpectedToken:   {"Check the expression syntax near the reported location."},
	KindUnexpectedEOF:     {"The input ended before a complete expression was parsed; check for unbalanced delimiters."},
	KindUnknownVariable:   {"Verify the variable is bound in the current scope before use."},
	KindUnknownFunction:   {"Check for typos in the function name, or define it before calling."},
	KindDivisionByZero:    {"Check divisor values before performing division."},
	KindCircularExpansion: {"Break the cycle between the macros named in the error context."},
	KindNotFound:          {"Verify the path or identifier exists before retrying."},
	KindPermissionDenied:  {"Check file permissions or run with adequate privileges."},
	KindCapabilityDenied:  {"Request a less restrictive security policy or remove the denied capability."},
	KindResourceExhausted: {"Free existing resources, or raise the configured limit."},
	KindSignatureRequired: {"Sign the plugin artifact or disable require_signatures."},
	KindTimeout:           {"Increase the configured timeout or investigate why the operation is slow."},
}
