// Package resource implements the plugin host's generic, typed, accounted
// resource table: a concurrent map from resource ID to a type-erased
// entry with memory accounting, lifecycle callbacks, and idle/plugin
// cleanup sweeps.
package resource

import "time"

// Type classifies what kind of handle a resource entry wraps.
type Type struct {
	name string
}

// String returns the resource type's name.
func (t Type) String() string { return t.name }

// Built-in resource types. Custom types are created with NewCustomType.
var (
	TypeMemory = Type{"memory"}
	TypeFile   = Type{"file"}
	TypeSocket = Type{"socket"}
	TypeTimer  = Type{"timer"}
)

// NewCustomType creates a resource type outside the built-in set.
func NewCustomType(name string) Type {
	return Type{name: name}
}

// State is a resource's lifecycle state.
type State int

const (
	StateCreating State = iota
	StateActive
	StateIdle
	StateMarkedForCleanup
	StateCleaning
	StateCleaned
	StateError
)

// String renders the state name.
func (s State) String() string {
	switch s {
	case StateCreating:
		return "Creating"
	case StateActive:
		return "Active"
	case StateIdle:
		return "Idle"
	case StateMarkedForCleanup:
		return "MarkedForCleanup"
	case StateCleaning:
		return "Cleaning"
	case StateCleaned:
		return "Cleaned"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Info is the per-resource accounting record.
type Info struct {
	ID           string
	Type         Type
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  uint64
	Bytes        int64
	PluginID     string
	State        State
	ErrorMessage string // populated only when State == StateError
}

// Clone returns a defensive copy of the info record, used when handing
// accounting snapshots to callbacks or callers.
func (i Info) Clone() Info {
	return i
}
