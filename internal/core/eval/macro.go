package eval

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// MacroKind tags the macro variant.
type MacroKind int

const (
	MacroSimple MacroKind = iota
	MacroConditional
	MacroLoop
	MacroFunction
)

// Macro is a textual template, expanded before evaluation. Macros live
// in their own namespace, separate from the closure/function table.
type Macro struct {
	Kind MacroKind
	Name string

	// MacroSimple
	Params []string
	Body   string

	// MacroConditional
	Cond     string
	ThenText string
	ElseText string

	// MacroLoop
	Iterator string
	LoopBody string

	// MacroFunction
	Statements []string
}

// invocationPattern matches ${name(arg1, arg2)} invocations in host text.
var invocationPattern = regexp.MustCompile(`\$\{(\w+)\(([^)]*)\)\}`)

// paramPattern matches $name parameter substitutions inside a macro body.
var paramPattern = regexp.MustCompile(`\$(\w+)`)

// Expander holds the macro table and the currently-expanding stack used
// for circular-expansion detection.
type Expander struct {
	Macros   map[string]Macro
	MaxDepth int

	stack []string
}

// NewExpander returns an Expander seeded with the built-in macros and
// maxDepth (the configured RuntimeConfig.MaxMacroDepth).
func NewExpander(maxDepth int) *Expander {
	return &Expander{
		Macros:   make(map[string]Macro),
		MaxDepth: maxDepth,
	}
}

// Define registers or replaces a user-defined macro.
func (x *Expander) Define(m Macro) {
	x.Macros[m.Name] = m
}

// StackSnapshot captures the current expansion stack, for callers that
// need to expand nested text and later restore the outer expansion
// context (e.g. a REPL evaluating macro bodies interactively).
type StackSnapshot []string

// Snapshot returns a copy of the current expansion stack.
func (x *Expander) Snapshot() StackSnapshot {
	cp := make(StackSnapshot, len(x.stack))
	copy(cp, x.stack)
	return cp
}

// Restore resets the expansion stack to a previously captured snapshot.
func (x *Expander) Restore(snap StackSnapshot) {
	x.stack = append([]string(nil), snap...)
}

// Expand replaces every ${name(args)} invocation in text with its
// expansion, recursively, until no invocations remain or MaxDepth is
// exceeded.
func (x *Expander) Expand(text string) (string, *shellerr.ShellError) {
	return x.expandAt(text, 0)
}

func (x *Expander) expandAt(text string, depth int) (string, *shellerr.ShellError) {
	if depth > x.MaxDepth {
		return "", shellerr.New(shellerr.KindMaxDepthExceeded, "macro nesting exceeds maximum depth %d", x.MaxDepth)
	}

	var outerErr *shellerr.ShellError
	replaced := invocationPattern.ReplaceAllStringFunc(text, func(match string) string {
		if outerErr != nil {
			return match
		}
		groups := invocationPattern.FindStringSubmatch(match)
		name, rawArgs := groups[1], groups[2]

		out, err := x.invoke(name, splitArgs(rawArgs), depth)
		if err != nil {
			outerErr = err
			return match
		}
		return out
	})
	if outerErr != nil {
		return "", outerErr
	}
	if replaced == text {
		return replaced, nil
	}
	return x.expandAt(replaced, depth+1)
}

func (x *Expander) invoke(name string, args []string, depth int) (string, *shellerr.ShellError) {
	for _, expanding := range x.stack {
		if expanding == name {
			return "", shellerr.New(shellerr.KindCircularExpansion, "circular macro expansion detected for %q", name).
				WithContext("macro", name)
		}
	}

	if out, ok, err := x.invokeBuiltin(name, args); ok {
		return out, err
	}

	m, ok := x.Macros[name]
	if !ok {
		return "", shellerr.New(shellerr.KindUnknownFunction, "undefined macro %q", name)
	}

	x.stack = append(x.stack, name)
	defer func() { x.stack = x.stack[:len(x.stack)-1] }()

	switch m.Kind {
	case MacroSimple:
		return x.expandSimple(m, args, depth)
	case MacroConditional:
		return x.expandConditional(m, args, depth)
	case MacroLoop:
		return x.expandLoop(m, args, depth)
	case MacroFunction:
		return x.expandFunction(m, args, depth)
	default:
		return "", shellerr.New(shellerr.KindInvalidSyntax, "unrecognized macro kind for %q", name)
	}
}

func (x *Expander) expandSimple(m Macro, args []string, depth int) (string, *shellerr.ShellError) {
	body := substituteParams(m.Body, m.Params, args)
	return x.expandAt(body, depth+1)
}

func (x *Expander) expandConditional(m Macro, args []string, depth int) (string, *shellerr.ShellError) {
	cond := substituteParams(m.Cond, m.Params, args)
	chosen := m.ElseText
	if strings.TrimSpace(cond) != "" && strings.TrimSpace(cond) != "false" && strings.TrimSpace(cond) != "0" {
		chosen = m.ThenText
	}
	return x.expandAt(chosen, depth+1)
}

func (x *Expander) expandLoop(m Macro, args []string, depth int) (string, *shellerr.ShellError) {
	var out strings.Builder
	for _, item := range args {
		body := substituteParams(m.LoopBody, []string{m.Iterator}, []string{item})
		expanded, err := x.expandAt(body, depth+1)
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)
	}
	return out.String(), nil
}

func (x *Expander) expandFunction(m Macro, args []string, depth int) (string, *shellerr.ShellError) {
	var out strings.Builder
	for _, stmt := range m.Statements {
		substituted := substituteParams(stmt, m.Params, args)
		expanded, err := x.expandAt(substituted, depth+1)
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)
	}
	return out.String(), nil
}

// substituteParams replaces $name occurrences with the positional
// argument bound to that parameter name.
func substituteParams(body string, params []string, args []string) string {
	bindings := make(map[string]string, len(params))
	for i, p := range params {
		if i < len(args) {
			bindings[p] = args[i]
		}
	}
	return paramPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := match[1:]
		if v, ok := bindings[name]; ok {
			return v
		}
		return match
	})
}

func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// invokeBuiltin handles the fixed set of built-in macros. ok is false
// when name does not name a built-in, so the caller falls through to
// the user-defined macro table.
func (x *Expander) invokeBuiltin(name string, args []string) (string, bool, *shellerr.ShellError) {
	switch name {
	case "include":
		if len(args) != 1 {
			return "", true, shellerr.New(shellerr.KindArityMismatch, "include expects 1 argument, got %d", len(args))
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", true, shellerr.Wrap(shellerr.KindNotFound, err, "include %q", args[0])
		}
		return string(data), true, nil

	case "concat":
		return strings.Join(args, ""), true, nil

	case "repeat":
		if len(args) != 2 {
			return "", true, shellerr.New(shellerr.KindArityMismatch, "repeat expects 2 arguments, got %d", len(args))
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return "", true, shellerr.New(shellerr.KindTypeMismatch, "repeat expects a non-negative integer count, got %q", args[1])
		}
		return strings.Repeat(args[0], n), true, nil

	case "stringify":
		quoted := make([]string, len(args))
		for i, a := range args {
			quoted[i] = strconv.Quote(a)
		}
		return strings.Join(quoted, ", "), true, nil

	case "env":
		if len(args) != 1 {
			return "", true, shellerr.New(shellerr.KindArityMismatch, "env expects 1 argument, got %d", len(args))
		}
		return os.Getenv(args[0]), true, nil

	case "date":
		layout := time.RFC3339
		if len(args) == 1 && args[0] != "" {
			layout = args[0]
		}
		return time.Now().UTC().Format(layout), true, nil

	case "version":
		return runtimeVersion, true, nil

	default:
		return "", false, nil
	}
}

// runtimeVersion is reported by the version() built-in macro.
var runtimeVersion = "dev"

// SetRuntimeVersion overrides the version() built-in macro's output,
// normally set once at process startup from build metadata.
func SetRuntimeVersion(v string) {
	if v != "" {
		runtimeVersion = v
	}
}
