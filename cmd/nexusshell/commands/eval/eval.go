// Package eval implements the eval subcommand: evaluate an expression or
// expand a macro given as an argument or read from stdin.
package eval

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/core/eval"
)

var (
	macroMode bool
	maxDepth  int
)

// Cmd is the eval subcommand.
var Cmd = &cobra.Command{
	Use:   "eval [text]",
	Short: "Evaluate an expression or expand a macro",
	Args:  cobra.MaximumNArgs(1),
	Long: `Evaluate one expression or expand one macro body, read from the
given argument or from stdin if omitted.

With --macro, text is expanded through the macro engine (so
${name(args)} invocations are resolved). Without it, text is parsed as
a JSON-encoded expression AST (see eval.Expr) and evaluated directly.

Examples:
  echo '{"Kind":0,"Literal":{"Kind":2,"Int":42}}' | nexusshell eval
  nexusshell eval --macro 'value is ${repeat(ab, 3)}'`,
	RunE: runEval,
}

func init() {
	Cmd.Flags().BoolVar(&macroMode, "macro", false, "expand text as a macro body instead of evaluating a JSON expression")
	Cmd.Flags().IntVar(&maxDepth, "max-macro-depth", 100, "maximum macro expansion nesting depth")
}

func runEval(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	if macroMode {
		expander := eval.NewExpander(maxDepth)
		expanded, shellErr := expander.Expand(text)
		if shellErr != nil {
			return shellErr
		}
		cmd.Println(expanded)
		return nil
	}

	var expr eval.Expr
	if err := json.Unmarshal([]byte(text), &expr); err != nil {
		return err
	}

	evaluator := eval.NewEvaluator()
	scopes := eval.NewScopeStack()

	value, shellErr := evaluator.Eval(expr, scopes)
	if shellErr != nil {
		return shellErr
	}

	cmd.Println(value.String())
	return nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
