package shellerr

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellErrorFormatting(t *testing.T) {
	t.Run("BasicMessage", func(t *testing.T) {
		err := New(KindUnknownVariable, "variable %q is not bound", "x")
		assert.Equal(t, `Runtime: variable "x" is not bound`, err.Error())
	})

	t.Run("WithLocationAndContext", func(t *testing.T) {
		err := New(KindUnexpectedToken, "unexpected token").
			WithLocation(Location{File: "script.nxs", Line: 3, Column: 10}).
			WithContext("token", "}").
			WithContext("expected", "{")

		msg := err.Error()
		assert.Contains(t, msg, "at script.nxs:3:10")
		assert.Contains(t, msg, "expected={, token=}")
	})

	t.Run("ChainsInnerCause", func(t *testing.T) {
		inner := errors.New("disk full")
		err := Wrap(KindIOOther, inner, "failed to write history")
		assert.Contains(t, err.Error(), "Caused by: disk full")
	})
}

func TestShellErrorSeverityAndRecoverability(t *testing.T) {
	t.Run("ParseErrorsAreRecoverable", func(t *testing.T) {
		err := New(KindUnexpectedToken, "bad token")
		assert.True(t, err.IsRecoverable())
		assert.Equal(t, SeverityWarning, err.Severity())
	})

	t.Run("SecurityErrorsAreNeverRecoverable", func(t *testing.T) {
		err := New(KindCapabilityDenied, "process.spawn denied")
		assert.False(t, err.IsRecoverable())
		assert.Equal(t, SeverityCritical, err.Severity())
	})

	t.Run("InternalErrorsAreNeverRecoverable", func(t *testing.T) {
		err := New(KindBug, "unreachable state reached")
		assert.False(t, err.IsRecoverable())
		assert.Equal(t, SeverityFatal, err.Severity())
	})

	t.Run("UnknownVariableRuntimeErrorIsRecoverable", func(t *testing.T) {
		err := New(KindUnknownVariable, "undefined: y")
		assert.True(t, err.IsRecoverable())
	})

	t.Run("NotFoundIoErrorIsRecoverable", func(t *testing.T) {
		err := New(KindNotFound, "no such file")
		assert.True(t, err.IsRecoverable())
	})

	t.Run("EverySeverityIsDeterministic", func(t *testing.T) {
		kinds := []Kind{KindUnexpectedToken, KindCapabilityDenied, KindBug, KindNotFound, KindDivisionByZero}
		for _, k := range kinds {
			e1 := &ShellError{Kind: k, Message: "x"}
			e2 := &ShellError{Kind: k, Message: "y"}
			assert.Equal(t, e1.Severity(), e2.Severity())
			assert.Equal(t, e1.IsRecoverable(), e2.IsRecoverable())
		}
	})

	t.Run("EveryShellErrorHasNonEmptyMessage", func(t *testing.T) {
		err := New(KindDivisionByZero, "division by zero")
		assert.NotEmpty(t, err.Message)
	})
}

func TestRecoverySuggestions(t *testing.T) {
	t.Run("KnownKindReturnsSuggestions", func(t *testing.T) {
		err := New(KindCapabilityDenied, "denied")
		assert.NotEmpty(t, err.RecoverySuggestions())
	})

	t.Run("UnregisteredKindReturnsNil", func(t *testing.T) {
		err := New(KindUnknownClosure, "missing closure")
		assert.Nil(t, err.RecoverySuggestions())
	})
}

func TestFromError(t *testing.T) {
	t.Run("PassesThroughShellError", func(t *testing.T) {
		original := New(KindTimeout, "took too long")
		converted := FromError(original)
		assert.Same(t, original, converted)
	})

	t.Run("ClassifiesNotExist", func(t *testing.T) {
		_, statErr := os.Stat("/no/such/path/nexusshell-test")
		converted := FromError(statErr)
		require.NotNil(t, converted)
		assert.Equal(t, KindNotFound, converted.Kind)

		var pathErr *os.PathError
		assert.True(t, errors.As(converted.Inner, &pathErr))
	})

	t.Run("ClassifiesJSONSyntaxError", func(t *testing.T) {
		var v any
		jsonErr := json.Unmarshal([]byte("{not json"), &v)
		converted := FromError(jsonErr)
		assert.Equal(t, KindJSONError, converted.Kind)
	})

	t.Run("ClassifiesContextDeadlineExceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()
		<-ctx.Done()
		converted := FromError(ctx.Err())
		assert.Equal(t, KindTimeout, converted.Kind)
	})

	t.Run("ClassifiesSemaphoreExhaustion", func(t *testing.T) {
		converted := FromError(ErrSemaphoreExhausted())
		assert.Equal(t, KindSemaphoreFailure, converted.Kind)
	})

	t.Run("ClassifiesTimeParseError", func(t *testing.T) {
		_, parseErr := time.Parse(time.RFC3339, "not-a-time")
		converted := FromError(parseErr)
		assert.Equal(t, KindSystemTime, converted.Kind)
	})

	t.Run("FallsBackToBugForUnknownErrors", func(t *testing.T) {
		converted := FromError(errors.New("something weird"))
		assert.Equal(t, KindBug, converted.Kind)
	})

	t.Run("NilErrorYieldsNilShellError", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})
}

func TestErrorsIsSupport(t *testing.T) {
	t.Run("MatchesSameKind", func(t *testing.T) {
		target := &ShellError{Kind: KindTimeout}
		err := New(KindTimeout, "slow")
		assert.True(t, errors.Is(err, target))
	})

	t.Run("DoesNotMatchDifferentKind", func(t *testing.T) {
		target := &ShellError{Kind: KindTimeout}
		err := New(KindBug, "oops")
		assert.False(t, errors.Is(err, target))
	})
}

func TestResult(t *testing.T) {
	t.Run("OkHoldsValue", func(t *testing.T) {
		r := Ok(42)
		assert.True(t, r.IsOk())
		assert.Equal(t, 42, r.Value())
		assert.Nil(t, r.Error())
	})

	t.Run("ErrHoldsError", func(t *testing.T) {
		e := New(KindBug, "boom")
		r := Err[int](e)
		assert.True(t, r.IsErr())
		assert.Equal(t, 0, r.Value())
		assert.Equal(t, e, r.Error())
	})

	t.Run("MapTransformsOkValue", func(t *testing.T) {
		r := Map(Ok(2), func(n int) int { return n * 10 })
		assert.Equal(t, 20, r.Value())
	})

	t.Run("MapPassesThroughError", func(t *testing.T) {
		e := New(KindBug, "boom")
		r := Map(Err[int](e), func(n int) int { return n * 10 })
		assert.True(t, r.IsErr())
		assert.Equal(t, e, r.Error())
	})

	t.Run("AndThenChains", func(t *testing.T) {
		r := AndThen(Ok(2), func(n int) Result[string] {
			if n == 0 {
				return Err[string](New(KindDivisionByZero, "zero"))
			}
			return Ok("ok")
		})
		assert.True(t, r.IsOk())
		assert.Equal(t, "ok", r.Value())
	})
}

func TestLocationString(t *testing.T) {
	t.Run("WithFile", func(t *testing.T) {
		loc := Location{File: "a.nxs", Line: 1, Column: 2}
		assert.Equal(t, "a.nxs:1:2", loc.String())
	})

	t.Run("WithoutFile", func(t *testing.T) {
		loc := Location{Line: 1, Column: 2}
		assert.Equal(t, "1:2", loc.String())
	})

	t.Run("ZeroValueIsZero", func(t *testing.T) {
		assert.True(t, Location{}.IsZero())
	})
}
