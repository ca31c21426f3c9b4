package shellerr

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"time"
)

// FromError converts a standard library error into a *ShellError,
// classifying the canonical stdlib error types the core engines encounter
// (filesystem errors, address-parse errors, JSON errors, system-time
// errors, and semaphore acquisition errors). Errors that are already a
// *ShellError pass through unchanged. Unrecognized errors become
// CategoryInternal/KindBug so nothing silently loses its cause.
func FromError(err error) *ShellError {
	if err == nil {
		return nil
	}

	var se *ShellError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(KindNotFound, err, "resource not found")
	case errors.Is(err, fs.ErrPermission):
		return Wrap(KindPermissionDenied, err, "permission denied")
	case errors.Is(err, fs.ErrExist):
		return Wrap(KindAlreadyExists, err, "resource already exists")
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(KindTimeout, err, "operation timed out")
	case errors.Is(err, context.Canceled):
		return Wrap(KindTimeout, err, "operation was canceled")
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return Wrap(KindIOOther, err, "i/o error on %q", pathErr.Path).
			WithContext("op", pathErr.Op)
	}

	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return Wrap(KindAddressParse, err, "invalid address %q", addrErr.Addr)
	}

	var jsonSyntaxErr *json.SyntaxError
	if errors.As(err, &jsonSyntaxErr) {
		return Wrap(KindJSONError, err, "json syntax error at offset %d", jsonSyntaxErr.Offset)
	}

	var jsonTypeErr *json.UnmarshalTypeError
	if errors.As(err, &jsonTypeErr) {
		return Wrap(KindJSONError, err, "json type mismatch: expected %s, field %q", jsonTypeErr.Type, jsonTypeErr.Field)
	}

	var parseErr *time.ParseError
	if errors.As(err, &parseErr) {
		return Wrap(KindSystemTime, err, "failed to parse time %q", parseErr.Value)
	}

	if isSemaphoreError(err) {
		return Wrap(KindSemaphoreFailure, err, "failed to acquire semaphore")
	}

	return Wrap(KindBug, err, "unclassified error")
}

// isSemaphoreError recognizes the sentinel error returned by
// golang.org/x/sync/semaphore.Weighted.Acquire when ctx is done before a
// permit becomes available. That error is exactly ctx.Err(), so by the
// time FromError's context.DeadlineExceeded / context.Canceled branches
// run above, any semaphore-contention error has already been classified
// as Timeout; this hook exists for callers that construct their own
// "semaphore exhausted" sentinel without a context error underneath.
func isSemaphoreError(err error) bool {
	return errors.Is(err, errSemaphoreExhausted)
}

// errSemaphoreExhausted is a sentinel an executor can wrap when a
// non-blocking TryAcquire fails, distinct from a context cancellation.
var errSemaphoreExhausted = errors.New("semaphore: no permit available")

// ErrSemaphoreExhausted returns the sentinel recognized by FromError for
// non-blocking semaphore acquisition failures.
func ErrSemaphoreExhausted() error {
	return errSemaphoreExhausted
}
