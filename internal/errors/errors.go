package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// coreMarker is implemented by every error kind the connection core
// distinguishes, so callers can classify without a type switch over five
// concrete types.
type coreMarker interface {
	error
	isCore()
}

// AdmissionError covers accept/getsockname/getsockopt failures while
// admitting a new connection. The listener logs it and continues; no
// Client is ever constructed for an admission error.
type AdmissionError struct {
	Op  string // e.g. "accept", "getsockname", "getsockopt"
	Err error
}

func (e *AdmissionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("admission error: %s", e.Op)
	}
	return fmt.Sprintf("admission error: %s: %v", e.Op, e.Err)
}
func (e *AdmissionError) Unwrap() error { return e.Err }
func (e *AdmissionError) isCore()       {}

// LoopInitError covers failures initialising a Client's event loop
// (watcher/goroutine setup, typically fd exhaustion). The Client skips
// running its loop and proceeds directly to teardown.
type LoopInitError struct {
	Op  string
	Err error
}

func (e *LoopInitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("loop init error: %s", e.Op)
	}
	return fmt.Sprintf("loop init error: %s: %v", e.Op, e.Err)
}
func (e *LoopInitError) Unwrap() error { return e.Err }
func (e *LoopInitError) isCore()       {}

// TransportError covers runtime read/write failures on a live connection
// (read returns 0 or error, write returns a fatal error). It always stops
// the client's loop.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport error: %s", e.Op)
	}
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) isCore()       {}

// TimeoutError indicates an RTP session idle check exceeded a threshold
// (soft BYE or hard kick), or any other operation exceeding a deadline.
type TimeoutError struct {
	Op       string
	Duration time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (after %s)", e.Op, e.Duration)
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}
func (e *TimeoutError) Unwrap() error { return e.Err }
func (e *TimeoutError) isCore()       {}

// ShutdownError marks a loop stop caused by a registry-wide broadcast
// rather than a per-connection failure. Teardown is identical to the
// runtime-error path; this type exists only so logs and tests can tell
// the two apart.
type ShutdownError struct {
	Err error
}

func (e *ShutdownError) Error() string {
	if e.Err == nil {
		return "shutdown"
	}
	return "shutdown: " + e.Err.Error()
}
func (e *ShutdownError) Unwrap() error { return e.Err }
func (e *ShutdownError) isCore()       {}

// IsTimeout returns true if err is (or wraps) a TimeoutError, a context
// deadline exceeded, or any error type that exposes Timeout() bool and
// returns true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if stdErrors.As(err, &te) {
		return true
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var toErr interface{ Timeout() bool }
	if stdErrors.As(err, &toErr) && toErr.Timeout() {
		return true
	}
	return false
}

// IsCoreError returns true if the error chain contains any of the five
// connection-core error kinds.
func IsCoreError(err error) bool {
	if err == nil {
		return false
	}
	var cm coreMarker
	return stdErrors.As(err, &cm)
}

// Constructors (encourage contextual wrapping with %w when used by callers).
func NewAdmissionError(op string, cause error) error { return &AdmissionError{Op: op, Err: cause} }
func NewLoopInitError(op string, cause error) error  { return &LoopInitError{Op: op, Err: cause} }
func NewTransportError(op string, cause error) error { return &TransportError{Op: op, Err: cause} }
func NewTimeoutError(op string, d time.Duration, cause error) error {
	return &TimeoutError{Op: op, Duration: d, Err: cause}
}
func NewShutdownError(cause error) error { return &ShutdownError{Err: cause} }
