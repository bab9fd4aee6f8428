// Package errcode defines the stable numeric error codes shared by the
// coroutine, timer, and cache packages (spec §6 EXTERNAL INTERFACES,
// §7 ERROR HANDLING DESIGN), plus a structured error type that carries
// one. This generalizes the teacher's errors.go (*ublk.Error with Op,
// Code, Msg, Inner, Unwrap/Is support) from ublk-specific error
// categories to the kCO_*/kTIMER_* codes this spec defines.
package errcode

import "fmt"

// Code is a stable, negative-valued error code per spec §6. Success is
// always 0; a handful of operations (coroutine_status, Get, Peek, ...)
// return non-error non-negative results and are not modeled as Code.
type Code int32

// Coroutine core codes (kCO_*).
const (
	CoroutineInvalidParam Code = -(iota + 1)
	CoroutineCannotResumeInCoroutine
	CoroutineUnexist
	CoroutineStatusError
	CoroutineNotInCoroutine
	CoroutineNotRunning
	CoroutineTimeout
	CoroutineStartTimerFailed
)

// Sequence timer codes (kTIMER_*).
const (
	TimerInvalidParam Code = -(iota + 100)
	TimerUnexisted
	TimerInCallback
	TimerBeRemoved
	TimerNumOutOfRange
)

// KV cache codes (kCACHE_*).
const (
	CacheBlockNotEnough Code = -(iota + 200)
	CacheKeyUnexist
	CacheInvalidParam
)

// String renders the code's symbolic name, falling back to the numeric
// value for unknown codes.
func (c Code) String() string {
	switch c {
	case CoroutineInvalidParam:
		return "CO_INVALID_PARAM"
	case CoroutineCannotResumeInCoroutine:
		return "CO_CANNOT_RESUME_IN_COROUTINE"
	case CoroutineUnexist:
		return "CO_COROUTINE_UNEXIST"
	case CoroutineStatusError:
		return "CO_COROUTINE_STATUS_ERROR"
	case CoroutineNotInCoroutine:
		return "CO_NOT_IN_COROUTINE"
	case CoroutineNotRunning:
		return "CO_NOT_RUNNING"
	case CoroutineTimeout:
		return "CO_TIMEOUT"
	case CoroutineStartTimerFailed:
		return "CO_START_TIMER_FAILED"
	case TimerInvalidParam:
		return "TIMER_INVALID_PARAM"
	case TimerUnexisted:
		return "TIMER_UNEXISTED"
	case TimerInCallback:
		return "TIMER_IN_CALLBACK"
	case TimerBeRemoved:
		return "TIMER_BE_REMOVED"
	case TimerNumOutOfRange:
		return "TIMER_NUM_OUT_OF_RANGE"
	case CacheBlockNotEnough:
		return "CACHE_BLOCK_NOT_ENOUGH"
	case CacheKeyUnexist:
		return "CACHE_KEY_UNEXIST"
	case CacheInvalidParam:
		return "CACHE_INVALID_PARAM"
	default:
		return fmt.Sprintf("CODE(%d)", int32(c))
	}
}

// Error is a structured, coded error returned by scheduler, timer, and
// cache operations. It mirrors the teacher's *ublk.Error: an Op naming
// the failing operation, a stable Code, a human message, and an
// optional wrapped cause.
type Error struct {
	Op    string
	Code  Code
	Msg   string
	Inner error
}

// New creates a coded Error with no message override (uses the code's
// symbolic name) and no wrapped cause.
func New(op string, code Code) *Error {
	return &Error{Op: op, Code: code}
}

// Newf creates a coded Error with a formatted message.
func Newf(op string, code Code, format string, args ...any) *Error {
	return &Error{Op: op, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded Error that wraps an underlying cause.
func Wrap(op string, code Code, inner error) *Error {
	return &Error{Op: op, Code: code, Inner: inner}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

// Unwrap returns the wrapped cause, enabling errors.Is/errors.As through
// the chain.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is reports whether target is an *Error with the same Code, which is
// how call sites are expected to discriminate failures (e.g.
// errors.Is(err, errcode.New("", errcode.TimerUnexisted))).
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}
