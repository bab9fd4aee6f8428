package gocoro

import (
	"errors"

	"github.com/ehrlich-b/gocoro/internal/errcode"
)

// Code is the public alias of the internal stable error code type
// (spec §6), re-exported so callers can discriminate failures without
// importing an internal package.
type Code = errcode.Code

// Coroutine core codes.
const (
	ErrInvalidParam               = errcode.CoroutineInvalidParam
	ErrCannotResumeInCoroutine    = errcode.CoroutineCannotResumeInCoroutine
	ErrCoroutineUnexist           = errcode.CoroutineUnexist
	ErrCoroutineStatusError       = errcode.CoroutineStatusError
	ErrNotInCoroutine             = errcode.CoroutineNotInCoroutine
	ErrNotRunning                 = errcode.CoroutineNotRunning
	ErrTimeout                    = errcode.CoroutineTimeout
	ErrStartTimerFailed           = errcode.CoroutineStartTimerFailed
)

// Sequence timer codes.
const (
	ErrTimerInvalidParam  = errcode.TimerInvalidParam
	ErrTimerUnexisted     = errcode.TimerUnexisted
	ErrTimerInCallback    = errcode.TimerInCallback
	ErrTimerBeRemoved     = errcode.TimerBeRemoved
	ErrTimerNumOutOfRange = errcode.TimerNumOutOfRange
)

// KV cache codes.
const (
	ErrCacheBlockNotEnough = errcode.CacheBlockNotEnough
	ErrCacheKeyUnexist     = errcode.CacheKeyUnexist
	ErrCacheInvalidParam   = errcode.CacheInvalidParam
)

// Error is the structured error type returned by this package's
// operations: an Op naming what failed, a stable Code, and an
// optional wrapped cause, matching the teacher's *ublk.Error.
type Error = errcode.Error

// IsCode reports whether err is (or wraps) an *Error carrying code,
// mirroring the teacher's ublk.IsCode helper.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
