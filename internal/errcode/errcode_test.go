package errcode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCode_String(t *testing.T) {
	require.Equal(t, "CO_COROUTINE_UNEXIST", CoroutineUnexist.String())
	require.Equal(t, "TIMER_UNEXISTED", TimerUnexisted.String())
	require.Equal(t, "CACHE_BLOCK_NOT_ENOUGH", CacheBlockNotEnough.String())
	require.Contains(t, Code(-999).String(), "CODE(-999)")
}

func TestError_MessageFallsBackToCode(t *testing.T) {
	err := New("Resume", CoroutineNotRunning)
	require.Equal(t, "Resume: CO_NOT_RUNNING", err.Error())
}

func TestError_Newf(t *testing.T) {
	err := Newf("StartTimer", TimerInvalidParam, "timeout_ms=%d", -5)
	require.Equal(t, "StartTimer: timeout_ms=-5", err.Error())
}

func TestError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap("Get", CoroutineStatusError, cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, cause, errors.Unwrap(err))
}

func TestError_IsComparesCodeOnly(t *testing.T) {
	a := Newf("StopTimer", TimerUnexisted, "id=3")
	b := New("ReStartTimer", TimerUnexisted)
	c := New("StopTimer", TimerInCallback)

	require.True(t, errors.Is(a, b))
	require.False(t, errors.Is(a, c))
}
