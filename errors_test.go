package gocoro

import (
	"errors"
	"testing"
)

func TestIsCode_MatchesAndMismatches(t *testing.T) {
	err := &Error{Op: "Resume", Code: ErrCoroutineUnexist}

	if !IsCode(err, ErrCoroutineUnexist) {
		t.Error("IsCode should return true for matching code")
	}
	if IsCode(err, ErrNotRunning) {
		t.Error("IsCode should return false for non-matching code")
	}
	if IsCode(nil, ErrCoroutineUnexist) {
		t.Error("IsCode should return false for nil error")
	}
}

func TestError_IsAcrossConstructors(t *testing.T) {
	a := &Error{Op: "StopTimer", Code: ErrTimerUnexisted}
	b := &Error{Op: "ReStartTimer", Code: ErrTimerUnexisted}

	if !errors.Is(a, b) {
		t.Error("two *Error values with the same Code should satisfy errors.Is")
	}
}

func TestError_MessageFormatting(t *testing.T) {
	err := &Error{Op: "Put", Code: ErrCacheBlockNotEnough, Msg: "need 4 remain 2"}
	want := "Put: need 4 remain 2"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
