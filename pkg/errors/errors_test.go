package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidStrategy, "unknown strategy: %s", "cutline-fancy")
	want := "INVALID_STRATEGY: unknown strategy: cutline-fancy"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeWorkerFailed, cause, "worker %d", 3)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if got := err.Error(); got != "WORKER_FAILED: worker 3: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeBucketBound, "bucket index %d out of range", 99)

	if !Is(err, ErrCodeBucketBound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeProbabilityRange) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeBucketBound) {
		t.Error("Is should not match a plain error")
	}
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	inner := New(ErrCodeDistanceMismatch, "forward 5 vs backward 7")
	outer := fmt.Errorf("analyze connection: %w", inner)

	if !Is(outer, ErrCodeDistanceMismatch) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
	if GetCode(outer) != ErrCodeDistanceMismatch {
		t.Errorf("GetCode = %q", GetCode(outer))
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeProbabilityRange, "probability 1.2 outside [0,1]")
	if got := UserMessage(err); got != "probability 1.2 outside [0,1]" {
		t.Errorf("UserMessage = %q", got)
	}
	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
