package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithNavTimeoutCancelsStalledStep(t *testing.T) {
	start := time.Now()
	err := WithNavTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) error {
		// Simulates a navigation that never completes.
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("stalled step held the worker for %v", elapsed)
	}
}

func TestWithNavTimeoutPassesResultThrough(t *testing.T) {
	wantErr := errors.New("navigation failed")
	err := WithNavTimeout(context.Background(), time.Second, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("step context should carry a deadline")
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the step's own error", err)
	}
}

func TestWithNavTimeoutZeroDisablesGuard(t *testing.T) {
	err := WithNavTimeout(context.Background(), 0, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			t.Error("zero timeout must not add a deadline")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
}
