package exiftool

import (
	"context"
	"errors"
	"testing"
	"time"

	"chronofix/internal/services"
)

func TestCommandExecutorDeadlineIsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, _, err := commandExecutor{}.Run(ctx, "sleep", []string{"10"})
	if !services.IsTimeout(err) {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestCommandExecutorCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := commandExecutor{}.Run(ctx, "sleep", []string{"10"})
	if err == nil {
		t.Fatal("expected error from cancelled run")
	}
	if services.IsTimeout(err) {
		t.Fatalf("err = %v, cancellation must not carry the timeout marker", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
