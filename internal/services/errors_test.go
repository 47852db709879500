package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "apply", "write dates", "exiftool failed", inner)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := Wrap(nil, "apply", "", "something broke", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("nil marker should default to ErrExternalTool, got %v", err)
	}
}

func TestIsTimeout(t *testing.T) {
	err := Wrap(ErrTimeout, "probe", "read metadata", "killed after deadline", nil)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout classification for %v", err)
	}
	if IsTimeout(errors.New("other")) {
		t.Fatal("unrelated error classified as timeout")
	}
}
