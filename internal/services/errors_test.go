package services_test

import (
	"errors"
	"strings"
	"testing"

	"axon/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "embedding", "start", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"embedding", "start", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "classify", "run", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient default marker, got %v", err)
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %v", err)
	}
}
