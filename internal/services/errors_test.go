package services_test

import (
	"errors"
	"strings"
	"testing"

	"plenum/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("engine exited 1")
	err := services.Wrap(services.ErrExternalTool, "align", "run engine", "forced alignment failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected ErrExternalTool marker")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped base error")
	}
	for _, fragment := range []string{"align", "run engine", "forced alignment failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("missing %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "merge", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected transient fallback marker")
	}
}

func TestMarkerOf(t *testing.T) {
	cases := map[string]error{
		"missing_source":     services.Wrap(services.ErrMissingSource, "merge", "", "", nil),
		"external_tool":      services.Wrap(services.ErrExternalTool, "align", "", "", nil),
		"resource_exhausted": services.Wrap(services.ErrResourceExhausted, "align", "", "", nil),
		"unknown":            errors.New("plain"),
	}
	for want, err := range cases {
		if got := services.MarkerOf(err); got != want {
			t.Fatalf("MarkerOf(%v) = %q, want %q", err, got, want)
		}
	}
	if got := services.MarkerOf(nil); got != "" {
		t.Fatalf("MarkerOf(nil) = %q", got)
	}
}
