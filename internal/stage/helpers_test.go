package stage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"plenum/internal/services"
)

func TestLoadDocument_Missing(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "absent.json"), "merge")
	if !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected missing source error, got %v", err)
	}
}

func TestLoadDocument_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{invalid"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadDocument(path, "merge")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadDocument_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"meta":{"session":"20021"},"data":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := LoadDocument(path, "merge")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Meta.Session != "20021" {
		t.Fatalf("unexpected session: %q", doc.Meta.Session)
	}
}
