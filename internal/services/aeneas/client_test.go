package aeneas

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"plenum/internal/config"
	"plenum/internal/logging"
)

const sampleSyncMap = `{
  "fragments": [
    {"id": "", "begin": "0.000", "end": "1.200", "children": []},
    {"id": "s1-0-0-0", "begin": "1.200", "end": "4.560", "children": []},
    {"id": "s1-0-0-1", "begin": "4.560", "end": "9.880", "children": []},
    {"id": "", "begin": "9.880", "end": "10.000", "children": []}
  ]
}`

func TestParseSyncMapDropsSyntheticFragments(t *testing.T) {
	fragments, err := ParseSyncMap([]byte(sampleSyncMap))
	if err != nil {
		t.Fatalf("ParseSyncMap: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("fragments = %d, want 2", len(fragments))
	}
	first, ok := fragments["s1-0-0-0"]
	if !ok {
		t.Fatal("missing fragment s1-0-0-0")
	}
	if first.Begin != "1.200" || first.End != "4.560" {
		t.Fatalf("fragment = %+v", first)
	}
}

func TestParseSyncMapRejectsGarbage(t *testing.T) {
	if _, err := ParseSyncMap([]byte("{broken")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestAlignRunsConfiguredCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires POSIX sh")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "engine")
	script := "#!/bin/sh\ncp \"$0.payload\" \"$4\"\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if err := os.WriteFile(stub+".payload", []byte(sampleSyncMap), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	cfg := config.Default()
	cfg.Aligner.Binary = stub
	cfg.Aligner.Language = "deu"
	cfg.Aligner.TimeoutSeconds = 30

	client := New(&cfg, logging.NewNop())
	output := filepath.Join(dir, "out.json")
	if err := client.Align(context.Background(), "audio.mp3", "task.txt", output); err != nil {
		t.Fatalf("Align: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	fragments, err := ParseSyncMap(data)
	if err != nil {
		t.Fatalf("ParseSyncMap: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("fragments = %d, want 2", len(fragments))
	}
}

func TestAlignReportsEngineFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires POSIX sh")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "engine")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	cfg := config.Default()
	cfg.Aligner.Binary = stub

	client := New(&cfg, logging.NewNop())
	err := client.Align(context.Background(), "a", "b", filepath.Join(dir, "c"))
	if err == nil {
		t.Fatal("expected engine failure")
	}
}
