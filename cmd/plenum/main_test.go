package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plenum/internal/catalog"
	"plenum/internal/config"
	"plenum/internal/session"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[ner]\nenabled = false\n",
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func (env *cliTestEnv) openStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(env.cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got %q", needle, haystack)
	}
}

func TestCLISessionsLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	out, _, err := runCLI(t, []string{"sessions", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	requireContains(t, out, "Catalog is empty")

	if _, err := store.NewSession(ctx, "20021", 20, 21, "", ""); err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	failed, err := store.NewSession(ctx, "20022", 20, 22, "", "")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	failed.SetFailed("merge exploded")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	out, _, err = runCLI(t, []string{"sessions", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	requireContains(t, out, "20021")
	requireContains(t, out, "merge exploded")

	out, _, err = runCLI(t, []string{"sessions", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions status: %v", err)
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, []string{"sessions", "retry", "20022"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions retry: %v", err)
	}
	requireContains(t, out, "Reset 1 failed session(s)")

	retried, err := store.GetByKey(ctx, "20022")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if retried.Status != catalog.StatusPending {
		t.Fatalf("retried status = %q", retried.Status)
	}

	out, _, err = runCLI(t, []string{"sessions", "remove", "20022"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions remove: %v", err)
	}
	requireContains(t, out, "Removed session 20022")

	if _, _, err := runCLI(t, []string{"sessions", "clear"}, env.configPath); err == nil {
		t.Fatal("sessions clear without --yes must fail")
	}
	out, _, err = runCLI(t, []string{"sessions", "clear", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions clear --yes: %v", err)
	}
	requireContains(t, out, "Removed 1 session(s)")
}

func TestCLIStageAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	media := &session.Document{
		Meta: session.Meta{Session: "20021", Period: 20},
		Data: []*session.SpeechItem{{
			SpeechIndex: 1,
			People:      []*session.Person{{Label: "Bärbel Bas", Context: session.ContextMainSpeaker}},
		}},
	}
	if err := session.Save(catalog.MediaPath(env.cfg, "20021"), media); err != nil {
		t.Fatalf("save media: %v", err)
	}

	out, _, err := runCLI(t, []string{"stage", "merge", "20021"}, env.configPath)
	if err != nil {
		t.Fatalf("stage merge: %v", err)
	}
	requireContains(t, out, "Stage merge completed for session 20021")

	out, _, err = runCLI(t, []string{"show", "20021"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Session 20021")
	requireContains(t, out, "merged")
	requireContains(t, out, "Merge quality")

	if _, _, err := runCLI(t, []string{"show", "99999"}, env.configPath); err == nil {
		t.Fatal("show for unknown session must fail")
	}

	if _, _, err := runCLI(t, []string{"stage", "bogus", "20021"}, env.configPath); err == nil {
		t.Fatal("unknown stage must fail")
	}
}

func TestCLISessionsSync(t *testing.T) {
	env := setupCLITestEnv(t)

	media := &session.Document{
		Meta: session.Meta{Session: "20021", Period: 20},
		Data: []*session.SpeechItem{{
			SpeechIndex: 1,
			People:      []*session.Person{{Label: "Bärbel Bas", Context: session.ContextMainSpeaker}},
		}},
	}
	if err := session.Save(catalog.MediaPath(env.cfg, "20021"), media); err != nil {
		t.Fatalf("save media: %v", err)
	}

	out, _, err := runCLI(t, []string{"sessions", "sync"}, env.configPath)
	if err != nil {
		t.Fatalf("sessions sync: %v", err)
	}
	requireContains(t, out, "Added 1 session(s)")
}
