package catalog_test

import (
	"context"
	"os"
	"testing"

	"plenum/internal/catalog"
	"plenum/internal/testsupport"
)

func TestStoreLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record, err := store.NewSession(ctx, "20021", 20, 21, "/tmp/20021-media.json", "/tmp/20021-proceedings.json")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if record.Status != catalog.StatusPending {
		t.Fatalf("status = %q, want pending", record.Status)
	}
	if record.Period != 20 || record.Number != 21 {
		t.Fatalf("period/number = %d/%d", record.Period, record.Number)
	}

	record.Status = catalog.StatusMerged
	record.MergedFile = "/tmp/20021-merged.json"
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByKey(ctx, "20021")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if fetched == nil || fetched.Status != catalog.StatusMerged || fetched.MergedFile != "/tmp/20021-merged.json" {
		t.Fatalf("fetched = %+v", fetched)
	}

	missing, err := store.GetByKey(ctx, "20999")
	if err != nil {
		t.Fatalf("GetByKey missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown key, got %+v", missing)
	}
}

func TestNextForStatusesOrdersByKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, key := range []string{"20023", "20021", "20022"} {
		if _, err := store.NewSession(ctx, key, 20, 0, "", ""); err != nil {
			t.Fatalf("NewSession(%s): %v", key, err)
		}
	}

	next, err := store.NextForStatuses(ctx, catalog.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.SessionKey != "20021" {
		t.Fatalf("next = %+v, want 20021", next)
	}

	none, err := store.NextForStatuses(ctx, catalog.StatusFailed)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no failed session, got %+v", none)
	}
}

func TestResetStuckProcessingRollsBackOneStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stuck, err := store.NewSession(ctx, "20030", 20, 30, "", "")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	stuck.Status = catalog.StatusAligning
	if err := store.Update(ctx, stuck); err != nil {
		t.Fatalf("Update: %v", err)
	}

	affected, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	fetched, err := store.GetByKey(ctx, "20030")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if fetched.Status != catalog.StatusLinked {
		t.Fatalf("status after reset = %q, want linked", fetched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record, err := store.NewSession(ctx, "20040", 20, 40, "", "")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	record.SetFailed("engine crashed")
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update: %v", err)
	}

	affected, err := store.RetryFailed(ctx, "20040")
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	fetched, err := store.GetByKey(ctx, "20040")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if fetched.Status != catalog.StatusPending || fetched.ErrorMessage != "" {
		t.Fatalf("fetched = %+v", fetched)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	states := map[string]catalog.Status{
		"20001": catalog.StatusPending,
		"20002": catalog.StatusMerging,
		"20003": catalog.StatusCompleted,
		"20004": catalog.StatusFailed,
	}
	for key, status := range states {
		record, err := store.NewSession(ctx, key, 20, 0, "", "")
		if err != nil {
			t.Fatalf("NewSession(%s): %v", key, err)
		}
		record.Status = status
		if err := store.Update(ctx, record); err != nil {
			t.Fatalf("Update(%s): %v", key, err)
		}
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	want := catalog.HealthSummary{Total: 4, Pending: 1, Processing: 1, Failed: 1, Completed: 1}
	if health != want {
		t.Fatalf("health = %+v, want %+v", health, want)
	}
}

func TestParseAndFormatKey(t *testing.T) {
	period, number, err := catalog.ParseKey("20021")
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if period != 20 || number != 21 {
		t.Fatalf("ParseKey = %d/%d", period, number)
	}
	if key := catalog.FormatKey(20, 21); key != "20021" {
		t.Fatalf("FormatKey = %q", key)
	}
	for _, bad := range []string{"", "2002", "abcde", "200210"} {
		if _, _, err := catalog.ParseKey(bad); err == nil {
			t.Fatalf("ParseKey(%q) should fail", bad)
		}
	}
}

func TestSyncDiscoversAndRequeues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.WriteJSON(t, catalog.MediaPath(cfg, "20021"), map[string]any{"data": []any{}})
	testsupport.WriteJSON(t, catalog.MediaPath(cfg, "20022"), map[string]any{"data": []any{}})
	testsupport.WriteJSON(t, catalog.ProceedingsPath(cfg, "20021"), map[string]any{"data": []any{}})
	// A file that does not look like a session key is ignored.
	testsupport.WriteJSON(t, catalog.MediaPath(cfg, "notes"), map[string]any{})

	added, requeued, err := store.Sync(ctx, cfg)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if added != 2 || requeued != 0 {
		t.Fatalf("added/requeued = %d/%d", added, requeued)
	}

	record, err := store.GetByKey(ctx, "20021")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if record.ProceedingsFile == "" {
		t.Fatal("proceedings file not recorded")
	}
	other, err := store.GetByKey(ctx, "20022")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if other.ProceedingsFile != "" {
		t.Fatalf("unexpected proceedings file %q", other.ProceedingsFile)
	}

	// Completing a session and touching its source queues it again.
	record.Status = catalog.StatusCompleted
	record.FinalFile = catalog.FinalPath(cfg, "20021")
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update: %v", err)
	}
	// Final file is missing on disk, so the sources count as newer.
	added, requeued, err = store.Sync(ctx, cfg)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if added != 0 || requeued != 1 {
		t.Fatalf("added/requeued = %d/%d", added, requeued)
	}
}

func TestSyncHonorsPeriodFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Period = 20
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.WriteJSON(t, catalog.MediaPath(cfg, "20021"), map[string]any{})
	testsupport.WriteJSON(t, catalog.MediaPath(cfg, "19001"), map[string]any{})

	added, _, err := store.Sync(ctx, cfg)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if record, _ := store.GetByKey(ctx, "19001"); record != nil {
		t.Fatalf("session outside period was added: %+v", record)
	}
}

func TestOpenCreatesDatabaseFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if _, err := os.Stat(store.Path()); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
}
