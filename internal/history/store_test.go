package history_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"titlemark/internal/check"
	"titlemark/internal/config"
	"titlemark/internal/history"
	"titlemark/internal/markers"
	"titlemark/internal/testsupport"
)

func mustOpenStore(t *testing.T, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(started time.Time) *check.Report {
	return &check.Report{
		StartedAt:  started,
		FinishedAt: started.Add(150 * time.Millisecond),
		Files: []check.FileResult{
			{
				Path: "/maps/set/easy.osu",
				Violations: []markers.Violation{
					{Kind: markers.KindTVSize, Field: markers.FieldRomanized, Actual: "Song (tv size)", Expected: "(TV Size)"},
					{Kind: markers.KindTVSize, Field: markers.FieldUnicode, Actual: "曲 (tv size)", Expected: "(TV Size)"},
				},
			},
			{Path: "/maps/set/broken.osu", Err: errors.New("boom")},
			{Path: "/maps/set/clean.osu"},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mustOpenStore(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 5, time.UTC)
	run, err := store.Record(ctx, sampleReport(started), []string{"/maps"})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if run.ID == "" || run.Files != 3 || run.Violations != 2 || run.Failed != 1 {
		t.Fatalf("unexpected run %+v", run)
	}

	got, violations, err := store.Get(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}
	want := []history.StoredViolation{
		{Path: "/maps/set/easy.osu", Violation: markers.Violation{Kind: markers.KindTVSize, Field: markers.FieldRomanized, Actual: "Song (tv size)", Expected: "(TV Size)"}},
		{Path: "/maps/set/easy.osu", Violation: markers.Violation{Kind: markers.KindTVSize, Field: markers.FieldUnicode, Actual: "曲 (tv size)", Expected: "(TV Size)"}},
	}
	if diff := cmp.Diff(want, violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestGetErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mustOpenStore(t, cfg)
	ctx := context.Background()

	if _, _, err := store.Get(ctx, "deadbeef"); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, _, err := store.Get(ctx, "%"); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound for wildcard, got %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		if _, err := store.Record(ctx, sampleReport(base.Add(time.Duration(i)*time.Second)), nil); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}
	// 40 random UUIDs cannot all start with distinct hex digits.
	var ambiguous bool
	for _, prefix := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c", "d", "e", "f"} {
		if _, _, err := store.Get(ctx, prefix); errors.Is(err, history.ErrAmbiguousID) {
			ambiguous = true
			break
		}
	}
	if !ambiguous {
		t.Fatal("expected at least one ambiguous single-character prefix")
	}
}

func TestGetPrefersExactID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := sampleReport(base)
	older.ID = "abc"
	newer := sampleReport(base.Add(time.Minute))
	newer.ID = "abcd"
	for _, report := range []*check.Report{older, newer} {
		if _, err := store.Record(ctx, report, nil); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	run, _, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get(abc) returned error: %v", err)
	}
	if run.ID != "abc" {
		t.Fatalf("Get(abc) = %q, want exact match", run.ID)
	}
	if _, _, err := store.Get(ctx, "ab"); !errors.Is(err, history.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID for shared prefix, got %v", err)
	}
}

func TestListAndPrune(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		run, err := store.Record(ctx, sampleReport(base.Add(time.Duration(i)*time.Minute)), []string{"/maps"})
		if err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	var got []string
	for _, r := range runs {
		got = append(got, r.ID)
	}
	if diff := cmp.Diff([]string{ids[4], ids[3], ids[2]}, got); diff != "" {
		t.Fatalf("List order mismatch (-want +got):\n%s", diff)
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 runs pruned, got %d", removed)
	}
	runs, err = store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[4] || runs[1].ID != ids[3] {
		t.Fatalf("unexpected runs after prune: %+v", runs)
	}
	if _, _, err := store.Get(ctx, ids[0]); !errors.Is(err, history.ErrRunNotFound) {
		t.Fatalf("expected pruned run to be gone, got %v", err)
	}

	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var orphans int
	if err := db.QueryRow(`SELECT COUNT(1) FROM violations WHERE run_id NOT IN (SELECT id FROM runs)`).Scan(&orphans); err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("expected violations to cascade, found %d orphans", orphans)
	}

	if removed, err := store.Prune(ctx, 0); err != nil || removed != 0 {
		t.Fatalf("Prune(0) = %d, %v; want no-op", removed, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
