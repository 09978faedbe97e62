package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenPath(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenPath(t *testing.T) {
	db := setupTestDB(t)

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("failed to query runs table: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 runs, got %d", count)
	}
}

func TestRecordAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := &Run{
		Instance:   "inst-1",
		Directory:  "/data/inst-1",
		Rejected:   true,
		Problems:   2,
		F2PCount:   3,
		P2PCount:   40,
		ReportPath: "/data/inst-1/analysis_report.json",
		ReportJSON: []byte(`{"run_id":"x"}`),
		Rules: []RuleResult{
			{Key: "c1_failed_in_base_present_in_P2P", Evaluated: true, HasProblem: true, ExampleCount: 1},
			{Key: "c7_f2p_tests_in_golden_source_diff"},
		},
	}
	if err := db.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if len(run.ID) != 36 {
		t.Fatalf("expected a generated uuid, got %q", run.ID)
	}

	got, err := db.GetRun(ctx, run.ID[:8])
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if got.ID != run.ID || got.Instance != "inst-1" || !got.Rejected || got.Problems != 2 || got.P2PCount != 40 {
		t.Errorf("unexpected run: %+v", got)
	}
	if string(got.ReportJSON) != `{"run_id":"x"}` {
		t.Errorf("unexpected report json %q", got.ReportJSON)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", run.CreatedAt, got.CreatedAt)
	}
	if len(got.Rules) != 2 || !got.Rules[0].HasProblem || got.Rules[1].Evaluated {
		t.Errorf("unexpected rules: %+v", got.Rules)
	}

	missing, err := db.GetRun(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}

func TestGetRun_Ambiguous(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"abc-1", "abc-2"} {
		if err := db.RecordRun(ctx, &Run{ID: id}); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	_, err := db.GetRun(ctx, "abc")
	if !errors.Is(err, ErrAmbiguousRun) {
		t.Errorf("expected ErrAmbiguousRun, got %v", err)
	}
}

func TestListRunsAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		run := &Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour), ReportJSON: []byte(`{"big":true}`)}
		if err := db.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].ReportJSON != nil {
		t.Errorf("ListRuns should not load reports")
	}

	n, err := db.DeleteRunsBefore(ctx, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("DeleteRunsBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted runs, got %d", n)
	}

	runs, err = db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "new" {
		t.Errorf("unexpected runs after delete: %+v", runs)
	}
}
