package archive

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/newsletter-engine/pkg/types"
)

func testStore(t *testing.T, maxResults int) *Store {
	t.Helper()
	store, err := NewStore(types.ArchiveConfig{Dir: t.TempDir(), MaxResults: maxResults})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func successResult(title string) types.Result {
	return types.Result{
		Success: true,
		Newsletter: &types.Newsletter{
			Title:    title,
			Sections: []types.AudienceSection{{AudienceID: "a"}, {AudienceID: "b"}},
		},
		Metrics: types.Metrics{
			SourcesFetched:   7,
			SourcesAllocated: 4,
			DiversityScore:   85,
			Retries:          1,
			TotalTime:        1500 * time.Millisecond,
		},
	}
}

func TestRecordAndList(t *testing.T) {
	store := testStore(t, 20)
	ctx := context.Background()

	id, err := store.Record(ctx, successResult("Issue 1"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == 0 {
		t.Error("Record returned zero id")
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("List returned %d runs, want 1", len(runs))
	}

	run := runs[0]
	if !run.Success || run.Title != "Issue 1" || run.Sections != 2 {
		t.Errorf("run = %+v", run)
	}
	if run.SourcesFetched != 7 || run.SourcesAllocated != 4 || run.Retries != 1 {
		t.Errorf("metrics not persisted: %+v", run)
	}
	if run.DiversityScore != 85 {
		t.Errorf("DiversityScore = %f", run.DiversityScore)
	}
	if run.TotalMillis != 1500 {
		t.Errorf("TotalMillis = %d", run.TotalMillis)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}
}

func TestRecordFailedRun(t *testing.T) {
	store := testStore(t, 20)
	ctx := context.Background()

	failed := types.Result{Success: false, Error: "generation failed after 2 attempts"}
	if _, err := store.Record(ctx, failed); err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || runs[0].Success {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Error != "generation failed after 2 attempts" {
		t.Errorf("Error = %q", runs[0].Error)
	}
	if runs[0].Title != "" || runs[0].Sections != 0 {
		t.Errorf("failed run should have no newsletter detail: %+v", runs[0])
	}
}

func TestListNewestFirstAndCapped(t *testing.T) {
	store := testStore(t, 2)
	ctx := context.Background()

	for _, title := range []string{"Issue 1", "Issue 2", "Issue 3"} {
		if _, err := store.Record(ctx, successResult(title)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List returned %d runs, cap is 2", len(runs))
	}
	if runs[0].Title != "Issue 3" || runs[1].Title != "Issue 2" {
		t.Errorf("order = %q, %q; want newest first", runs[0].Title, runs[1].Title)
	}
}

func TestStoreReopens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(types.ArchiveConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(ctx, successResult("Issue 1")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	reopened, err := NewStore(types.ArchiveConfig{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("runs after reopen = %d, want 1", len(runs))
	}
}
