package jobs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func testParams() models.ReportParams {
	return models.ReportParams{
		AccountID: 8,
		Report:    models.ReportFleetSummary,
		Start:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC),
	}
}

func TestStore_Lifecycle(t *testing.T) {
	store := newTestStore(t)

	job, err := store.Create(testParams())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if job.Status != models.JobStatusPending || job.Progress != 0 {
		t.Fatalf("new job = %s/%d, want pending/0", job.Status, job.Progress)
	}

	if err := store.UpdateProgress(job.ID, 10, ""); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if err := store.UpdateProgress(job.ID, 50, models.JobStatusProcessing); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if err := store.Complete(job.ID, "r1"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.JobStatusComplete {
		t.Errorf("status = %s, want complete", got.Status)
	}
	if got.Progress != 100 {
		t.Errorf("progress = %d, want 100", got.Progress)
	}
	if got.ResultPath != "r1" {
		t.Errorf("result = %q, want %q", got.ResultPath, "r1")
	}
	if got.CompletedAt == nil {
		t.Error("completed job must have a completion time")
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get("no-such-job"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing job = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateProgressAfterSweepIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.UpdateProgress("swept-away", 40, models.JobStatusProcessing); err != nil {
		t.Errorf("UpdateProgress on missing job = %v, want silent no-op", err)
	}
}

func TestStore_Fail(t *testing.T) {
	store := newTestStore(t)
	job, _ := store.Create(testParams())

	if err := store.Fail(job.ID, "query error"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.JobStatusFailed || got.Error != "query error" {
		t.Errorf("failed job = %s/%q, want failed/%q", got.Status, got.Error, "query error")
	}
}

func TestStore_RecordEmailErrorKeepsStatus(t *testing.T) {
	store := newTestStore(t)
	job, _ := store.Create(testParams())
	store.Complete(job.ID, "r1")

	if err := store.RecordEmailError(job.ID, "smtp refused"); err != nil {
		t.Fatalf("RecordEmailError failed: %v", err)
	}

	got, _ := store.Get(job.ID)
	if got.Status != models.JobStatusComplete {
		t.Errorf("status after email error = %s, want complete", got.Status)
	}
	if got.EmailError != "smtp refused" {
		t.Errorf("email error = %q, want recorded", got.EmailError)
	}
}

// Interleaved writers and readers must never observe a partial or
// unparseable record: every Get returns either ErrNotFound or a fully
// populated job.
func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	store := newTestStore(t)
	job, _ := store.Create(testParams())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				store.UpdateProgress(job.ID, (i*2)%100, models.JobStatusProcessing)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				got, err := store.Get(job.ID)
				if err != nil {
					t.Errorf("Get during concurrent writes: %v", err)
					return
				}
				if got.ID != job.ID || got.Status == "" || got.CreatedAt.IsZero() {
					t.Errorf("observed partial record: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestStore_SweepRetention(t *testing.T) {
	store := newTestStore(t)

	artifact := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(artifact, []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	job, _ := store.Create(testParams())
	store.Complete(job.ID, artifact)

	// Within retention: the sweep keeps the job.
	if removed := store.Sweep(); removed != 0 {
		t.Fatalf("sweep removed %d fresh jobs, want 0", removed)
	}

	// Advance the clock past the 2 hour retention.
	store.now = func() time.Time { return time.Now().Add(DefaultRetention + time.Minute) }
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("sweep removed %d jobs, want 1", removed)
	}

	if _, err := store.Get(job.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after sweep = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(artifact); !errors.Is(err, os.ErrNotExist) {
		t.Error("sweep must remove the result artifact with the job")
	}
}

func TestStore_SweepAnchorsOnCreationForRunningJobs(t *testing.T) {
	store := newTestStore(t)
	job, _ := store.Create(testParams())
	store.UpdateProgress(job.ID, 40, models.JobStatusProcessing)

	store.now = func() time.Time { return time.Now().Add(DefaultRetention + time.Minute) }
	if removed := store.Sweep(); removed != 1 {
		t.Errorf("stale non-terminal job not swept (removed=%d)", removed)
	}
}

func TestStore_SweepRemovesCorruptRecords(t *testing.T) {
	store := newTestStore(t)

	bad := filepath.Join(store.root, "deadbeef.json")
	if err := os.WriteFile(bad, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("sweep removed %d records, want the corrupt one", removed)
	}
	if _, err := os.Stat(bad); !errors.Is(err, os.ErrNotExist) {
		t.Error("corrupt record must be deleted regardless of age")
	}
}

func TestStore_CorruptRecordSurfacesAfterRetries(t *testing.T) {
	store := newTestStore(t)

	bad := filepath.Join(store.root, "feedface.json")
	if err := os.WriteFile(bad, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Get("feedface")
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get on empty record = %v, want ErrCorrupt", err)
	}
}

func TestStore_SweeperLifecycle(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		job, _ := store.Create(testParams())
		store.Complete(job.ID, "")
	}
	store.now = func() time.Time { return time.Now().Add(DefaultRetention + time.Minute) }

	// Startup sweep runs immediately.
	store.StartSweeper(time.Hour)
	store.Close()

	entries, err := os.ReadDir(store.root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("store root holds %d entries after startup sweep, want 0", len(entries))
	}
}
