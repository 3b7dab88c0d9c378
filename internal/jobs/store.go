// Package jobs provides the durable report-job store. Each job is one
// JSON document under the store's root; every write builds the full
// record, stages it to a temp file and renames it into place, so a
// concurrent reader never observes a partial record.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

// DefaultRetention is how long a job record (and its result artifact)
// is kept, measured from completion for terminal jobs and from
// creation otherwise.
const DefaultRetention = 2 * time.Hour

// DefaultSweepInterval is how often the retention sweep runs.
const DefaultSweepInterval = 10 * time.Minute

const (
	readAttempts   = 3
	readRetryDelay = 50 * time.Millisecond
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("job not found")
	ErrCorrupt  = errors.New("job record corrupt")
)

// Store is a file-backed job repository. It owns its storage root and
// its sweep task lifecycle; there is no process-wide state.
type Store struct {
	root      string
	retention time.Duration
	log       *zap.Logger

	now func() time.Time // injectable for tests

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	sweeping bool
}

// NewStore creates the storage root if needed and returns a store
// with the default retention.
func NewStore(root string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job store root: %w", err)
	}
	return &Store{
		root:      root,
		retention: DefaultRetention,
		log:       log,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Create writes a new pending job and returns it.
func (s *Store) Create(params models.ReportParams) (*models.Job, error) {
	job := &models.Job{
		ID:        uuid.NewString(),
		Params:    params,
		Status:    models.JobStatusPending,
		Progress:  0,
		CreatedAt: s.now(),
	}
	if err := s.write(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get returns a job by id. Transient read inconsistencies (empty or
// partial content mid-write) are retried a bounded number of times
// before surfacing ErrCorrupt.
func (s *Store) Get(id string) (*models.Job, error) {
	var lastErr error
	for attempt := 0; attempt < readAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(readRetryDelay)
		}

		data, err := os.ReadFile(s.path(id))
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		if err != nil {
			lastErr = err
			continue
		}
		if len(data) == 0 {
			lastErr = errors.New("empty record")
			continue
		}

		var job models.Job
		if err := json.Unmarshal(data, &job); err != nil {
			lastErr = err
			continue
		}
		return &job, nil
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, lastErr)
}

// UpdateProgress sets a job's progress and, when status is non-empty,
// its status. It silently no-ops if the job no longer exists: the
// retention sweep may have removed it while its worker was running.
func (s *Store) UpdateProgress(id string, progress int, status models.JobStatus) error {
	return s.mutate(id, func(job *models.Job) {
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		job.Progress = progress
		if status != "" {
			job.Status = status
		}
	})
}

// Complete marks a job complete at 100% with its result artifact.
func (s *Store) Complete(id, resultPath string) error {
	return s.mutate(id, func(job *models.Job) {
		now := s.now()
		job.Status = models.JobStatusComplete
		job.Progress = 100
		job.ResultPath = resultPath
		job.CompletedAt = &now
	})
}

// Fail marks a job failed with the captured error text.
func (s *Store) Fail(id, errText string) error {
	return s.mutate(id, func(job *models.Job) {
		now := s.now()
		job.Status = models.JobStatusFailed
		job.Error = errText
		job.CompletedAt = &now
	})
}

// RecordEmailError notes a failed notification without touching the
// job's terminal status.
func (s *Store) RecordEmailError(id, errText string) error {
	return s.mutate(id, func(job *models.Job) {
		job.EmailError = errText
	})
}

// StartSweeper runs one sweep immediately and then sweeps on the
// given interval until Close.
func (s *Store) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s.sweeping = true
	s.Sweep()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the sweeper and waits for it to exit.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.sweeping {
			<-s.done
		}
	})
}

// Sweep deletes jobs past retention along with their result
// artifacts, and unparseable records outright regardless of age.
// It returns the number of removed jobs.
func (s *Store) Sweep() int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.log.Error("job sweep failed to read store root", zap.Error(err))
		return 0
	}

	now := s.now()
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(name, ".json") {
			// Staging leftovers from a crashed writer.
			s.removeStale(entry, now)
			continue
		}

		id := strings.TrimSuffix(name, ".json")
		job, err := s.Get(id)
		if err != nil {
			s.log.Warn("removing unreadable job record", zap.String("job_id", id), zap.Error(err))
			s.remove(id, "")
			removed++
			continue
		}

		anchor := job.CreatedAt
		if job.Status.Terminal() && job.CompletedAt != nil {
			anchor = *job.CompletedAt
		}
		if now.Sub(anchor) > s.retention {
			s.remove(id, job.ResultPath)
			removed++
		}
	}

	if removed > 0 {
		s.log.Info("job retention sweep", zap.Int("removed", removed))
	}
	return removed
}

func (s *Store) mutate(id string, fn func(*models.Job)) error {
	job, err := s.Get(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fn(job)
	return s.write(job)
}

func (s *Store) write(job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	tmp, err := os.CreateTemp(s.root, job.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to stage job %s: %w", job.ID, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to stage job %s: %w", job.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to stage job %s: %w", job.ID, err)
	}

	if err := os.Rename(tmp.Name(), s.path(job.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) remove(id, resultPath string) {
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("failed to remove job record", zap.String("job_id", id), zap.Error(err))
	}
	if resultPath != "" {
		if err := os.Remove(resultPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("failed to remove job artifact", zap.String("job_id", id), zap.Error(err))
		}
	}
}

func (s *Store) removeStale(entry os.DirEntry, now time.Time) {
	info, err := entry.Info()
	if err != nil {
		return
	}
	if now.Sub(info.ModTime()) > s.retention {
		os.Remove(filepath.Join(s.root, entry.Name()))
	}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id+".json")
}
