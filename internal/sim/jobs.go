package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridironsim/playoff-odds/internal/league"
)

// ErrRunActive is returned when a run is started while another is still
// pending or running. Runs never interleave.
var ErrRunActive = errors.New("another simulation is already running")

// ErrJobNotFound is returned for lookups of unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// JobStatus is the lifecycle state of a simulation job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusCancelled JobStatus = "cancelled"
	StatusErrored   JobStatus = "error"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusErrored
}

// Job is one long-running simulation run.
type Job struct {
	ID string

	mu        sync.Mutex
	status    JobStatus
	progress  int
	trials    int
	seed      *int64
	result    *Result
	err       string
	createdAt time.Time
	startedAt time.Time
	doneAt    time.Time
	cancel    context.CancelFunc
}

// Snapshot is an immutable view of a job for API serialization.
type Snapshot struct {
	JobID     string     `json:"job_id"`
	Status    JobStatus  `json:"status"`
	Progress  int        `json:"progress"`
	Trials    int        `json:"trials"`
	Seed      *int64     `json:"seed,omitempty"`
	Result    *Result    `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

// Snapshot returns the job's current state. Results are attached only on
// completion; a cancelled job exposes the completed trial count but no
// aggregate, since partial counts are not valid probabilities.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := Snapshot{
		JobID:     j.ID,
		Status:    j.status,
		Progress:  j.progress,
		Trials:    j.trials,
		Seed:      j.seed,
		Error:     j.err,
		CreatedAt: j.createdAt,
	}
	if !j.startedAt.IsZero() {
		t := j.startedAt
		snap.StartedAt = &t
	}
	if !j.doneAt.IsZero() {
		t := j.doneAt
		snap.DoneAt = &t
	}
	if j.status == StatusCompleted {
		snap.Result = j.result
	}
	if j.status == StatusCancelled && j.result != nil {
		snap.Trials = j.result.Trials
	}
	return snap
}

func (j *Job) setProgress(pct int) {
	j.mu.Lock()
	j.progress = pct
	j.mu.Unlock()
}

// Manager owns the lifecycle of simulation jobs: at most one active run,
// cooperative cancellation, and retention of finished results.
type Manager struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	logger *slog.Logger
}

// NewManager creates an empty job manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{jobs: make(map[string]*Job), logger: logger}
}

// Start launches a simulation run on its own goroutine. Fails fast with
// ErrRunActive while another job is pending or running.
func (m *Manager) Start(ctx context.Context, matchups []league.Matchup, entrants []league.Entrant, opts Options) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, j := range m.jobs {
		j.mu.Lock()
		active := !j.status.Terminal()
		j.mu.Unlock()
		if active {
			return nil, ErrRunActive
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:        uuid.NewString(),
		status:    StatusPending,
		trials:    opts.Trials,
		seed:      opts.Seed,
		createdAt: time.Now(),
		cancel:    cancel,
	}
	m.jobs[job.ID] = job

	opts.Progress = job.setProgress
	go m.run(runCtx, job, matchups, entrants, opts)

	m.logger.Info("simulation job queued", "job_id", job.ID, "trials", opts.Trials)
	return job, nil
}

func (m *Manager) run(ctx context.Context, job *Job, matchups []league.Matchup, entrants []league.Entrant, opts Options) {
	job.mu.Lock()
	job.status = StatusRunning
	job.startedAt = time.Now()
	job.mu.Unlock()

	result, err := SimulateSeason(ctx, matchups, entrants, opts)

	job.mu.Lock()
	defer job.mu.Unlock()
	job.doneAt = time.Now()
	job.result = result

	switch {
	case errors.Is(err, ErrCancelled):
		job.status = StatusCancelled
		m.logger.Info("simulation job cancelled", "job_id", job.ID, "completed_trials", result.Trials)
	case err != nil:
		job.status = StatusErrored
		job.err = err.Error()
		m.logger.Error("simulation job failed", "job_id", job.ID, "error", err)
	default:
		job.status = StatusCompleted
		job.progress = 100
		m.logger.Info("simulation job completed", "job_id", job.ID,
			"trials", result.Trials, "duration_seconds", result.DurationSeconds)
	}
}

// Get returns a job by id.
func (m *Manager) Get(id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job, nil
}

// Cancel requests cancellation of a job. No-op for terminal jobs.
func (m *Manager) Cancel(id string) error {
	job, err := m.Get(id)
	if err != nil {
		return err
	}
	job.mu.Lock()
	terminal := job.status.Terminal()
	job.mu.Unlock()
	if !terminal {
		job.cancel()
	}
	return nil
}

// List returns snapshots of all known jobs, newest first.
func (m *Manager) List() []Snapshot {
	m.mu.Lock()
	jobs := make([]*Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		jobs = append(jobs, j)
	}
	m.mu.Unlock()

	snaps := make([]Snapshot, len(jobs))
	for i, j := range jobs {
		snaps[i] = j.Snapshot()
	}
	sort.Slice(snaps, func(i, k int) bool {
		return snaps[i].CreatedAt.After(snaps[k].CreatedAt)
	})
	return snaps
}

// Sweep drops terminal jobs older than maxAge. Returns the number removed.
func (m *Manager) Sweep(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, j := range m.jobs {
		j.mu.Lock()
		expired := j.status.Terminal() && !j.doneAt.IsZero() && j.doneAt.Before(cutoff)
		j.mu.Unlock()
		if expired {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on a ticker until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxAge); n > 0 {
				m.logger.Info("swept finished jobs", "removed", n)
			}
		}
	}
}
