package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/google/uuid"
)

// JobStatus represents the state of a queued conversion run.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial" // completed with recorded degradations
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Job tracks the state of a single conversion run.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"run_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Title  string    `json:"title"`
	Render bool      `json:"render"`

	Progress Progress `json:"progress"`

	MapPath   string    `json:"map_path,omitempty"`
	PDFPath   string    `json:"pdf_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	events []audit.Event
	errors []string
}

// Progress tracks how far a run has come.
type Progress struct {
	TotalTopics   int      `json:"total_topics"`
	TopicsWritten int      `json:"topics_written"`
	Warnings      int      `json:"warnings"`
	Errors        []string `json:"errors"`
}

// NewJob creates a queued run. title overrides the outline title when set.
func NewJob(title string, render bool) *Job {
	now := time.Now()
	return &Job{
		ID:        newRunID(),
		Status:    StatusQueued,
		Phase:     "queued",
		Title:     title,
		Render:    render,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newRunID returns a time-ordered identifier, falling back to a random one.
func newRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed in its current phase.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.Progress.Errors = j.errors
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTopics records translation progress.
func (j *Job) SetTopics(written, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if written > j.Progress.TopicsWritten {
		j.Progress.TopicsWritten = written
	}
	j.Progress.TotalTopics = total
	j.UpdatedAt = time.Now()
}

// Finish copies the outcome of a run onto the job.
func (j *Job) Finish(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = res.Events
	j.Progress.Warnings = len(res.Events)
	j.Progress.TotalTopics = res.Topics
	j.MapPath = res.MapPath
	j.PDFPath = res.PDFPath
	if j.Title == "" {
		j.Title = res.Title
	}
	j.UpdatedAt = time.Now()
}

// Events returns the audit events of a finished run.
func (j *Job) Events() []audit.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]audit.Event, len(j.events))
	copy(out, j.events)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"run_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Title     string    `json:"title"`
	Render    bool      `json:"render"`
	Progress  Progress  `json:"progress"`
	MapPath   string    `json:"map_path,omitempty"`
	PDFPath   string    `json:"pdf_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:     j.ID,
		Status: j.Status,
		Phase:  j.Phase,
		Title:  j.Title,
		Render: j.Render,
		Progress: Progress{
			TotalTopics:   j.Progress.TotalTopics,
			TopicsWritten: j.Progress.TopicsWritten,
			Warnings:      j.Progress.Warnings,
			Errors:        errs,
		},
		MapPath:   j.MapPath,
		PDFPath:   j.PDFPath,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
