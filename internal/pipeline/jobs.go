package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/dartrag/internal/document"
)

// JobKind selects the processing path for a job.
type JobKind string

const (
	KindFiling JobKind = "filing" // regulatory filing markup -> sections
	KindReport JobKind = "report" // analyst PDF -> competitor pages
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusLoading    JobStatus = "loading"
	StatusSegmenting JobStatus = "segmenting"
	StatusFiltering  JobStatus = "filtering"
	StatusChunking   JobStatus = "chunking"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusEmpty      JobStatus = "empty"
)

// Job tracks the state of a single document ingestion.
type Job struct {
	mu sync.Mutex

	ID       string  `json:"job_id"`
	Kind     JobKind `json:"kind"`
	DocID    string  `json:"doc_id"`
	CorpCode string  `json:"corp_code"`
	CorpName string  `json:"corp_name,omitempty"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   Result
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Sections     int      `json:"sections"`
	Documents    int      `json:"documents"`
	TotalChunks  int      `json:"total_chunks"`
	ChunksStored int      `json:"chunks_stored"`
	Errors       []string `json:"errors"`
}

// Result is what a finished job extracted.
type Result struct {
	Sections  []document.Section  `json:"sections,omitempty"`
	Documents []document.Document `json:"documents,omitempty"`
}

// NewJob creates a queued job for an uploaded file. docID defaults to the
// filename.
func NewJob(kind JobKind, filename, docID, corpCode, corpName string, data []byte) *Job {
	if docID == "" {
		docID = filename
	}
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Kind:        kind,
		DocID:       docID,
		CorpCode:    corpCode,
		CorpName:    corpName,
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
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

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetSections records the sections a filing produced.
func (j *Job) SetSections(sections []document.Section) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result.Sections = sections
	j.Progress.Sections = len(sections)
	j.UpdatedAt = time.Now()
}

// SetDocuments records the competitor documents a report produced.
func (j *Job) SetDocuments(docs []document.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result.Documents = docs
	j.Progress.Documents = len(docs)
	j.UpdatedAt = time.Now()
}

// SetTotalChunks records total chunk count.
func (j *Job) SetTotalChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

// AddChunksStored records stored chunk counts.
func (j *Job) AddChunksStored(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksStored += n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Result returns the extraction output.
func (j *Job) Result() Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Done reports whether the job reached a terminal status.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusPartial, StatusEmpty:
		return true
	}
	return false
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id" yaml:"job_id"`
	Kind     JobKind   `json:"kind" yaml:"kind"`
	DocID    string    `json:"doc_id" yaml:"doc_id"`
	CorpCode string    `json:"corp_code" yaml:"corp_code"`
	Status   JobStatus `json:"status" yaml:"status"`
	Phase    string    `json:"phase" yaml:"phase"`
	Filename string    `json:"filename" yaml:"filename"`
	Progress Progress  `json:"progress" yaml:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:       j.ID,
		Kind:     j.Kind,
		DocID:    j.DocID,
		CorpCode: j.CorpCode,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: p,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
