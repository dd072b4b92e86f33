package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vidrelay/internal/contracts"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/repo"
)

// step scripts one Download call.
type step struct {
	progress []float64
	err      error
}

// stubExtractor replays scripted steps per URL. URLs without steps succeed.
type stubExtractor struct {
	mu       sync.Mutex
	dir      string
	meta     *models.Metadata
	metaErr  error
	steps    map[string][]step
	calls    []string
	callTime []time.Time
}

func newStubExtractor(dir string) *stubExtractor {
	return &stubExtractor{
		dir:   dir,
		meta:  &models.Metadata{Title: "Test Title", Duration: 10},
		steps: make(map[string][]step),
	}
}

func (e *stubExtractor) FetchMetadata(_ context.Context, _ string, _ consts.Format) (*models.Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.metaErr != nil {
		return nil, e.metaErr
	}
	return e.meta.Clone(), nil
}

func (e *stubExtractor) Download(_ context.Context, jobID, url string, _ consts.Format, updates chan<- models.ProgressUpdate) (string, error) {
	defer close(updates)

	e.mu.Lock()
	e.calls = append(e.calls, url)
	e.callTime = append(e.callTime, time.Now())
	var st step
	if q := e.steps[url]; len(q) > 0 {
		st = q[0]
		e.steps[url] = q[1:]
	}
	e.mu.Unlock()

	for _, p := range st.progress {
		updates <- models.ProgressUpdate{Kind: consts.ProgressKindProgress, JobID: jobID, Percent: p}
	}
	if st.err != nil {
		return "", st.err
	}

	path := filepath.Join(e.dir, jobID+"_Test Title.mp4")
	if err := os.WriteFile(path, []byte("artifact"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (e *stubExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// recorder collects broadcast events.
type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Broadcast(ev models.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) ofType(t consts.EventType) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// stubChat records chat hand-offs.
type stubChat struct {
	mu        sync.Mutex
	started   []string
	completed []string
	failed    []string
}

func (c *stubChat) Enabled() bool { return true }

func (c *stubChat) SendStarted(_ context.Context, chatRef string, _ *models.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = append(c.started, chatRef)
	return nil
}

func (c *stubChat) SendCompleted(_ context.Context, j *models.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = append(c.completed, j.ID)
	return fmt.Errorf("chat unavailable")
}

func (c *stubChat) SendFailed(_ context.Context, j *models.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = append(c.failed, j.ID)
	return nil
}

// countingStore counts record creation.
type countingStore struct {
	*repo.MemoryStore
	mu      sync.Mutex
	jobs    int
	batches int
}

func (s *countingStore) JobStore() contracts.JobStore     { return countingJobs{s} }
func (s *countingStore) BatchStore() contracts.BatchStore { return countingBatches{s} }

type countingJobs struct{ s *countingStore }

func (c countingJobs) CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
	c.s.mu.Lock()
	c.s.jobs++
	c.s.mu.Unlock()
	return c.s.MemoryStore.JobStore().CreateJob(ctx, in)
}

func (c countingJobs) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return c.s.MemoryStore.JobStore().GetJob(ctx, id)
}

// UpdateJob rejects ended contexts the way a database transaction would.
func (c countingJobs) UpdateJob(ctx context.Context, id string, p models.JobPatch) (*models.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.s.MemoryStore.JobStore().UpdateJob(ctx, id, p)
}

type countingBatches struct{ s *countingStore }

func (c countingBatches) CreateBatch(ctx context.Context, in models.BatchInput) (*models.BatchJob, error) {
	c.s.mu.Lock()
	c.s.batches++
	c.s.mu.Unlock()
	return c.s.MemoryStore.BatchStore().CreateBatch(ctx, in)
}

func (c countingBatches) GetBatch(ctx context.Context, id string) (*models.BatchJob, error) {
	return c.s.MemoryStore.BatchStore().GetBatch(ctx, id)
}

func (c countingBatches) UpdateBatch(ctx context.Context, id string, p models.BatchPatch) (*models.BatchJob, error) {
	return c.s.MemoryStore.BatchStore().UpdateBatch(ctx, id, p)
}
