package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/downloads"
	"vidrelay/internal/models"
	"vidrelay/internal/repo"
	"vidrelay/internal/validation"
)

const testBaseDelay = 10 * time.Millisecond

type harness struct {
	svc   *Service
	store *countingStore
	ext   *stubExtractor
	rec   *recorder
	chat  *stubChat
}

func newHarness(t *testing.T, policy RetryPolicy) *harness {
	t.Helper()
	h := &harness{
		store: &countingStore{MemoryStore: repo.NewMemoryStore()},
		ext:   newStubExtractor(t.TempDir()),
		rec:   &recorder{},
		chat:  &stubChat{},
	}
	h.svc = NewService(context.Background(), Deps{
		Store:       h.store,
		Extractor:   h.ext,
		Broadcaster: h.rec,
		Chat:        h.chat,
		Webhook:     NewWebhookNotifier(time.Second),
	}, Config{
		MaxAttempts:    consts.DefaultMaxAttempts,
		RetryBaseDelay: testBaseDelay,
		RetryPolicy:    policy,
	})
	return h
}

func (h *harness) createJob(t *testing.T, in models.JobInput) *models.Job {
	t.Helper()
	if in.Format == "" {
		in.Format = consts.FormatVideo720
	}
	j, err := h.store.JobStore().CreateJob(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return j
}

func TestRunJobSuccess(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		received []models.WebhookPayload
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p models.WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode webhook: %v", err)
		}
		mu.Lock()
		received = append(received, p)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	h := newHarness(t, nil)
	url := "https://example.com/watch?v=ok"
	h.ext.steps[url] = []step{{progress: []float64{10, 50, 30, 100}}}
	j := h.createJob(t, models.JobInput{SourceURL: url, NotifyChatRef: "12345", NotifyWebhookURL: hook.URL})

	final, err := h.svc.RunJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}

	if final.Status != consts.DLStatusCompleted || final.ProgressPercent != 100 {
		t.Fatalf("unexpected final state: %s %.1f", final.Status, final.ProgressPercent)
	}
	if final.CompletedAt == nil || final.ArtifactPath == "" || final.ArtifactSizeBytes != int64(len("artifact")) {
		t.Fatalf("completion fields missing: %+v", final)
	}
	if final.Title != "Test Title" || final.Metadata == nil {
		t.Fatalf("metadata not stored: %+v", final)
	}

	// Percent never decreases and stays below 100 until completion.
	var pcts []float64
	for _, ev := range h.rec.ofType(consts.EventProgress) {
		pcts = append(pcts, ev.Payload.(*models.Job).ProgressPercent)
	}
	want := []float64{0, 10, 50, maxInFlightPercent}
	if fmt.Sprint(pcts) != fmt.Sprint(want) {
		t.Fatalf("progress events = %v, want %v", pcts, want)
	}
	if c := h.rec.ofType(consts.EventComplete); len(c) != 1 {
		t.Fatalf("expected one complete event, got %d", len(c))
	}

	// Chat errors are contained.
	if len(h.chat.completed) != 1 {
		t.Fatalf("chat completion not attempted")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected one webhook call, got %d", len(received))
	}
	if received[0].Type != consts.WebhookTypeComplete || received[0].Download.ID != j.ID || received[0].Download.Status != consts.DLStatusCompleted {
		t.Fatalf("unexpected webhook payload: %+v", received[0])
	}
}

func TestCompleteJobAfterCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	j := h.createJob(t, models.JobInput{SourceURL: "https://example.com/watch?v=late"})
	path := filepath.Join(t.TempDir(), j.ID+"_Late.mp4")
	if err := os.WriteFile(path, []byte("artifact"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.svc.completeJob(ctx, j, path); err != nil {
		t.Fatalf("completeJob: %v", err)
	}
	stored, err := h.store.JobStore().GetJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if stored.Status != consts.DLStatusCompleted || stored.ArtifactPath != path {
		t.Fatalf("outcome not stored after cancel: %s %q", stored.Status, stored.ArtifactPath)
	}
}

func TestRunJobRetriesWithBackoff(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	url := "https://example.com/watch?v=flaky"
	h.ext.steps[url] = []step{
		{progress: []float64{20}, err: errors.New("first failure")},
		{err: errors.New("second failure")},
		{progress: []float64{10, 90}},
	}
	j := h.createJob(t, models.JobInput{SourceURL: url})

	final, err := h.svc.RunJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if final.Status != consts.DLStatusCompleted {
		t.Fatalf("status = %s, want completed", final.Status)
	}
	if n := h.ext.callCount(); n != 3 {
		t.Fatalf("attempts = %d, want 3", n)
	}

	gap1 := h.ext.callTime[1].Sub(h.ext.callTime[0])
	gap2 := h.ext.callTime[2].Sub(h.ext.callTime[1])
	if gap1 < 2*testBaseDelay {
		t.Fatalf("first retry after %v, want at least %v", gap1, 2*testBaseDelay)
	}
	if gap2 < 4*testBaseDelay {
		t.Fatalf("second retry after %v, want at least %v", gap2, 4*testBaseDelay)
	}

	// The ratchet hides the lower percents of the later attempt.
	var pcts []float64
	for _, ev := range h.rec.ofType(consts.EventProgress) {
		pcts = append(pcts, ev.Payload.(*models.Job).ProgressPercent)
	}
	if fmt.Sprint(pcts) != fmt.Sprint([]float64{0, 20, 90}) {
		t.Fatalf("progress events = %v", pcts)
	}
	if errs := h.rec.ofType(consts.EventError); len(errs) != 0 {
		t.Fatalf("retries must not broadcast errors, got %d", len(errs))
	}
}

func TestRunJobFailsAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	url := "https://example.com/watch?v=broken"
	h.ext.steps[url] = []step{
		{err: errors.New("attempt 1 failed")},
		{err: errors.New("attempt 2 failed")},
		{err: errors.New("attempt 3 failed")},
		{},
	}
	j := h.createJob(t, models.JobInput{SourceURL: url, NotifyChatRef: "999"})

	final, err := h.svc.RunJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if final.Status != consts.DLStatusFailed {
		t.Fatalf("status = %s, want failed", final.Status)
	}
	if final.ErrorReason != "attempt 3 failed" {
		t.Fatalf("error reason = %q, want last failure", final.ErrorReason)
	}
	if final.CompletedAt == nil {
		t.Fatalf("completedAt not set on failure")
	}
	if n := h.ext.callCount(); n != 3 {
		t.Fatalf("attempts = %d, want exactly 3", n)
	}
	if errs := h.rec.ofType(consts.EventError); len(errs) != 1 {
		t.Fatalf("expected one error event, got %d", len(errs))
	}
	if len(h.chat.failed) != 1 {
		t.Fatalf("chat failure notice not sent")
	}
}

func TestRunJobMetadataFailureIsFatal(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.ext.metaErr = fmt.Errorf("%w: private video", downloads.ErrExtractionFailed)
	j := h.createJob(t, models.JobInput{SourceURL: "https://example.com/watch?v=private"})

	final, err := h.svc.RunJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if final.Status != consts.DLStatusFailed {
		t.Fatalf("status = %s, want failed", final.Status)
	}
	if !strings.Contains(final.ErrorReason, ErrMetadataFailed.Error()) || !strings.Contains(final.ErrorReason, "private video") {
		t.Fatalf("unexpected error reason %q", final.ErrorReason)
	}
	if n := h.ext.callCount(); n != 0 {
		t.Fatalf("download attempted %d times after metadata failure", n)
	}
}

func TestRetryPolicyCanStopEarly(t *testing.T) {
	t.Parallel()

	h := newHarness(t, RetryUnlessBotDetected)
	url := "https://example.com/watch?v=bot"
	h.ext.steps[url] = []step{{err: fmt.Errorf("%w (%w)", downloads.ErrExtractionFailed, downloads.ErrBotDetected)}}
	j := h.createJob(t, models.JobInput{SourceURL: url})

	final, err := h.svc.RunJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if final.Status != consts.DLStatusFailed || h.ext.callCount() != 1 {
		t.Fatalf("expected a single failed attempt, got %s after %d", final.Status, h.ext.callCount())
	}
}

func TestRunJobTerminalIsUnchanged(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	j := h.createJob(t, models.JobInput{SourceURL: "https://example.com/watch?v=done"})
	if _, err := h.svc.RunJob(context.Background(), j.ID); err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	first, _ := h.store.JobStore().GetJob(context.Background(), j.ID)

	again, err := h.svc.RunJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("second RunJob: %v", err)
	}
	if !again.CompletedAt.Equal(*first.CompletedAt) || h.ext.callCount() != 1 {
		t.Fatalf("terminal job was run again")
	}
}

func TestRunJobNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if _, err := h.svc.RunJob(context.Background(), "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestSubmitJobRunsInBackground(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	j, err := h.svc.SubmitJob(context.Background(), models.JobInput{SourceURL: "https://example.com/watch?v=bg", Format: "mp3"})
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}
	if j.Status != consts.DLStatusPending || j.Format != consts.FormatAudioMP3 {
		t.Fatalf("unexpected submitted job: %+v", j)
	}

	h.svc.Wait()
	final, err := h.store.JobStore().GetJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if final.Status != consts.DLStatusCompleted {
		t.Fatalf("status = %s, want completed", final.Status)
	}
}

func TestSubmitJobSendsChatStartNotice(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if _, err := h.svc.SubmitJob(context.Background(), models.JobInput{
		SourceURL:     "https://example.com/watch?v=chat",
		Format:        consts.FormatAudioMP3,
		NotifyChatRef: "777",
	}); err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}
	h.svc.Wait()

	h.chat.mu.Lock()
	defer h.chat.mu.Unlock()
	if len(h.chat.started) != 1 || h.chat.started[0] != "777" {
		t.Fatalf("start notices = %v, want [777]", h.chat.started)
	}
}

func TestSubmitJobValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	_, err := h.svc.SubmitJob(context.Background(), models.JobInput{SourceURL: "not-a-url", Format: consts.FormatBest})
	if !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}
	if h.store.jobs != 0 {
		t.Fatalf("invalid input created %d job(s)", h.store.jobs)
	}
}

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	if d := backoffDelay(time.Second, 1); d != 2*time.Second {
		t.Fatalf("delay after attempt 1 = %v, want 2s", d)
	}
	if d := backoffDelay(time.Second, 2); d != 4*time.Second {
		t.Fatalf("delay after attempt 2 = %v, want 4s", d)
	}
}
