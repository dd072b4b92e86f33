package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/validation"
)

func TestRunBatchSequential(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	urls := []string{
		"https://example.com/watch?v=1",
		"https://example.com/watch?v=2",
		"https://example.com/watch?v=3",
	}
	h.ext.steps[urls[1]] = []step{{err: errors.New("boom")}, {err: errors.New("boom")}, {err: errors.New("boom")}}

	b, err := h.store.BatchStore().CreateBatch(context.Background(), models.BatchInput{SourceURLs: urls, Format: consts.FormatAudioWAV})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	final, err := h.svc.RunBatch(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}

	if final.Status != consts.DLStatusCompleted || final.ProgressPercent != 100 || final.CompletedAt == nil {
		t.Fatalf("unexpected final batch: %+v", final)
	}
	if final.CompletedItems != len(urls) || final.FailedItems != 1 {
		t.Fatalf("items = %d completed / %d failed, want %d / 1", final.CompletedItems, final.FailedItems, len(urls))
	}
	if h.store.jobs != len(urls) {
		t.Fatalf("created %d jobs, want %d", h.store.jobs, len(urls))
	}

	// Items run in input order; the failing item consumed all its attempts before the next began.
	wantCalls := []string{urls[0], urls[1], urls[1], urls[1], urls[2]}
	if !slices.Equal(h.ext.calls, wantCalls) {
		t.Fatalf("download order = %v, want %v", h.ext.calls, wantCalls)
	}

	var pcts []float64
	for _, ev := range h.rec.ofType(consts.EventBatchProgress) {
		eb := ev.Payload.(*models.BatchJob)
		if eb.CompletedItems > eb.TotalItems {
			t.Fatalf("completed items %d exceed total %d", eb.CompletedItems, eb.TotalItems)
		}
		pcts = append(pcts, eb.ProgressPercent)
	}
	if fmt.Sprint(pcts) != fmt.Sprint([]float64{33, 67, 100}) {
		t.Fatalf("batch progress = %v", pcts)
	}
	if done := h.rec.ofType(consts.EventBatchComplete); len(done) != 1 {
		t.Fatalf("expected one batch_complete event, got %d", len(done))
	}
}

func TestRunBatchAllFailedStillCompletes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.ext.metaErr = errors.New("offline")
	urls := []string{"https://example.com/a", "https://example.com/b"}

	final, err := h.svc.ProcessBatch(context.Background(), models.BatchInput{SourceURLs: urls, Format: consts.FormatBest})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if final.Status != consts.DLStatusCompleted || final.CompletedItems != 2 || final.FailedItems != 2 {
		t.Fatalf("unexpected final batch: %+v", final)
	}
}

func TestSubmitBatchRejectsOverLimit(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	urls := make([]string, consts.MaxBatchURLs+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/watch?v=%d", i)
	}

	_, err := h.svc.SubmitBatch(context.Background(), models.BatchInput{SourceURLs: urls, Format: consts.FormatBest})
	if !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}
	if h.store.batches != 0 || h.store.jobs != 0 {
		t.Fatalf("rejected batch created records: %d batches, %d jobs", h.store.batches, h.store.jobs)
	}
}

func TestSubmitBatchInheritsTargets(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	b, err := h.svc.SubmitBatch(context.Background(), models.BatchInput{
		SourceURLs:    []string{"https://example.com/x"},
		Format:        "mp3",
		NotifyChatRef: "42",
	})
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if b.Status != consts.DLStatusPending || b.TotalItems != 1 {
		t.Fatalf("unexpected submitted batch: %+v", b)
	}
	h.svc.Wait()

	completes := h.rec.ofType(consts.EventComplete)
	if len(completes) != 1 {
		t.Fatalf("expected one job completion, got %d", len(completes))
	}
	j := completes[0].Payload.(*models.Job)
	if j.BatchID != b.ID || j.Format != consts.FormatAudioMP3 || j.NotifyChatRef != "42" {
		t.Fatalf("job did not inherit batch settings: %+v", j)
	}
}

func TestBatchPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		completed, total int
		want             float64
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 20, 5},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := batchPercent(tt.completed, tt.total); got != tt.want {
			t.Fatalf("batchPercent(%d, %d) = %v, want %v", tt.completed, tt.total, got, tt.want)
		}
	}
}
