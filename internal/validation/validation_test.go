package validation_test

import (
	"errors"
	"fmt"
	"testing"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/validation"
)

func TestValidateSourceURL(t *testing.T) {
	t.Parallel()

	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"http://example.com/video",
	}
	for _, u := range valid {
		if err := validation.ValidateSourceURL(u); err != nil {
			t.Fatalf("expected %q to pass, got: %v", u, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"::::::not-a-url",
		"ftp://example.com/file",
		"https://",
		"/relative/path",
	}
	for _, u := range invalid {
		err := validation.ValidateSourceURL(u)
		if err == nil {
			t.Fatalf("expected %q to fail", u)
		}
		if !errors.Is(err, validation.ErrValidation) {
			t.Fatalf("expected ErrValidation for %q, got: %v", u, err)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    consts.Format
		wantErr bool
	}{
		{"video-720", consts.FormatVideo720, false},
		{"video-1080", consts.FormatVideo1080, false},
		{"audio-mp3", consts.FormatAudioMP3, false},
		{"audio-wav", consts.FormatAudioWAV, false},
		{"best", consts.FormatBest, false},
		{" BEST ", consts.FormatBest, false},
		{"mp3", consts.FormatAudioMP3, false},
		{"mp4-1080", consts.FormatVideo1080, false},
		{"", "", true},
		{"flac", "", true},
	}
	for _, tt := range tests {
		got, err := validation.ValidateFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ValidateFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ValidateFormat(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ValidateFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateJobInput(t *testing.T) {
	t.Parallel()

	in := models.JobInput{SourceURL: "https://example.com/v", Format: "wav"}
	if err := validation.ValidateJobInput(&in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Format != consts.FormatAudioWAV {
		t.Fatalf("format not normalized: %q", in.Format)
	}

	bad := models.JobInput{SourceURL: "https://example.com/v", Format: "best", NotifyWebhookURL: "not a url"}
	if err := validation.ValidateJobInput(&bad); !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected webhook URL to fail, got: %v", err)
	}
}

func TestValidateBatchInputLimits(t *testing.T) {
	t.Parallel()

	urls := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("https://example.com/v/%d", i)
		}
		return out
	}

	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"empty", 0, true},
		{"one", 1, false},
		{"max", consts.MaxBatchURLs, false},
		{"over max", consts.MaxBatchURLs + 1, true},
	}
	for _, tt := range tests {
		in := models.BatchInput{SourceURLs: urls(tt.n), Format: consts.FormatBest}
		err := validation.ValidateBatchInput(&in)
		if tt.wantErr && !errors.Is(err, validation.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got: %v", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
	}

	withBad := models.BatchInput{SourceURLs: []string{"https://ok.example/1", "nope"}, Format: consts.FormatBest}
	if err := validation.ValidateBatchInput(&withBad); !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected bad URL to fail, got: %v", err)
	}
}
