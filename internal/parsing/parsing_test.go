package parsing

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseUploadDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"20240131", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"2023-06-05", time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)},
		{"Jan 2, 2006", time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseUploadDate(tt.in)
		if err != nil {
			t.Fatalf("ParseUploadDate(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("ParseUploadDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseUploadDate(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
}

func TestParseURLsKeepsOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# list\nhttps://b.example/2\n\nhttps://a.example/1\nhttps://b.example/2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewURLFileParser(path).ParseURLs()
	if err != nil {
		t.Fatalf("ParseURLs: %v", err)
	}
	want := []string{"https://b.example/2", "https://a.example/1"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
