package cfg

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/domain/keys"
	"vidrelay/internal/models"
	"vidrelay/internal/validation"

	"github.com/spf13/viper"
)

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      Settings
		wantErr bool
		check   func(t *testing.T, s Settings)
	}{
		{
			name: "defaults filled",
			in:   Settings{},
			check: func(t *testing.T, s Settings) {
				if s.Store != consts.StoreMemory || s.MaxAttempts != consts.DefaultMaxAttempts ||
					s.RetryBaseDelay != consts.DefaultRetryBaseDelay || s.TelegramMaxUploadMB != consts.DefaultTelegramMaxUploadMB {
					t.Fatalf("defaults not applied: %+v", s)
				}
			},
		},
		{
			name: "debug level clamped",
			in:   Settings{DebugLevel: 9},
			check: func(t *testing.T, s Settings) {
				if s.DebugLevel != 5 {
					t.Fatalf("debug level = %d, want 5", s.DebugLevel)
				}
			},
		},
		{name: "sqlite store", in: Settings{Store: consts.StoreSQLite}},
		{name: "unknown store", in: Settings{Store: "redis"}, wantErr: true},
		{name: "bad addr", in: Settings{Addr: "5000"}, wantErr: true},
		{name: "negative delay", in: Settings{RetryBaseDelay: -time.Second}, wantErr: true},
		{name: "bad telegram url", in: Settings{TelegramAPIURL: "not a url"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := tt.in
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

// Viper state is global, so these tests do not run in parallel.
func TestLoadConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "vidrelay.yaml")
	content := "store: sqlite\nmax-attempts: 5\nretry-base-delay: 250ms\ntelegram-max-upload-mb: 20\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := loadConfigFile(path); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	s := LoadSettings()
	if s.Store != consts.StoreSQLite || s.MaxAttempts != 5 || s.RetryBaseDelay != 250*time.Millisecond || s.TelegramMaxUploadMB != 20 {
		t.Fatalf("unexpected settings: %+v", s)
	}

	if err := loadConfigFile(t.TempDir()); err == nil {
		t.Fatal("expected error for directory config path")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("VIDRELAY_YTDLP_PATH", "/opt/yt-dlp")

	viper.SetEnvPrefix(keys.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if got := LoadSettings().YtdlpPath; got != "/opt/yt-dlp" {
		t.Fatalf("ytdlp path = %q", got)
	}
	if got := envName(keys.TelegramBotToken); got != "VIDRELAY_TELEGRAM_BOT_TOKEN" {
		t.Fatalf("env name = %q", got)
	}
}

func TestCollectBatchURLs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# queue\nhttps://example.com/a\n\nhttps://example.com/b\nhttps://example.com/a\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write url file: %v", err)
	}

	got, err := collectBatchURLs(path, []string{"https://example.com/b", "https://example.com/c"})
	if err != nil {
		t.Fatalf("collectBatchURLs: %v", err)
	}
	want := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := collectBatchURLs("", nil); !errors.Is(err, validation.ErrValidation) {
		t.Fatalf("expected ErrValidation for no URLs, got %v", err)
	}
	if _, err := collectBatchURLs(filepath.Join(t.TempDir(), "missing.txt"), nil); err == nil {
		t.Fatal("expected error for missing URL file")
	}
}

func TestConsoleBroadcaster(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := newConsoleBroadcaster(&buf)

	j := &models.Job{ID: "0123456789abcdef", Status: consts.DLStatusDownloading, Title: "Clip"}
	for _, pct := range []float64{10.2, 10.8, 55} {
		j.ProgressPercent = pct
		c.Broadcast(models.Event{Type: consts.EventProgress, Payload: j})
	}
	c.Broadcast(models.Event{Type: consts.EventComplete, Payload: &models.Job{ID: j.ID, ArtifactPath: "/tmp/x.mp4"}})
	c.Broadcast(models.Event{Type: consts.EventBatchProgress, Payload: &models.BatchJob{ID: "batch", TotalItems: 2, CompletedItems: 1, ProgressPercent: 50}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[01234567]") || !strings.Contains(lines[0], " 10%") {
		t.Fatalf("unexpected progress line %q", lines[0])
	}
	if !strings.Contains(lines[2], "/tmp/x.mp4") || !strings.Contains(lines[3], "1/2 items") {
		t.Fatalf("unexpected lines: %q", lines)
	}
}
