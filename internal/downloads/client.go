// Package downloads runs yt-dlp and interprets its output.
package downloads

import (
	"fmt"
	"os"
	"time"

	"vidrelay/internal/domain/command"
	"vidrelay/internal/domain/consts"
)

// Config holds extraction client settings.
type Config struct {
	YtdlpPath          string        // Defaults to "yt-dlp" on PATH
	OutputDir          string        // Artifact directory, created if missing
	CookiesFromBrowser string        // Passed to --cookies-from-browser when set
	FileWait           time.Duration // How long to look for the artifact after exit
}

// Client invokes yt-dlp for metadata and downloads.
type Client struct {
	ytdlpPath          string
	outputDir          string
	cookiesFromBrowser string
	fileWait           time.Duration
}

// NewClient returns a client writing artifacts to cfg.OutputDir.
func NewClient(cfg Config) (*Client, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("no output directory set")
	}
	if err := os.MkdirAll(cfg.OutputDir, consts.PermsGenericDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", cfg.OutputDir, err)
	}

	c := &Client{
		ytdlpPath:          cfg.YtdlpPath,
		outputDir:          cfg.OutputDir,
		cookiesFromBrowser: cfg.CookiesFromBrowser,
		fileWait:           cfg.FileWait,
	}
	if c.ytdlpPath == "" {
		c.ytdlpPath = command.YTDLP
	}
	if c.fileWait <= 0 {
		c.fileWait = consts.FileWaitTimeout
	}
	return c, nil
}

// OutputDir returns the artifact directory.
func (c *Client) OutputDir() string {
	return c.outputDir
}

// commonArgs returns the request identity and resilience flags used on every call.
func (c *Client) commonArgs() []string {
	args := []string{
		command.NoWarnings,
		command.NoCheckCerts,
		command.UserAgent, command.DefaultUserAgent,
		command.Referer, command.DefaultReferer,
		command.ExtractorRetries, command.ExtractorRetriesNum,
		command.FragmentRetries, command.FragmentRetriesNum,
		command.RetrySleep, command.RetrySleepLinear,
	}
	if c.cookiesFromBrowser != "" {
		args = append(args, command.CookiesFromBrowser, c.cookiesFromBrowser)
	}
	return args
}
