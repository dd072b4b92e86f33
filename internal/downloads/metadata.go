package downloads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"vidrelay/internal/domain/command"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/parsing"
	"vidrelay/internal/utils/logging"
)

// ytdlpInfo mirrors the --dump-json fields the program reads.
type ytdlpInfo struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Duration   float64       `json:"duration"`
	Thumbnail  string        `json:"thumbnail"`
	Uploader   string        `json:"uploader"`
	UploadDate string        `json:"upload_date"`
	ViewCount  int64         `json:"view_count"`
	WebpageURL string        `json:"webpage_url"`
	Formats    []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	Filesize   int64   `json:"filesize"`
	Note       string  `json:"format_note"`
}

// FetchMetadata runs yt-dlp in metadata-only mode.
//
// An empty format fetches metadata without a format selector.
func (c *Client) FetchMetadata(ctx context.Context, url string, format consts.Format) (*models.Metadata, error) {
	cmd := c.buildMetadataCommand(ctx, url, format)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.D(1, "Running metadata command for URL %q:\n%v", url, cmd.String())
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("metadata request for %q canceled: %w", url, ctx.Err())
		}
		return nil, extractionError(err, strings.TrimSpace(stderr.String()))
	}

	m, err := parseMetadata(stdout.Bytes())
	if err != nil {
		logging.D(2, "Full stdout for %q: %s", url, stdout.String())
		return nil, err
	}
	return m, nil
}

// buildMetadataCommand builds the --dump-json command for a URL.
func (c *Client) buildMetadataCommand(ctx context.Context, url string, format consts.Format) *exec.Cmd {
	args := make([]string, 0, 24)
	args = append(args, command.DumpJSON)
	args = append(args, c.commonArgs()...)

	if format != "" {
		args = append(args, command.Format, command.Selector(format))
	}

	// Add target URL [ MUST GO LAST !! ]
	args = append(args, url)
	return exec.CommandContext(ctx, c.ytdlpPath, args...)
}

// parseMetadata decodes the first JSON document of yt-dlp output.
func parseMetadata(out []byte) (*models.Metadata, error) {
	var info ytdlpInfo
	dec := json.NewDecoder(bytes.NewReader(out))
	if err := dec.Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	m := &models.Metadata{
		Title:      info.Title,
		Duration:   info.Duration,
		Thumbnail:  info.Thumbnail,
		Uploader:   info.Uploader,
		ViewCount:  info.ViewCount,
		WebpageURL: info.WebpageURL,
	}
	if info.UploadDate != "" {
		if t, err := parsing.ParseUploadDate(info.UploadDate); err == nil {
			m.UploadDate = &t
		} else {
			logging.D(1, "Ignoring upload date for %q: %v", info.ID, err)
		}
	}

	m.Formats = make([]models.VideoFormat, 0, len(info.Formats))
	for _, f := range info.Formats {
		m.Formats = append(m.Formats, models.VideoFormat{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Resolution: f.Resolution,
			Height:     f.Height,
			FPS:        f.FPS,
			VCodec:     f.VCodec,
			ACodec:     f.ACodec,
			Filesize:   f.Filesize,
			Note:       f.Note,
		})
	}
	return m, nil
}
