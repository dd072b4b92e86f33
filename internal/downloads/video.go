package downloads

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"vidrelay/internal/domain/command"
	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"
)

const (
	stderrTailLines = 20

	// maxOutputLine caps a single line of yt-dlp output.
	maxOutputLine = 1 << 20
)

// partialExts are yt-dlp working files that never count as the artifact.
var partialExts = map[string]bool{
	".part":  true,
	".ytdl":  true,
	".temp":  true,
	".tmp":   true,
	".frag":  true,
	".json":  true,
	".webp":  true,
	".jpg":   true,
	".png":   true,
	".vtt":   true,
	".srt":   true,
	".lrc":   true,
	".ass":   true,
	".m3u8":  true,
	".mhtml": true,
}

// Download runs yt-dlp for one job and returns the artifact path.
//
// Progress is reported on updates without blocking. updates is closed before Download returns.
func (c *Client) Download(ctx context.Context, jobID, url string, format consts.Format, updates chan<- models.ProgressUpdate) (path string, err error) {
	defer close(updates)
	defer func() {
		if err != nil {
			send(updates, models.ProgressUpdate{Kind: consts.ProgressKindError, JobID: jobID, Error: err})
			return
		}
		send(updates, models.ProgressUpdate{Kind: consts.ProgressKindComplete, JobID: jobID, Percent: 100})
	}()

	cmd := c.buildDownloadCommand(ctx, jobID, url, format)
	logging.D(1, "Built download command for URL %q:\n%v", url, cmd.String())

	if err := c.executeDownload(ctx, cmd, jobID, updates); err != nil {
		return "", err
	}
	return c.findArtifact(jobID)
}

// buildDownloadCommand builds the format-specific download command.
func (c *Client) buildDownloadCommand(ctx context.Context, jobID, url string, format consts.Format) *exec.Cmd {
	args := make([]string, 0, 40)

	var outputSyntax string
	if ext := format.AudioExt(); ext != "" {
		outputSyntax = fmt.Sprintf(command.AudioFilenameSyntax, jobID, ext)
		args = append(args,
			command.ExtractAudio,
			command.AudioFormat, ext,
			command.AudioQuality, command.AudioQualityBest,
			command.Format, command.SelectorAudioDL)
	} else {
		outputSyntax = fmt.Sprintf(command.VideoFilenameSyntax, jobID)
		args = append(args, command.Format, command.Selector(format))
	}

	args = append(args,
		command.Output, filepath.Join(c.outputDir, outputSyntax),
		command.Newline)
	args = append(args, c.commonArgs()...)

	// Pace requests (avoid detection as bot)
	args = append(args,
		command.SleepInterval, command.SleepIntervalSecs,
		command.MaxSleepInterval, command.MaxSleepIntervalSec,
		command.ThrottledRate, command.ThrottledRateMin)

	// Add target URL [ MUST GO LAST !! ]
	args = append(args, url)
	return exec.CommandContext(ctx, c.ytdlpPath, args...)
}

// executeDownload runs the command, streaming stdout progress until exit.
func (c *Client) executeDownload(ctx context.Context, cmd *exec.Cmd, jobID string, updates chan<- models.ProgressUpdate) error {
	// Set process group to allow killing children processes (e.g. ffmpeg)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			logging.E("Failed to kill process group %d: %v", cmd.Process.Pid, err)
			return cmd.Process.Kill()
		}
		return nil
	}

	// Set pipes
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe error: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start command: %v", ErrExtractionFailed, err)
	}

	var (
		wg   sync.WaitGroup
		tail []string
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
		for scanner.Scan() {
			line := scanner.Text()
			logging.D(3, "Job %s yt-dlp stderr: %q", jobID, line)
			tail = append(tail, line)
			if len(tail) > stderrTailLines {
				tail = tail[1:]
			}
		}
		if err := scanner.Err(); err != nil {
			logging.W("Job %s: stopped reading yt-dlp stderr: %v", jobID, err)
			_, _ = io.Copy(io.Discard, stderr)
		}
	}()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			logging.D(4, "Job %s yt-dlp output: %q", jobID, line)
		}
		if p, ok := ParseProgressLine(line); ok {
			send(updates, models.ProgressUpdate{
				Kind:    consts.ProgressKindProgress,
				JobID:   jobID,
				Percent: p.Percent,
				Speed:   p.Speed,
				ETA:     p.ETA,
			})
		}
	}
	// The process blocks on a full pipe unless stdout is read to EOF.
	scanErr := scanner.Err()
	if scanErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("download for job %s canceled: %w", jobID, ctx.Err())
		}
		return extractionError(err, strings.Join(tail, "\n"))
	}
	if scanErr != nil {
		return fmt.Errorf("%w: reading yt-dlp output for job %s: %v", ErrExtractionFailed, jobID, scanErr)
	}
	return nil
}

// findArtifact returns the file in the output directory prefixed by the job ID.
//
// Polls briefly in case the final move is not yet visible.
func (c *Client) findArtifact(jobID string) (string, error) {
	prefix := jobID + "_"
	deadline := time.Now().Add(c.fileWait)

	for {
		path, err := scanForArtifact(c.outputDir, prefix)
		if err != nil {
			return "", err
		}
		if path != "" {
			if err := verifyArtifact(path); err != nil {
				return "", err
			}
			logging.D(1, "Found artifact %q for job %s", path, jobID)
			return path, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: no file with prefix %q in %q", ErrArtifactNotFound, prefix, c.outputDir)
		}
		time.Sleep(consts.FileCheckInterval)
	}
}

// scanForArtifact returns the first finished file in dir whose name starts with prefix.
func scanForArtifact(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory %q: %w", dir, err)
	}

	var matches []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if partialExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		matches = append(matches, name)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return filepath.Join(dir, matches[0]), nil
}

// verifyArtifact checks that the artifact exists and is not empty.
func verifyArtifact(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: file is empty: %s", ErrArtifactNotFound, path)
	}
	return nil
}

// send delivers u if the consumer has room, dropping it otherwise.
func send(updates chan<- models.ProgressUpdate, u models.ProgressUpdate) {
	select {
	case updates <- u:
	default:
		logging.D(3, "Dropped %s update for job %s", u.Kind, u.JobID)
	}
}
