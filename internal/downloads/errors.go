package downloads

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExtractionFailed is returned when yt-dlp exits non-zero.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrParseFailed is returned when metadata output is not valid JSON.
	ErrParseFailed = errors.New("failed to parse metadata")

	// ErrArtifactNotFound is returned when yt-dlp succeeds but no file carries the job prefix.
	ErrArtifactNotFound = errors.New("downloaded file not found")

	// ErrBotDetected is wrapped alongside ErrExtractionFailed when the site asked for a bot check.
	ErrBotDetected = errors.New("site detected bot activity")
)

var botPhrases = []string{
	"confirm you’re not a bot",
	"confirm you're not a bot",
	"not a robot",
}

// extractionError builds the error for a failed yt-dlp run.
func extractionError(runErr error, stderr string) error {
	lower := strings.ToLower(stderr)
	for _, p := range botPhrases {
		if strings.Contains(lower, p) {
			return fmt.Errorf("%w (%w): %v: %s", ErrExtractionFailed, ErrBotDetected, runErr, stderr)
		}
	}
	if stderr == "" {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, runErr)
	}
	return fmt.Errorf("%w: %v: %s", ErrExtractionFailed, runErr, stderr)
}
