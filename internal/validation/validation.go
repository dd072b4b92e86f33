// Package validation checks caller input before any record is created.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"vidrelay/internal/domain/consts"
	"vidrelay/internal/models"
	"vidrelay/internal/utils/logging"
)

// ErrValidation wraps every input validation failure.
var ErrValidation = errors.New("validation failed")

// ValidateSourceURL checks that u is an absolute http(s) URL.
func ValidateSourceURL(u string) error {
	if strings.TrimSpace(u) == "" {
		return fmt.Errorf("%w: source URL is empty", ErrValidation)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("%w: source URL %q is invalid: %v", ErrValidation, u, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: source URL %q must use http or https", ErrValidation, u)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: source URL %q has no host", ErrValidation, u)
	}
	return nil
}

// ValidateNotifyURL checks an optional webhook URL. Empty is valid.
func ValidateNotifyURL(u string) error {
	if u == "" {
		return nil
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("%w: notify URL %q is not valid: %v", ErrValidation, u, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return fmt.Errorf("%w: notify URL %q must be an absolute http(s) URL", ErrValidation, u)
	}
	return nil
}

// ValidateFormat resolves f to a supported format, accepting legacy aliases.
func ValidateFormat(f string) (consts.Format, error) {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "" {
		return "", fmt.Errorf("%w: format is required", ErrValidation)
	}
	if consts.ValidFormats[consts.Format(f)] {
		return consts.Format(f), nil
	}
	if alias, ok := consts.FormatAliases[f]; ok {
		logging.D(2, "Resolved format alias %q to %q", f, alias)
		return alias, nil
	}
	return "", fmt.Errorf("%w: unsupported format %q", ErrValidation, f)
}

// ValidateJobInput validates a job request, normalizing its format.
func ValidateJobInput(in *models.JobInput) error {
	if err := ValidateSourceURL(in.SourceURL); err != nil {
		return err
	}
	f, err := ValidateFormat(string(in.Format))
	if err != nil {
		return err
	}
	in.Format = f
	return ValidateNotifyURL(in.NotifyWebhookURL)
}

// ValidateBatchInput validates a batch request, normalizing its format.
//
// A batch holds between 1 and consts.MaxBatchURLs URLs.
func ValidateBatchInput(in *models.BatchInput) error {
	switch n := len(in.SourceURLs); {
	case n == 0:
		return fmt.Errorf("%w: at least one URL is required", ErrValidation)
	case n > consts.MaxBatchURLs:
		return fmt.Errorf("%w: maximum %d URLs allowed per batch, got %d", ErrValidation, consts.MaxBatchURLs, n)
	}

	for i, u := range in.SourceURLs {
		if err := ValidateSourceURL(u); err != nil {
			return fmt.Errorf("URL at position %d: %w", i, err)
		}
	}

	f, err := ValidateFormat(string(in.Format))
	if err != nil {
		return err
	}
	in.Format = f
	return ValidateNotifyURL(in.NotifyWebhookURL)
}
