package app

import "errors"

// ErrMetadataFailed marks a job that failed before downloading because metadata could not be fetched.
var ErrMetadataFailed = errors.New("failed to fetch metadata")
