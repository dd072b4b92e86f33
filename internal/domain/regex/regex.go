// Package regex compiles and caches various regex expressions.
package regex

import (
	"regexp"
	"sync"
)

var (
	downloadPercent *regexp.Regexp
	downloadSpeed   *regexp.Regexp
	downloadETA     *regexp.Regexp
	ansiEscape      *regexp.Regexp

	once sync.Once
)

func compile() {
	downloadPercent = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	downloadSpeed = regexp.MustCompile(`(\d+(?:\.\d+)?\w+/s)`)
	downloadETA = regexp.MustCompile(`ETA (\d+:\d+(?::\d+)?)`)
	ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)
}

// DownloadPercentCompile returns the regex for "[download]  42.0%" style percentages.
func DownloadPercentCompile() *regexp.Regexp {
	once.Do(compile)
	return downloadPercent
}

// DownloadSpeedCompile returns the regex for transfer speeds (e.g. "1.50MiB/s").
func DownloadSpeedCompile() *regexp.Regexp {
	once.Do(compile)
	return downloadSpeed
}

// DownloadETACompile returns the regex for "ETA 00:12".
func DownloadETACompile() *regexp.Regexp {
	once.Do(compile)
	return downloadETA
}

// AnsiEscapeCompile returns the regex for ANSI escape codes.
func AnsiEscapeCompile() *regexp.Regexp {
	once.Do(compile)
	return ansiEscape
}
