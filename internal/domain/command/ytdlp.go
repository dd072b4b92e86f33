// Package command holds yt-dlp flags and format selectors.
package command

import "vidrelay/internal/domain/consts"

// General
const (
	AudioFormat        = "--audio-format"
	AudioQuality       = "--audio-quality"
	AudioQualityBest   = "0"
	CookiesFromBrowser = "--cookies-from-browser"
	DumpJSON           = "--dump-json"
	ExtractAudio       = "--extract-audio"
	Format             = "--format"
	Newline            = "--newline"
	NoCheckCerts       = "--no-check-certificates"
	NoWarnings         = "--no-warnings"
	Output             = "--output"
	Referer            = "--referer"
	UserAgent          = "--user-agent"
	YTDLP              = "yt-dlp"
)

// Resilience
const (
	ExtractorRetries    = "--extractor-retries"
	ExtractorRetriesNum = "3"
	FragmentRetries     = "--fragment-retries"
	FragmentRetriesNum  = "3"
	RetrySleep          = "--retry-sleep"
	RetrySleepLinear    = "linear=1::2"
)

// Pacing
const (
	SleepInterval       = "--sleep-interval"
	SleepIntervalSecs   = "1"
	MaxSleepInterval    = "--max-sleep-interval"
	MaxSleepIntervalSec = "5"
	ThrottledRate       = "--throttled-rate"
	ThrottledRateMin    = "100K"
)

// Request identity
const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultReferer   = "https://www.youtube.com/"
)

// Filename templates. The job ID prefix lets the artifact be found after the tool
// renders the title into the name.
const (
	VideoFilenameSyntax = "%s_%%(title)s.%%(ext)s"
	AudioFilenameSyntax = "%s_%%(title)s.%s"
)

// Format selectors
const (
	SelectorVideo720  = "best[height<=720][ext=mp4]/best[height<=720]/bestvideo[height<=720]+bestaudio/best"
	SelectorVideo1080 = "best[height<=1080][ext=mp4]/best[height<=1080]/bestvideo[height<=1080]+bestaudio/best"
	SelectorAudioMP3  = "bestaudio[ext=m4a]/bestaudio[ext=mp3]/bestaudio/best"
	SelectorAudioWAV  = "bestaudio[ext=wav]/bestaudio/best"
	SelectorBest      = "bestvideo+bestaudio/best"
	SelectorAudioDL   = "bestaudio/best"
	SelectorFallback  = "best"
)

// Selector returns the yt-dlp format selector for the given output format.
func Selector(f consts.Format) string {
	switch f {
	case consts.FormatVideo720:
		return SelectorVideo720
	case consts.FormatVideo1080:
		return SelectorVideo1080
	case consts.FormatAudioMP3:
		return SelectorAudioMP3
	case consts.FormatAudioWAV:
		return SelectorAudioWAV
	case consts.FormatBest:
		return SelectorBest
	default:
		return SelectorFallback
	}
}
