// Package consts holds various global, unchanging values.
package consts

// Format is a requested output encoding.
type Format string

// Output formats.
const (
	FormatVideo720  Format = "video-720"
	FormatVideo1080 Format = "video-1080"
	FormatAudioMP3  Format = "audio-mp3"
	FormatAudioWAV  Format = "audio-wav"
	FormatBest      Format = "best"
)

// ValidFormats holds every accepted format.
var ValidFormats = map[Format]bool{
	FormatVideo720:  true,
	FormatVideo1080: true,
	FormatAudioMP3:  true,
	FormatAudioWAV:  true,
	FormatBest:      true,
}

// FormatAliases maps legacy short names to formats.
var FormatAliases = map[string]Format{
	"mp4":      FormatVideo720,
	"mp4-1080": FormatVideo1080,
	"mp3":      FormatAudioMP3,
	"wav":      FormatAudioWAV,
}

// IsAudio reports whether the format produces an audio-only artifact.
func (f Format) IsAudio() bool {
	return f == FormatAudioMP3 || f == FormatAudioWAV
}

// AudioExt returns the transcoded audio extension, or "" for video formats.
func (f Format) AudioExt() string {
	switch f {
	case FormatAudioMP3:
		return "mp3"
	case FormatAudioWAV:
		return "wav"
	}
	return ""
}

// DefaultChatFormat is used when a chat command omits the format.
const DefaultChatFormat = FormatAudioMP3

// Batch limits.
const (
	MaxBatchURLs = 20
)

// Artifact content types, keyed by lowercase extension.
var ContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".webm": "video/webm",
}

// DefaultContentType is served for unknown artifact extensions.
const DefaultContentType = "application/octet-stream"

// DefaultAddr is the HTTP listen address.
const DefaultAddr = ":5000"
