package models

import "time"

// Metadata is the subset of yt-dlp's --dump-json output the program uses.
type Metadata struct {
	Title      string        `json:"title"`
	Duration   float64       `json:"duration"`
	Thumbnail  string        `json:"thumbnail,omitempty"`
	Uploader   string        `json:"uploader,omitempty"`
	UploadDate *time.Time    `json:"uploadDate,omitempty"`
	ViewCount  int64         `json:"viewCount,omitempty"`
	WebpageURL string        `json:"webpageUrl,omitempty"`
	Formats    []VideoFormat `json:"formats,omitempty"`
}

// VideoFormat is one entry of the source's available formats.
type VideoFormat struct {
	FormatID   string  `json:"formatId"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution,omitempty"`
	Height     int     `json:"height,omitempty"`
	FPS        float64 `json:"fps,omitempty"`
	VCodec     string  `json:"vcodec,omitempty"`
	ACodec     string  `json:"acodec,omitempty"`
	Filesize   int64   `json:"filesize,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Clone returns a deep copy of the metadata.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	c.Formats = append([]VideoFormat(nil), m.Formats...)
	if m.UploadDate != nil {
		t := *m.UploadDate
		c.UploadDate = &t
	}
	return &c
}
