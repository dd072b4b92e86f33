package downloads

import (
	"strconv"
	"strings"

	"vidrelay/internal/domain/regex"
)

const downloadTag = "[download]"

// Progress is one parsed yt-dlp progress line.
type Progress struct {
	Percent float64
	Speed   string
	ETA     string
}

// ParseProgressLine extracts progress from a "[download]" line.
//
// Speed and ETA are best effort; ok is false when the line carries no percentage.
func ParseProgressLine(line string) (p Progress, ok bool) {
	if !strings.Contains(line, downloadTag) {
		return p, false
	}
	line = regex.AnsiEscapeCompile().ReplaceAllString(line, "")

	m := regex.DownloadPercentCompile().FindStringSubmatch(line)
	if m == nil {
		return p, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return p, false
	}
	p.Percent = min(max(pct, 0), 100)

	if s := regex.DownloadSpeedCompile().FindStringSubmatch(line); s != nil {
		p.Speed = s[1]
	}
	if e := regex.DownloadETACompile().FindStringSubmatch(line); e != nil {
		p.ETA = e[1]
	}
	return p, true
}
