package strategy

import (
	"fmt"
	"regexp"
	"strings"

	"socialdl/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
)

// formatList accumulates renditions, dropping blank, non-http and
// duplicate media URLs while keeping insertion order
type formatList struct {
	items []model.MediaFormat
	seen  map[string]bool
}

func (l *formatList) add(f model.MediaFormat) bool {
	f.URL = strings.TrimSpace(f.URL)
	if !isHTTPURL(f.URL) {
		return false
	}
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	if l.seen[f.URL] {
		return false
	}
	l.seen[f.URL] = true
	if strings.TrimSpace(f.Quality) == "" {
		f.Quality = "Unknown"
	}
	l.items = append(l.items, f)
	return true
}

func (l *formatList) len() int { return len(l.items) }

// videoFormat is a rendition known to carry both tracks
func videoFormat(quality, mediaURL, ext string) model.MediaFormat {
	return model.MediaFormat{
		Quality:   quality,
		URL:       mediaURL,
		Extension: ext,
		HasVideo:  model.Bool(true),
		HasAudio:  model.Bool(true),
	}
}

// audioFormat is an audio-only rendition
func audioFormat(quality, mediaURL, ext string) model.MediaFormat {
	return model.MediaFormat{
		Quality:   quality,
		URL:       mediaURL,
		Extension: ext,
		HasVideo:  model.Bool(false),
		HasAudio:  model.Bool(true),
	}
}

// firstString returns the first non-empty string among paths
func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := strings.TrimSpace(doc.Get(p).String()); s != "" {
			return s
		}
	}
	return ""
}

// durationLabel renders a seconds count as m:ss or h:mm:ss
func durationLabel(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// jsonDuration accepts numeric seconds or an already formatted label
func jsonDuration(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		return durationLabel(int(v.Int()))
	case gjson.String:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}

// sizeLabel renders a byte count for display, or "" when unknown
func sizeLabel(bytes int64) string {
	if bytes <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(bytes))
}

var youTubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]+)`),
}

// youTubeID extracts the video ID from the common YouTube URL shapes
func youTubeID(rawURL string) string {
	for _, p := range youTubeIDPatterns {
		if m := p.FindStringSubmatch(rawURL); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
