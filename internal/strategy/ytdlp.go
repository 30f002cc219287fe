package strategy

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"socialdl/internal/extractor"
	"socialdl/internal/model"
	"socialdl/internal/resolver"
)

// YtDlp resolves through the yt-dlp metadata dump. One instance serves
// one platform so per-platform extractor flags are applied.
type YtDlp struct {
	client         *extractor.Client
	platform       model.Platform
	preferCombined bool
}

var _ resolver.Strategy = (*YtDlp)(nil)

// NewYtDlp creates the yt-dlp strategy for platform
func NewYtDlp(client *extractor.Client, platform model.Platform, preferCombined bool) *YtDlp {
	return &YtDlp{client: client, platform: platform, preferCombined: preferCombined}
}

func (y *YtDlp) Name() string { return "ytdlp" }

func (y *YtDlp) Timeout() time.Duration { return y.client.Timeout() }

func (y *YtDlp) Resolve(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
	info, err := y.client.Dump(ctx, rawURL, y.platform)
	if err != nil {
		return nil, err
	}
	return y.convert(info), nil
}

// convert maps a dump to a result. An empty result is left for the
// engine to reject.
func (y *YtDlp) convert(info *extractor.Info) *model.ResolutionResult {
	result := &model.ResolutionResult{
		Title:     strings.TrimSpace(info.Title),
		Thumbnail: info.Thumbnail,
		Duration:  info.DurationString,
		Author:    info.Uploader,
	}
	if result.Duration == "" {
		result.Duration = durationLabel(int(info.Duration))
	}
	if result.Author == "" {
		result.Author = info.Channel
	}

	if len(info.Entries) > 0 {
		// Carousels and multi-video posts: one rendition per entry, in post order.
		var formats formatList
		for i, entry := range info.Entries {
			mediaURL := entry.URL
			if mediaURL == "" {
				if best := rankFormats(entry.Formats, y.preferCombined); len(best) > 0 {
					mediaURL = best[0].URL
				}
			}
			f := model.MediaFormat{
				Quality:   "Item " + strconv.Itoa(i+1),
				URL:       mediaURL,
				Extension: entry.Ext,
				HasVideo:  trackFlag(entry.VCodec),
				HasAudio:  trackFlag(entry.ACodec),
			}
			formats.add(f)
			if result.Thumbnail == "" {
				result.Thumbnail = entry.Thumbnail
			}
		}
		result.Formats = formats.items
	} else {
		result.Formats = rankFormats(info.Formats, y.preferCombined)
	}

	if isHTTPURL(info.URL) {
		result.BestURL = info.URL
	}
	return result
}

// rankFormats converts yt-dlp formats best-first by height, then by
// total bitrate. yt-dlp lists formats worst to best, so remaining ties
// keep the later format first. With preferCombined, renditions lacking a
// track are dropped whenever at least one combined rendition exists.
func rankFormats(in []extractor.Format, preferCombined bool) []model.MediaFormat {
	usable := make([]extractor.Format, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		f := in[i]
		if f.URL == "" || f.Ext == "mhtml" || strings.HasPrefix(f.FormatID, "sb") {
			continue
		}
		usable = append(usable, f)
	}
	sort.SliceStable(usable, func(i, j int) bool {
		if usable[i].Height != usable[j].Height {
			return usable[i].Height > usable[j].Height
		}
		return usable[i].TBR > usable[j].TBR
	})

	var formats formatList
	for _, f := range usable {
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}
		formats.add(model.MediaFormat{
			Quality:   formatLabel(f),
			URL:       f.URL,
			Extension: f.Ext,
			Size:      sizeLabel(size),
			HasVideo:  trackFlag(f.VCodec),
			HasAudio:  trackFlag(f.ACodec),
		})
	}

	if !preferCombined {
		return formats.items
	}
	combined := make([]model.MediaFormat, 0, formats.len())
	for _, f := range formats.items {
		if f.Combined() {
			combined = append(combined, f)
		}
	}
	if len(combined) == 0 {
		return formats.items
	}
	return combined
}

func formatLabel(f extractor.Format) string {
	switch {
	case f.Height > 0:
		return strconv.Itoa(f.Height) + "p"
	case f.VCodec == "none" && f.ACodec != "" && f.ACodec != "none":
		return "audio"
	case f.FormatNote != "":
		return f.FormatNote
	default:
		return f.FormatID
	}
}

// trackFlag maps a yt-dlp codec field: unknown stays nil, "none" is false
func trackFlag(codec string) *bool {
	switch codec {
	case "":
		return nil
	case "none":
		return model.Bool(false)
	default:
		return model.Bool(true)
	}
}
