package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"socialdl/internal/model"
	"socialdl/internal/resolver"

	"github.com/tidwall/gjson"
)

// errNoMedia is returned by parsers that found no usable media link
var errNoMedia = errors.New("no media links in response")

// JSONLookup resolves through a third-party endpoint that answers in JSON.
// Response shapes are read with gjson paths so an unexpected shape only
// ever turns into "no media".
type JSONLookup struct {
	name    string
	client  *http.Client
	timeout time.Duration
	build   func(rawURL string) (request, error)
	parse   func(doc gjson.Result, rawURL string) (*model.ResolutionResult, error)
	// enrich optionally fills metadata the lookup itself did not return
	enrich func(ctx context.Context, result *model.ResolutionResult, rawURL string)
}

var _ resolver.Strategy = (*JSONLookup)(nil)

func (l *JSONLookup) Name() string { return l.name }

func (l *JSONLookup) Timeout() time.Duration { return l.timeout }

func (l *JSONLookup) Resolve(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
	req, err := l.build(rawURL)
	if err != nil {
		return nil, err
	}
	body, err := fetch(ctx, l.client, req)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response is not JSON")
	}
	result, err := l.parse(gjson.ParseBytes(body), rawURL)
	if err != nil {
		return nil, err
	}
	if l.enrich != nil {
		l.enrich(ctx, result, rawURL)
	}
	return result, nil
}

// NewTikmate looks TikTok posts up on tikmate
func NewTikmate(endpoint string, client *http.Client, timeout time.Duration) *JSONLookup {
	return &JSONLookup{
		name:    "tikmate",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			req, err := getRequest(endpoint, "url", rawURL)
			req.referer = "https://tikmate.app/"
			return req, err
		},
		parse: parseTikmate,
	}
}

func parseTikmate(doc gjson.Result, _ string) (*model.ResolutionResult, error) {
	if !doc.Get("success").Bool() {
		if msg := firstString(doc, "message", "error"); msg != "" {
			return nil, fmt.Errorf("lookup reported failure: %s", msg)
		}
		return nil, errors.New("lookup reported failure")
	}

	var formats formatList
	size := sizeLabel(doc.Get("size").Int())
	noWatermark := videoFormat("HD (No Watermark)", firstString(doc, "video_url_no_watermark", "video_url"), "mp4")
	noWatermark.Size = size
	formats.add(noWatermark)
	watermark := videoFormat("HD (With Watermark)", doc.Get("video_url").String(), "mp4")
	watermark.Size = size
	formats.add(watermark)
	formats.add(audioFormat("Audio", doc.Get("music_url").String(), "mp3"))

	if formats.len() == 0 {
		return nil, errNoMedia
	}

	result := &model.ResolutionResult{
		Title:     doc.Get("title").String(),
		Author:    firstString(doc, "author.nickname", "author.unique_id"),
		Thumbnail: firstString(doc, "cover", "thumbnail"),
		Duration:  jsonDuration(doc.Get("duration")),
		Formats:   formats.items,
	}
	if musicURL := doc.Get("music_url").String(); isHTTPURL(musicURL) {
		music := &model.MusicInfo{
			Title:  firstString(doc, "music_info.title"),
			Author: firstString(doc, "music_info.author"),
			URL:    musicURL,
		}
		if music.Title == "" {
			music.Title = "Original Sound"
		}
		if music.Author == "" {
			music.Author = "Unknown"
		}
		result.Music = music
	}
	return result, nil
}

// NewSavefrom looks Instagram posts up on savefrom
func NewSavefrom(endpoint string, client *http.Client, timeout time.Duration) *JSONLookup {
	return &JSONLookup{
		name:    "savefrom",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			req, err := getRequest(endpoint, "url", rawURL)
			req.referer = "https://savefrom.net/"
			return req, err
		},
		parse: parseSavefrom,
	}
}

func parseSavefrom(doc gjson.Result, _ string) (*model.ResolutionResult, error) {
	var formats formatList
	links := doc.Get("url")
	if links.IsArray() {
		for i, item := range links.Array() {
			quality := item.Get("quality").String()
			if quality == "" {
				quality = "SD"
				if i == 0 {
					quality = "HD"
				}
			}
			f := model.MediaFormat{
				Quality:   quality,
				URL:       item.Get("url").String(),
				Extension: firstString(item, "ext", "type"),
			}
			if item.Get("type").String() == "video" {
				f.Extension = "mp4"
				f.HasVideo = model.Bool(true)
			}
			f.Size = jsonSize(item.Get("size"))
			formats.add(f)
		}
	} else {
		formats.add(model.MediaFormat{Quality: "HD", URL: links.String(), Extension: "mp4"})
	}

	if formats.len() == 0 {
		return nil, errNoMedia
	}
	resolver.SortByQuality(formats.items)

	return &model.ResolutionResult{
		Title:     doc.Get("meta.title").String(),
		Author:    doc.Get("meta.author").String(),
		Thumbnail: firstString(doc, "thumbnail", "meta.thumbnail"),
		Duration:  jsonDuration(doc.Get("meta.duration")),
		Formats:   formats.items,
	}, nil
}

// NewYt5s looks YouTube videos up on yt5s with a form-encoded POST. When
// yt5s returns no title and oembedEndpoint is set, the title is taken from
// YouTube's oEmbed endpoint.
func NewYt5s(endpoint, oembedEndpoint string, client *http.Client, timeout time.Duration) *JSONLookup {
	return &JSONLookup{
		name:    "yt5s",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			return request{
				method:  http.MethodPost,
				url:     endpoint,
				form:    url.Values{"q": {rawURL}, "vt": {"home"}},
				accept:  "application/json",
				headers: map[string]string{"X-Requested-With": "XMLHttpRequest"},
			}, nil
		},
		parse: parseYt5s,
		enrich: func(ctx context.Context, result *model.ResolutionResult, rawURL string) {
			if result.Title != "" || oembedEndpoint == "" {
				return
			}
			result.Title = oEmbedTitle(ctx, client, oembedEndpoint, rawURL)
		},
	}
}

// oEmbedTitle asks YouTube's oEmbed endpoint for the video title. Any
// failure leaves the title empty.
func oEmbedTitle(ctx context.Context, client *http.Client, endpoint, rawURL string) string {
	id := youTubeID(rawURL)
	if id == "" {
		return ""
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("url", "https://www.youtube.com/watch?v="+id)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	body, err := fetch(ctx, client, request{method: http.MethodGet, url: u.String(), accept: "application/json"})
	if err != nil || !gjson.ValidBytes(body) {
		return ""
	}
	return gjson.GetBytes(body, "title").String()
}

func parseYt5s(doc gjson.Result, rawURL string) (*model.ResolutionResult, error) {
	var video, audio formatList
	doc.Get("links.mp4").ForEach(func(_, item gjson.Result) bool {
		f := videoFormat(firstString(item, "q", "quality"), firstString(item, "url", "k"), "mp4")
		f.Size = item.Get("size").String()
		video.add(f)
		return true
	})
	doc.Get("links.mp3").ForEach(func(_, item gjson.Result) bool {
		quality := firstString(item, "q", "quality")
		if quality == "" {
			quality = "MP3"
		}
		f := audioFormat(quality, firstString(item, "url", "k"), "mp3")
		f.Size = item.Get("size").String()
		audio.add(f)
		return true
	})

	if video.len()+audio.len() == 0 {
		return nil, errNoMedia
	}
	// Video renditions are ranked among themselves; audio-only ones follow.
	resolver.SortByQuality(video.items)
	formats := append(video.items, audio.items...)

	result := &model.ResolutionResult{
		Title:    doc.Get("title").String(),
		Author:   firstString(doc, "author", "a"),
		Duration: jsonDuration(doc.Get("duration")),
		Formats:  formats,
	}
	id := firstString(doc, "vid")
	if id == "" {
		id = youTubeID(rawURL)
	}
	if id != "" {
		result.Thumbnail = "https://img.youtube.com/vi/" + id + "/maxresdefault.jpg"
	}
	return result, nil
}

// NewTwdown looks Twitter/X posts up on twdown
func NewTwdown(endpoint string, client *http.Client, timeout time.Duration) *JSONLookup {
	return &JSONLookup{
		name:    "twdown",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			return getRequest(endpoint, "url", rawURL)
		},
		parse: parseTwdown,
	}
}

func parseTwdown(doc gjson.Result, _ string) (*model.ResolutionResult, error) {
	var formats formatList
	doc.Get("formats").ForEach(func(_, item gjson.Result) bool {
		formats.add(videoFormat(item.Get("quality").String(), item.Get("url").String(), firstString(item, "ext")))
		return true
	})
	if formats.len() == 0 {
		return nil, errNoMedia
	}
	resolver.SortByQuality(formats.items)

	return &model.ResolutionResult{
		Title:     doc.Get("title").String(),
		Author:    doc.Get("author").String(),
		Thumbnail: doc.Get("thumbnail").String(),
		Formats:   formats.items,
	}, nil
}

// NewSnapdownloader looks Snapchat posts up on snapdownloader
func NewSnapdownloader(endpoint string, client *http.Client, timeout time.Duration) *JSONLookup {
	return &JSONLookup{
		name:    "snapdownloader",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			return getRequest(endpoint, "url", rawURL)
		},
		parse: parseSnapdownloader,
	}
}

func parseSnapdownloader(doc gjson.Result, _ string) (*model.ResolutionResult, error) {
	var formats formatList
	formats.add(videoFormat("HD", doc.Get("url").String(), "mp4"))
	if formats.len() == 0 {
		return nil, errNoMedia
	}
	return &model.ResolutionResult{
		Title:     doc.Get("title").String(),
		Thumbnail: doc.Get("thumbnail").String(),
		Formats:   formats.items,
	}, nil
}

// jsonSize accepts a byte count or a preformatted label
func jsonSize(v gjson.Result) string {
	if v.Type == gjson.Number {
		return sizeLabel(v.Int())
	}
	return v.String()
}
