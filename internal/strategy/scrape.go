package strategy

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"socialdl/internal/model"
	"socialdl/internal/resolver"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// HTMLScrape resolves by fetching an HTML page and reading media links
// out of it with CSS selectors
type HTMLScrape struct {
	name    string
	client  *http.Client
	timeout time.Duration
	build   func(rawURL string) (request, error)
	parse   func(doc *goquery.Document, rawURL string) (*model.ResolutionResult, error)
}

var _ resolver.Strategy = (*HTMLScrape)(nil)

func (s *HTMLScrape) Name() string { return s.name }

func (s *HTMLScrape) Timeout() time.Duration { return s.timeout }

func (s *HTMLScrape) Resolve(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
	req, err := s.build(rawURL)
	if err != nil {
		return nil, err
	}
	if req.accept == "" {
		req.accept = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	}
	body, err := fetch(ctx, s.client, req)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return s.parse(doc, rawURL)
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}

func metaProperty(doc *goquery.Document, property string) string {
	return attr(doc.Find(`meta[property="`+property+`"]`).First(), "content")
}

// NewSsstik scrapes TikTok download links from ssstik
func NewSsstik(endpoint string, client *http.Client, timeout time.Duration) *HTMLScrape {
	return &HTMLScrape{
		name:    "ssstik",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			return getRequest(endpoint, "url", rawURL)
		},
		parse: parseSsstik,
	}
}

func parseSsstik(doc *goquery.Document, _ string) (*model.ResolutionResult, error) {
	var formats formatList
	formats.add(videoFormat("HD (No Watermark)", attr(doc.Find("a.download-link").First(), "href"), "mp4"))
	if formats.len() == 0 {
		return nil, errNoMedia
	}
	return &model.ResolutionResult{Formats: formats.items}, nil
}

// NewTwitsave scrapes Twitter/X download links from twitsave
func NewTwitsave(endpoint string, client *http.Client, timeout time.Duration) *HTMLScrape {
	return &HTMLScrape{
		name:    "twitsave",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			req, err := getRequest(endpoint, "url", rawURL)
			req.referer = "https://twitsave.com/"
			return req, err
		},
		parse: parseTwitsave,
	}
}

func parseTwitsave(doc *goquery.Document, _ string) (*model.ResolutionResult, error) {
	var formats formatList
	doc.Find(".download-link").Each(func(_ int, sel *goquery.Selection) {
		quality := strings.TrimSpace(sel.Text())
		if quality == "" {
			quality = "HD"
		}
		formats.add(videoFormat(quality, attr(sel, "href"), "mp4"))
	})
	if formats.len() == 0 {
		return nil, errNoMedia
	}
	resolver.SortByQuality(formats.items)

	return &model.ResolutionResult{
		Title:     strings.TrimSpace(doc.Find("h1").First().Text()),
		Author:    strings.TrimSpace(doc.Find(".username").First().Text()),
		Thumbnail: metaProperty(doc, "og:image"),
		Formats:   formats.items,
	}, nil
}

// NewFdown scrapes Facebook download links from fdown
func NewFdown(endpoint string, client *http.Client, timeout time.Duration) *HTMLScrape {
	return &HTMLScrape{
		name:    "fdown",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			req, err := getRequest(endpoint, "URLz", rawURL)
			req.referer = "https://fdown.net/"
			return req, err
		},
		parse: parseFdown,
	}
}

func parseFdown(doc *goquery.Document, _ string) (*model.ResolutionResult, error) {
	var formats formatList
	doc.Find("#hdlink").Each(func(_ int, sel *goquery.Selection) {
		formats.add(videoFormat("HD", attr(sel, "href"), "mp4"))
	})
	doc.Find("#sdlink").Each(func(_ int, sel *goquery.Selection) {
		formats.add(videoFormat("SD", attr(sel, "href"), "mp4"))
	})
	doc.Find(".btn.btn-primary").Each(func(_ int, sel *goquery.Selection) {
		quality := "SD"
		if strings.Contains(sel.Text(), "HD") {
			quality = "HD"
		}
		formats.add(videoFormat(quality, attr(sel, "href"), "mp4"))
	})
	if formats.len() == 0 {
		return nil, errNoMedia
	}

	return &model.ResolutionResult{
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		Thumbnail: metaProperty(doc, "og:image"),
		Formats:   formats.items,
	}, nil
}

// NewOpenGraph reads the post page itself and takes the media link from
// its Open Graph tags or its JSON-LD block
func NewOpenGraph(client *http.Client, timeout time.Duration) *HTMLScrape {
	return &HTMLScrape{
		name:    "opengraph",
		client:  client,
		timeout: timeout,
		build: func(rawURL string) (request, error) {
			if !isHTTPURL(rawURL) {
				rawURL = "https://" + strings.TrimSpace(rawURL)
			}
			return request{method: http.MethodGet, url: rawURL}, nil
		},
		parse: parseOpenGraph,
	}
}

func parseOpenGraph(doc *goquery.Document, _ string) (*model.ResolutionResult, error) {
	videoURL := metaProperty(doc, "og:video")
	if videoURL == "" {
		videoURL = metaProperty(doc, "og:video:secure_url")
	}
	thumbnail := metaProperty(doc, "og:image")

	// JSON-LD wins over Open Graph when it names a content URL.
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := sel.Text()
		if !gjson.Valid(raw) {
			return true
		}
		ld := gjson.Parse(raw)
		content := firstString(ld, "video.contentUrl", "contentUrl")
		if !isHTTPURL(content) {
			return true
		}
		videoURL = content
		if thumb := firstString(ld, "video.thumbnailUrl", "thumbnailUrl"); thumb != "" {
			thumbnail = thumb
		}
		return false
	})

	var formats formatList
	formats.add(videoFormat("HD", videoURL, "mp4"))
	if formats.len() == 0 {
		return nil, errNoMedia
	}

	return &model.ResolutionResult{
		Title:       metaProperty(doc, "og:title"),
		Description: metaProperty(doc, "og:description"),
		Thumbnail:   thumbnail,
		Formats:     formats.items,
	}, nil
}
