package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialdl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve starts a test server answering every request with body and
// hands each request to inspect
func serve(t *testing.T, contentType, body string, inspect func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			require.NoError(t, r.ParseForm())
			inspect(r)
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTikmate(t *testing.T) {
	var gotURL, gotReferer string
	srv := serve(t, "application/json", `{
		"success": true,
		"title": "dance",
		"author": {"nickname": "tt_user"},
		"cover": "https://cdn.example/cover.jpg",
		"duration": 75,
		"size": 2048000,
		"video_url_no_watermark": "https://cdn.example/nowm.mp4",
		"video_url": "https://cdn.example/wm.mp4",
		"music_url": "https://cdn.example/music.mp3",
		"music_info": {"title": "beat", "author": "dj"}
	}`, func(r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		gotReferer = r.Referer()
	})

	lookup := NewTikmate(srv.URL+"/api/lookup", srv.Client(), time.Second)
	result, err := lookup.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1")
	require.NoError(t, err)

	assert.Equal(t, "https://www.tiktok.com/@u/video/1", gotURL)
	assert.Equal(t, "https://tikmate.app/", gotReferer)
	assert.Equal(t, "dance", result.Title)
	assert.Equal(t, "tt_user", result.Author)
	assert.Equal(t, "1:15", result.Duration)
	require.Len(t, result.Formats, 3)
	assert.Equal(t, "https://cdn.example/nowm.mp4", result.Formats[0].URL)
	assert.Equal(t, "2.0 MB", result.Formats[0].Size)
	assert.Equal(t, "https://cdn.example/wm.mp4", result.Formats[1].URL)
	assert.False(t, *result.Formats[2].HasVideo)
	require.NotNil(t, result.Music)
	assert.Equal(t, model.MusicInfo{Title: "beat", Author: "dj", URL: "https://cdn.example/music.mp3"}, *result.Music)
	assert.Equal(t, time.Second, lookup.Timeout())
	assert.Equal(t, "tikmate", lookup.Name())
}

func TestTikmateMusicDefaults(t *testing.T) {
	srv := serve(t, "application/json", `{
		"success": true,
		"video_url": "https://cdn.example/wm.mp4",
		"music_url": "https://cdn.example/music.mp3"
	}`, nil)

	result, err := NewTikmate(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://tiktok.com/x")
	require.NoError(t, err)
	require.NotNil(t, result.Music)
	assert.Equal(t, "Original Sound", result.Music.Title)
	assert.Equal(t, "Unknown", result.Music.Author)
}

func TestTikmateReportedFailure(t *testing.T) {
	srv := serve(t, "application/json", `{"success": false, "message": "private video"}`, nil)

	_, err := NewTikmate(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://tiktok.com/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private video")
}

func TestLookupRejectsNonJSON(t *testing.T) {
	srv := serve(t, "text/html", `<html>captcha</html>`, nil)

	_, err := NewTwdown(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://x.com/u/status/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not JSON")
}

func TestLookupRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewTwdown(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://x.com/u/status/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}

func TestSavefromArray(t *testing.T) {
	srv := serve(t, "application/json", `{
		"url": [
			{"url": "https://cdn.example/low.mp4", "quality": "480p", "type": "video"},
			{"url": "https://cdn.example/high.mp4", "quality": "1080p", "type": "video", "size": 1048576},
			{"url": "not-a-url", "quality": "720p"}
		],
		"meta": {"title": "reel", "author": "ig_user"},
		"thumbnail": "https://cdn.example/t.jpg"
	}`, nil)

	result, err := NewSavefrom(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://instagram.com/reel/x")
	require.NoError(t, err)

	require.Len(t, result.Formats, 2)
	assert.Equal(t, "1080p", result.Formats[0].Quality)
	assert.Equal(t, "1.0 MB", result.Formats[0].Size)
	assert.Equal(t, "480p", result.Formats[1].Quality)
	assert.Equal(t, "reel", result.Title)
	assert.Equal(t, "ig_user", result.Author)
}

func TestSavefromSingleURL(t *testing.T) {
	srv := serve(t, "application/json", `{"url": "https://cdn.example/only.mp4"}`, nil)

	result, err := NewSavefrom(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://instagram.com/p/x")
	require.NoError(t, err)
	require.Len(t, result.Formats, 1)
	assert.Equal(t, "HD", result.Formats[0].Quality)
}

func TestSavefromNoMedia(t *testing.T) {
	srv := serve(t, "application/json", `{"meta": {"title": "x"}}`, nil)

	_, err := NewSavefrom(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://instagram.com/p/x")
	assert.ErrorIs(t, err, errNoMedia)
}

func TestYt5sPostsForm(t *testing.T) {
	var method, q, vt, xrw string
	srv := serve(t, "application/json", `{
		"title": "talk",
		"a": "channel",
		"links": {
			"mp4": {
				"18": {"q": "360p", "k": "https://cdn.example/360.mp4", "size": "5 MB"},
				"22": {"q": "720p", "url": "https://cdn.example/720.mp4"}
			},
			"mp3": {"mp3128": {"q": "128kbps", "url": "https://cdn.example/a.mp3"}}
		}
	}`, func(r *http.Request) {
		method = r.Method
		q = r.PostForm.Get("q")
		vt = r.PostForm.Get("vt")
		xrw = r.Header.Get("X-Requested-With")
	})

	result, err := NewYt5s(srv.URL, "", srv.Client(), time.Second).Resolve(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "https://youtu.be/abc123", q)
	assert.Equal(t, "home", vt)
	assert.Equal(t, "XMLHttpRequest", xrw)

	require.Len(t, result.Formats, 3)
	assert.Equal(t, "720p", result.Formats[0].Quality)
	assert.Equal(t, "360p", result.Formats[1].Quality)
	assert.Equal(t, "5 MB", result.Formats[1].Size)
	assert.Equal(t, "128kbps", result.Formats[2].Quality)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", result.Thumbnail)
	assert.Equal(t, "channel", result.Author)
}

func TestYt5sTitleFromOEmbed(t *testing.T) {
	var oembedURL, oembedFormat string
	oembed := serve(t, "application/json", `{"title": "Never Gonna Give You Up"}`, func(r *http.Request) {
		oembedURL = r.URL.Query().Get("url")
		oembedFormat = r.URL.Query().Get("format")
	})
	srv := serve(t, "application/json", `{"links": {"mp4": {"18": {"q": "360p", "url": "https://cdn.example/360.mp4"}}}}`, nil)

	result, err := NewYt5s(srv.URL, oembed.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", result.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", oembedURL)
	assert.Equal(t, "json", oembedFormat)
}

func TestYt5sOEmbedFailureKeepsResult(t *testing.T) {
	oembed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer oembed.Close()
	srv := serve(t, "application/json", `{"links": {"mp4": {"18": {"q": "360p", "url": "https://cdn.example/360.mp4"}}}}`, nil)

	result, err := NewYt5s(srv.URL, oembed.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Empty(t, result.Title)
	require.Len(t, result.Formats, 1)
}

func TestTwdownSorts(t *testing.T) {
	srv := serve(t, "application/json", `{
		"title": "tweet",
		"formats": [
			{"quality": "360p", "url": "https://cdn.example/360.mp4"},
			{"quality": "720p", "url": "https://cdn.example/720.mp4"}
		]
	}`, nil)

	result, err := NewTwdown(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://x.com/u/status/1")
	require.NoError(t, err)
	require.Len(t, result.Formats, 2)
	assert.Equal(t, "720p", result.Formats[0].Quality)
}

func TestSnapdownloader(t *testing.T) {
	srv := serve(t, "application/json", `{"url": "https://cdn.example/snap.mp4", "thumbnail": "https://cdn.example/s.jpg"}`, nil)

	result, err := NewSnapdownloader(srv.URL, srv.Client(), time.Second).Resolve(context.Background(), "https://snapchat.com/spotlight/x")
	require.NoError(t, err)
	require.Len(t, result.Formats, 1)
	assert.Equal(t, "https://cdn.example/s.jpg", result.Thumbnail)
}

func TestLookupHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewTwdown(srv.URL, srv.Client(), time.Second).Resolve(ctx, "https://x.com/u/status/1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":      "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?feature=x&v=abc_-1": "abc_-1",
		"https://youtu.be/xyz789?t=3":                      "xyz789",
		"https://www.youtube.com/shorts/short1":            "short1",
		"https://www.youtube.com/embed/emb1":               "emb1",
		"https://www.youtube.com/channel/UC123":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, youTubeID(in), in)
	}
}

func TestFormatListDropsInvalidAndDuplicate(t *testing.T) {
	var l formatList
	assert.True(t, l.add(videoFormat("", " https://cdn.example/a.mp4 ", "mp4")))
	assert.False(t, l.add(videoFormat("HD", "https://cdn.example/a.mp4", "mp4")))
	assert.False(t, l.add(videoFormat("HD", "/relative.mp4", "mp4")))
	assert.False(t, l.add(videoFormat("HD", "javascript:alert(1)", "mp4")))

	require.Equal(t, 1, l.len())
	assert.Equal(t, "Unknown", l.items[0].Quality)
	assert.Equal(t, "https://cdn.example/a.mp4", l.items[0].URL)
}

func TestDurationLabel(t *testing.T) {
	assert.Equal(t, "", durationLabel(0))
	assert.Equal(t, "0:09", durationLabel(9))
	assert.Equal(t, "1:01:05", durationLabel(3665))
}
