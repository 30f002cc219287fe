package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want error
	}{
		{"https", "https://www.tiktok.com/@u/video/1", nil},
		{"no scheme", "youtu.be/abc", nil},
		{"no scheme with link in query", "vm.tiktok.com/ZMabc123/?next=https://example.com", nil},
		{"ftp", "ftp://example.com/file", ErrInvalidURL},
		{"javascript", "javascript://alert(1)", ErrInvalidURL},
		{"whitespace", "https://x.com/a b", ErrInvalidURL},
		{"no host", "https:///path", ErrInvalidURL},
		{"too long", "https://x.com/" + strings.Repeat("a", 80), ErrURLTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateURL(tt.url, 64), tt.want)
		})
	}
}

func TestWithScheme(t *testing.T) {
	assert.Equal(t, "https://youtu.be/abc", WithScheme("youtu.be/abc"))
	assert.Equal(t, "http://x.com/a", WithScheme("http://x.com/a"))
	assert.Equal(t,
		"https://www.youtube.com/watch?v=abc&ref=https://t.co/x",
		WithScheme("www.youtube.com/watch?v=abc&ref=https://t.co/x"))
	assert.False(t, HasScheme("x.com/?u=https://a.b"))
	assert.True(t, HasScheme("HTTPS://x.com"))
}

func TestValidateURLNoLimit(t *testing.T) {
	assert.NoError(t, ValidateURL("https://x.com/"+strings.Repeat("a", 5000), 0))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeFilename("a/b\\c"))
	assert.Equal(t, "clip", SanitizeFilename("  clip\n"))
	assert.Equal(t, "name", SanitizeFilename("..name.."))
}

func TestTruncateFilename(t *testing.T) {
	assert.Equal(t, "short.mp4", TruncateFilename("short.mp4", 20))
	assert.Equal(t, "abcde.mp4", TruncateFilename("abcdefghij.mp4", 9))
	assert.Equal(t, "日本語.mp4", TruncateFilename("日本語日本語.mp4", 7))
	assert.Equal(t, "abcd", TruncateFilename("abcdefgh", 4))
}

func TestMediaFilename(t *testing.T) {
	assert.Equal(t, "tiktok_video.mp4", MediaFilename("tiktok_video", "mp4", 100))
	assert.Equal(t, "video.mp4", MediaFilename("...", "mp4", 100))
}
