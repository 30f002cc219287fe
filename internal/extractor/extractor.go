// Package extractor wraps the yt-dlp command line tool. Arguments are
// always passed as an argument vector, never through a shell.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"socialdl/internal/model"
	"socialdl/pkg/logger"

	"go.uber.org/zap"
)

const (
	maxStderr = 64 * 1024
	// waitDelay bounds how long Wait blocks on pipes held open by
	// children (ffmpeg) after yt-dlp itself was killed.
	waitDelay = time.Second
)

// Info mirrors the parts of yt-dlp's -J output that we use
type Info struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Uploader       string   `json:"uploader"`
	Channel        string   `json:"channel"`
	Thumbnail      string   `json:"thumbnail"`
	Duration       float64  `json:"duration"`
	DurationString string   `json:"duration_string"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	Height         int      `json:"height"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Formats        []Format `json:"formats"`
	Entries        []Info   `json:"entries"`
}

// Format is one entry of yt-dlp's format list
type Format struct {
	FormatID       string  `json:"format_id"`
	FormatNote     string  `json:"format_note"`
	Ext            string  `json:"ext"`
	URL            string  `json:"url"`
	Protocol       string  `json:"protocol"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	TBR            float64 `json:"tbr"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// Client runs yt-dlp
type Client struct {
	cfg model.ExtractorConfig
}

// New creates a new extractor client
func New(cfg model.ExtractorConfig) *Client {
	return &Client{cfg: cfg}
}

// Timeout is the configured per-invocation timeout
func (c *Client) Timeout() time.Duration {
	return c.cfg.Timeout
}

// DumpArgs builds the argument vector for a metadata dump
func (c *Client) DumpArgs(rawURL string, platform model.Platform) []string {
	args := c.baseArgs(platform)
	return append(args, "-J", "--", rawURL)
}

// StreamArgs builds the argument vector that writes media bytes to stdout
func (c *Client) StreamArgs(rawURL string, platform model.Platform) []string {
	args := c.baseArgs(platform)
	format := c.cfg.StreamFormat
	if format == "" {
		format = "best[ext=mp4]/best"
	}
	return append(args, "-f", format, "-o", "-", "--", rawURL)
}

func (c *Client) baseArgs(platform model.Platform) []string {
	args := []string{"--no-playlist", "--no-warnings", "--no-progress"}
	if cookies := c.cookiesFile(); cookies != "" {
		args = append(args, "--cookies", cookies)
	}
	if platform == model.PlatformYouTube && c.cfg.YouTubeClient != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+c.cfg.YouTubeClient)
	}
	return args
}

// cookiesFile returns the cookie file path when it is configured and
// readable. A missing file downgrades to a cookie-less invocation.
func (c *Client) cookiesFile() string {
	path := c.cfg.CookiesFile
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		logger.Logger.Debug("Cookie file unavailable, continuing without it",
			zap.String("path", path), zap.Error(err))
		return ""
	}
	return path
}

// Dump runs yt-dlp -J and decodes its output
func (c *Client) Dump(ctx context.Context, rawURL string, platform model.Platform) (*Info, error) {
	cmd := exec.CommandContext(ctx, c.path(), c.DumpArgs(rawURL, platform)...)
	cmd.WaitDelay = waitDelay
	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stderr = stderr

	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
		}
		return nil, fmt.Errorf("yt-dlp failed: %s: %w", stderr.lastLine(), err)
	}

	var info Info
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp output: %w", err)
	}
	return &info, nil
}

func (c *Client) path() string {
	if c.cfg.Path == "" {
		return "yt-dlp"
	}
	return c.cfg.Path
}

// limitedBuffer keeps at most limit bytes of a process' stderr
type limitedBuffer struct {
	buf   []byte
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - len(b.buf); room > 0 {
		if len(p) > room {
			b.buf = append(b.buf, p[:room]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	return len(p), nil
}

// lastLine returns the last non-empty stderr line, which is where yt-dlp
// prints its ERROR summary
func (b *limitedBuffer) lastLine() string {
	lines := strings.Split(strings.TrimSpace(string(b.buf)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no error output"
}

// exitCode extracts the process exit status, or -1
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
