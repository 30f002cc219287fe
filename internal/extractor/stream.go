package extractor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"socialdl/internal/model"
	"socialdl/pkg/logger"

	"go.uber.org/zap"
)

// ErrNoOutput means yt-dlp exited before writing any media bytes
var ErrNoOutput = errors.New("yt-dlp produced no output")

// Stream relays a running yt-dlp process' stdout. The first byte has
// already arrived when Stream returns it, so callers may commit headers.
type Stream struct {
	cmd    *exec.Cmd
	out    *bufio.Reader
	stderr *limitedBuffer

	mu     sync.Mutex
	eof    bool
	closed bool
}

// Stream starts yt-dlp in stdout mode and waits for the first byte.
// Cancelling ctx kills the process.
func (c *Client) Stream(ctx context.Context, rawURL string, platform model.Platform) (*Stream, error) {
	cmd := exec.CommandContext(ctx, c.path(), c.StreamArgs(rawURL, platform)...)
	cmd.WaitDelay = waitDelay
	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start yt-dlp: %w", err)
	}

	out := bufio.NewReaderSize(stdout, 64*1024)
	if _, err := out.Peek(1); err != nil {
		waitErr := cmd.Wait()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
		}
		if waitErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoOutput, stderr.lastLine(), waitErr)
		}
		return nil, ErrNoOutput
	}

	return &Stream{cmd: cmd, out: out, stderr: stderr}, nil
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.out.Read(p)
	if err == io.EOF {
		s.mu.Lock()
		s.eof = true
		s.mu.Unlock()
	}
	return n, err
}

// Close reaps the process. A stream closed before EOF kills yt-dlp first.
// The returned error reports a non-zero exit.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	eof := s.eof
	s.mu.Unlock()

	if !eof && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}

	if err := s.cmd.Wait(); err != nil {
		logger.Logger.Debug("yt-dlp stream exited",
			zap.Int("exit_code", exitCode(err)),
			zap.String("stderr", s.stderr.lastLine()))
		if !eof {
			return fmt.Errorf("yt-dlp stream closed early: %w", err)
		}
		return fmt.Errorf("yt-dlp failed: %s: %w", s.stderr.lastLine(), err)
	}
	return nil
}
