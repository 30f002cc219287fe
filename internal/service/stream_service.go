package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"socialdl/internal/extractor"
	"socialdl/internal/metrics"
	"socialdl/internal/model"
	"socialdl/pkg/logger"

	"go.uber.org/zap"
)

// StreamService pipes yt-dlp output straight to the caller
type StreamService struct {
	extractor *extractor.Client
}

// NewStreamService creates a new stream service
func NewStreamService(client *extractor.Client) *StreamService {
	return &StreamService{extractor: client}
}

// MediaStream is a started direct download. Reads relay media bytes;
// Close reaps the process and records the outcome.
type MediaStream struct {
	stream   *extractor.Stream
	platform model.Platform
	bytes    atomic.Int64
	closed   atomic.Bool
}

// Open starts streaming rawURL. It returns once the first media byte is
// available, or with an error if yt-dlp exits before producing any.
// Cancelling ctx kills the process.
func (s *StreamService) Open(ctx context.Context, rawURL string, platform model.Platform) (*MediaStream, error) {
	stream, err := s.extractor.Stream(ctx, rawURL, platform)
	if err != nil {
		outcome := metrics.OutcomeFailure
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeAborted
		}
		metrics.RecordDirectStream(string(platform), outcome, 0)
		logger.Logger.Warn("Direct stream could not start",
			zap.String("platform", string(platform)),
			zap.Error(err))
		return nil, fmt.Errorf("start stream: %w", err)
	}

	logger.Logger.Info("Direct stream started", zap.String("platform", string(platform)))
	return &MediaStream{stream: stream, platform: platform}, nil
}

func (m *MediaStream) Read(p []byte) (int, error) {
	n, err := m.stream.Read(p)
	m.bytes.Add(int64(n))
	return n, err
}

// Close ends the stream. Closing before EOF kills yt-dlp.
func (m *MediaStream) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := m.stream.Close()
	relayed := m.bytes.Load()
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeAborted
		logger.Logger.Warn("Direct stream ended early",
			zap.String("platform", string(m.platform)),
			zap.Int64("bytes", relayed),
			zap.Error(err))
	} else {
		logger.Logger.Info("Direct stream finished",
			zap.String("platform", string(m.platform)),
			zap.Int64("bytes", relayed))
	}
	metrics.RecordDirectStream(string(m.platform), outcome, relayed)
	return err
}

// Bytes is the number of media bytes relayed so far
func (m *MediaStream) Bytes() int64 {
	return m.bytes.Load()
}
