package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialdl/internal/model"
	"socialdl/internal/platform"
	"socialdl/internal/resolver"
	"socialdl/pkg/logger"
	"socialdl/pkg/validator"

	"go.uber.org/zap"
)

var (
	// ErrURLRequired is returned for an empty or blank URL
	ErrURLRequired = errors.New("URL is required")
	// ErrUnsupportedPlatform is returned when no platform matches the URL
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// IsInputError reports whether err was caused by the caller's input
// rather than by resolution itself
func IsInputError(err error) bool {
	return errors.Is(err, ErrURLRequired) ||
		errors.Is(err, ErrUnsupportedPlatform) ||
		errors.Is(err, validator.ErrURLTooLong) ||
		errors.Is(err, validator.ErrInvalidURL)
}

// ResolveService classifies post URLs and runs the resolution engine
type ResolveService struct {
	engine       *resolver.Engine
	maxURLLength int
}

// NewResolveService creates a new resolve service
func NewResolveService(engine *resolver.Engine, maxURLLength int) *ResolveService {
	return &ResolveService{
		engine:       engine,
		maxURLLength: maxURLLength,
	}
}

// Check validates and classifies rawURL without resolving it
func (s *ResolveService) Check(rawURL string) (string, model.Platform, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", model.PlatformUnknown, ErrURLRequired
	}
	if err := validator.ValidateURL(rawURL, s.maxURLLength); err != nil {
		return rawURL, model.PlatformUnknown, err
	}

	p := platform.Classify(rawURL)
	if p == model.PlatformUnknown {
		return rawURL, p, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, hostForLog(rawURL))
	}
	return rawURL, p, nil
}

// Resolve turns a post URL into media links. Input problems are
// reported before any strategy runs.
func (s *ResolveService) Resolve(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
	rawURL, p, err := s.Check(rawURL)
	if err != nil {
		logger.Logger.Debug("Rejected resolve request", zap.Error(err))
		return nil, err
	}

	logger.Logger.Info("Resolving URL",
		zap.String("platform", string(p)),
		zap.Strings("chain", s.engine.Chain(p)))

	return s.engine.Resolve(ctx, rawURL, p)
}

// Detect answers /api/info: classification only, no network access
func (s *ResolveService) Detect(rawURL string) model.URLInfo {
	rawURL = strings.TrimSpace(rawURL)
	p := platform.Classify(rawURL)
	return model.URLInfo{
		Success:     true,
		URL:         rawURL,
		Platform:    p,
		IsSupported: p != model.PlatformUnknown,
	}
}

// Platforms lists the supported platforms in classification order
func (s *ResolveService) Platforms() []model.PlatformInfo {
	platforms := model.SupportedPlatforms()
	out := make([]model.PlatformInfo, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, model.PlatformInfo{ID: p, Name: p.DisplayName()})
	}
	return out
}

// hostForLog keeps error messages short; full URLs stay out of them
func hostForLog(rawURL string) string {
	host := validator.WithScheme(rawURL)
	host = host[strings.Index(host, "://")+3:]
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return host
}
