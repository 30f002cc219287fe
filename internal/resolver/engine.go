package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialdl/internal/metrics"
	"socialdl/internal/model"
	"socialdl/pkg/logger"

	"go.uber.org/zap"
)

const (
	defaultAttemptTimeout = 20 * time.Second
)

// Engine walks a platform's strategy chain strictly in order and returns
// the first valid result. Attempts never overlap.
type Engine struct {
	chains         Chains
	attemptTimeout time.Duration
	chainBudget    time.Duration
	log            *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithAttemptTimeout sets the timeout for strategies without their own hint
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.attemptTimeout = d
		}
	}
}

// WithChainBudget bounds the whole chain. Expiry aborts the in-flight
// attempt and ends the chain. Zero means no budget.
func WithChainBudget(d time.Duration) Option {
	return func(e *Engine) { e.chainBudget = d }
}

// WithLogger overrides the package logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine over chains
func NewEngine(chains Chains, opts ...Option) *Engine {
	e := &Engine{
		chains:         chains,
		attemptTimeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Chain returns the strategy names registered for platform, in order
func (e *Engine) Chain(platform model.Platform) []string {
	names := make([]string, 0, len(e.chains[platform]))
	for _, s := range e.chains[platform] {
		names = append(names, s.Name())
	}
	return names
}

// Resolve runs the chain for platform against rawURL. On exhaustion it
// returns a *Failure holding one Attempt per strategy tried, in order.
func (e *Engine) Resolve(ctx context.Context, rawURL string, platform model.Platform) (*model.ResolutionResult, error) {
	failure := &Failure{Platform: platform, URL: rawURL}
	chain := e.chains[platform]
	if len(chain) == 0 {
		metrics.RecordResolution(string(platform), metrics.OutcomeFailure)
		return nil, failure
	}

	if e.chainBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.chainBudget)
		defer cancel()
	}

	log := e.logger().With(zap.String("platform", string(platform)), zap.String("url", rawURL))

	for _, strategy := range chain {
		if err := ctx.Err(); err != nil {
			failure.Cause = err
			break
		}

		start := time.Now()
		result, err := e.attempt(ctx, strategy, rawURL)
		elapsed := time.Since(start)

		if err != nil {
			failure.Attempts = append(failure.Attempts, Attempt{Strategy: strategy.Name(), Err: err})
			outcome := metrics.OutcomeFailure
			if errors.Is(err, ErrEmptyResult) {
				outcome = metrics.OutcomeInvalid
			}
			if ctx.Err() != nil {
				outcome = metrics.OutcomeAborted
				failure.Cause = ctx.Err()
			}
			metrics.RecordStrategyAttempt(string(platform), strategy.Name(), outcome, elapsed.Seconds())
			log.Warn("Strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.Duration("duration", elapsed),
				zap.Error(err))
			if failure.Cause != nil {
				break
			}
			continue
		}

		metrics.RecordStrategyAttempt(string(platform), strategy.Name(), metrics.OutcomeSuccess, elapsed.Seconds())
		metrics.RecordResolution(string(platform), metrics.OutcomeSuccess)
		normalize(result, platform, strategy.Name())
		log.Info("Resolved",
			zap.String("strategy", strategy.Name()),
			zap.Int("formats", len(result.Formats)),
			zap.Duration("duration", elapsed))
		return result, nil
	}

	outcome := metrics.OutcomeFailure
	if failure.Cause != nil {
		outcome = metrics.OutcomeAborted
	}
	metrics.RecordResolution(string(platform), outcome)
	log.Error("Resolution failed",
		zap.Strings("attempts", failure.Messages()),
		zap.NamedError("cause", failure.Cause))
	return nil, failure
}

// attempt runs a single strategy under its own timeout
func (e *Engine) attempt(ctx context.Context, strategy Strategy, rawURL string) (result *model.ResolutionResult, err error) {
	timeout := e.attemptTimeout
	if hinter, ok := strategy.(TimeoutHinter); ok && hinter.Timeout() > 0 {
		timeout = hinter.Timeout()
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// A broken strategy must not take the chain down with it.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()

	result, err = strategy.Resolve(attemptCtx, rawURL)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out after %s: %w", timeout, err)
		}
		return nil, err
	}
	if !result.Valid() {
		return nil, ErrEmptyResult
	}
	return result, nil
}

func (e *Engine) logger() *zap.Logger {
	if e.log != nil {
		return e.log
	}
	return logger.Logger
}

// normalize stamps engine-owned fields. Strategy data is left alone apart
// from filling gaps the wire format needs.
func normalize(result *model.ResolutionResult, platform model.Platform, strategy string) {
	result.Success = true
	result.Platform = platform
	result.Strategy = strategy
	if strings.TrimSpace(result.Title) == "" {
		result.Title = platform.DefaultTitle()
	}
	if result.BestURL == "" && len(result.Formats) > 0 {
		result.BestURL = result.Formats[0].URL
	}
	if result.Formats == nil {
		result.Formats = []model.MediaFormat{}
	}
}
