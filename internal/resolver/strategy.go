// Package resolver runs ordered chains of resolution strategies and
// returns the first result that actually points at media.
package resolver

import (
	"context"
	"time"

	"socialdl/internal/model"
)

// Strategy is one self-contained way of turning a post URL into media.
// Implementations must not share mutable state between calls.
type Strategy interface {
	// Name identifies the strategy in logs, metrics and failures.
	Name() string

	// Resolve attempts a resolution. It must honour ctx cancellation.
	Resolve(ctx context.Context, rawURL string) (*model.ResolutionResult, error)
}

// TimeoutHinter is implemented by strategies that need an attempt
// timeout other than the engine default.
type TimeoutHinter interface {
	Timeout() time.Duration
}

// Chains maps each platform to its ordered strategy list
type Chains map[model.Platform][]Strategy

type funcStrategy struct {
	name string
	fn   func(ctx context.Context, rawURL string) (*model.ResolutionResult, error)
}

// Func adapts fn into a Strategy named name
func Func(name string, fn func(ctx context.Context, rawURL string) (*model.ResolutionResult, error)) Strategy {
	return &funcStrategy{name: name, fn: fn}
}

func (s *funcStrategy) Name() string { return s.name }

func (s *funcStrategy) Resolve(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
	return s.fn(ctx, rawURL)
}
