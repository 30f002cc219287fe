package resolver

import (
	"errors"
	"fmt"
	"strings"

	"socialdl/internal/model"
)

var (
	// ErrNoChain is returned when a platform has no strategies registered.
	ErrNoChain = errors.New("no strategies configured for platform")

	// ErrEmptyResult marks a strategy that returned neither formats nor a best URL.
	ErrEmptyResult = errors.New("result has no formats and no best url")
)

// Attempt records why one strategy in a chain failed
type Attempt struct {
	Strategy string
	Err      error
}

// Failure is returned when every strategy of a chain failed, or when the
// chain was cut short by its context.
type Failure struct {
	Platform model.Platform
	URL      string
	Attempts []Attempt
	// Cause is the context error that stopped the chain early, if any.
	Cause error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s resolution aborted after %d attempt(s): %v", f.Platform, len(f.Attempts), f.Cause)
	}
	if len(f.Attempts) == 0 {
		return fmt.Sprintf("%s resolution failed: %v", f.Platform, ErrNoChain)
	}
	return fmt.Sprintf("%s resolution failed: all %d strategies failed (%s)",
		f.Platform, len(f.Attempts), strings.Join(f.Strategies(), ", "))
}

// Unwrap exposes the context error that aborted the chain
func (f *Failure) Unwrap() error {
	if f.Cause != nil {
		return f.Cause
	}
	if len(f.Attempts) == 0 {
		return ErrNoChain
	}
	return nil
}

// Strategies lists the names of the strategies tried, in order
func (f *Failure) Strategies() []string {
	names := make([]string, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		names = append(names, a.Strategy)
	}
	return names
}

// Messages lists the per-strategy error messages, in order
func (f *Failure) Messages() []string {
	msgs := make([]string, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		msgs = append(msgs, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return msgs
}
