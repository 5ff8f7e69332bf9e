// Package retry holds the exponential backoff shared by coach LLM
// requests and outbox delivery, and the split between transient errors
// and errors that can never succeed.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// maxSteps bounds the backoff walk in Delay; the wait has long hit
// MaxWait by then.
const maxSteps = 64

// Policy is an exponential backoff schedule.
type Policy struct {
	// MaxAttempts bounds Do, first call included. Values below 1 mean 1.
	MaxAttempts int

	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64

	// Jitter randomizes each wait by ±Jitter of its value; 0.2 is ±20%.
	Jitter float64
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialWait,
		RandomizationFactor: p.Jitter,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxWait,
	}
	b.Reset()
	return b
}

// Delay returns the wait after the given number of consecutive failures
// (1 for the first).
func (p Policy) Delay(failures int) time.Duration {
	b := p.backOff()
	var d time.Duration
	for range min(max(failures, 1), maxSteps) {
		d = b.NextBackOff()
	}
	return d
}

// Permanent marks err as one that retrying cannot fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err, or anything it wraps, was marked
// with Permanent.
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}

// Option tunes Do.
type Option func(*hinted)

// WithWaitHint lets the caller replace the next wait for a given error,
// for example with a server's Retry-After. A zero hint keeps the
// schedule.
func WithWaitHint(hint func(error) time.Duration) Option {
	return func(h *hinted) { h.hint = hint }
}

// hinted is the policy backoff with a one-shot override.
type hinted struct {
	backoff.BackOff
	hint     func(error) time.Duration
	override time.Duration
}

func (h *hinted) NextBackOff() time.Duration {
	if d := h.override; d > 0 {
		h.override = 0
		return d
	}
	return h.BackOff.NextBackOff()
}

// Do calls op until it succeeds, returns a Permanent error, runs out of
// attempts or ctx ends. A Permanent error is returned unwrapped; a
// cancelled ctx returns its cause.
func Do[T any](ctx context.Context, p Policy, op func() (T, error), opts ...Option) (T, error) {
	b := &hinted{BackOff: p.backOff()}
	for _, o := range opts {
		o(b)
	}
	wrapped := func() (T, error) {
		v, err := op()
		if err != nil && b.hint != nil {
			b.override = b.hint(err)
		}
		return v, err
	}
	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(max(p.MaxAttempts, 1))),
		backoff.WithMaxElapsedTime(0),
	)
}
