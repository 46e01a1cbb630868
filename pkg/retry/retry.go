// Package retry runs a fallible call under a bounded exponential backoff policy.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Timer is the wait used between attempts. Nil means a real timer.
type Timer = backoff.Timer

// Policy describes how often and how patiently a call is retried.
type Policy struct {
	MaxAttempts int
	// InitialBackoff is the wait after the first failure; it doubles after each further one.
	InitialBackoff time.Duration
	// Timer replaces the real clock, mainly in tests.
	Timer Timer
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// ExhaustedError is returned once every attempt has failed. Err is the last failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0
	exp.Reset()

	var b backoff.BackOff = &backoff.StopBackOff{}
	if p.MaxAttempts > 1 {
		b = backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

// Do calls fn until it succeeds or the policy runs out. There is no wait after the
// final attempt. A cancelled context stops retrying and returns the context error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempt := 0
	op := func() error {
		attempt++
		return fn(ctx)
	}
	notify := func(err error, wait time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
	}

	err := backoff.RetryNotifyWithTimer(op, p.backOff(ctx), notify, p.Timer)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	return &ExhaustedError{Attempts: attempt, Err: err}
}

// DoValue is Do for calls that produce a value.
func DoValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var v T
	err := Do(ctx, p, func(ctx context.Context) error {
		var err error
		v, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
