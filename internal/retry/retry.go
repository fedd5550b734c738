// Package retry implements the small bounded-attempt policy shared by OCR
// worker initialization and per-page recognition.
package retry

import (
	"context"
	"time"
)

// Policy describes a bounded retry loop with a fixed or doubling delay.
type Policy struct {
	MaxAttempts int           // total attempts, including the first
	Delay       time.Duration // wait before each retry
	Doubling    bool          // double the delay after each failed attempt
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. It returns
// nil on the first success, the last error once attempts are exhausted, and
// ctx.Err() if the context is cancelled while waiting.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			if p.Doubling {
				delay *= 2
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
