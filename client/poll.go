package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/smnsjas/go-wps/job"
	"github.com/smnsjas/go-wps/model"
)

// ErrJobFailed is returned by Await when a job reaches Failed.
var ErrJobFailed = errors.New("wps: job failed")

// PollPolicy configures Await.
type PollPolicy struct {
	// InitialDelay is the wait before the first poll when the server gave
	// no NextPoll hint.
	InitialDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration

	// Multiplier grows the delay between polls (e.g. 2.0 doubles it).
	Multiplier float64

	// MinInterval is the shortest time between two polls, whatever the
	// server suggests.
	MinInterval time.Duration
}

// DefaultPollPolicy returns a policy that starts at one second, doubles
// up to 30 seconds and never polls more than twice a second.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		MinInterval:  500 * time.Millisecond,
	}
}

// pollBackoff computes exponential backoff with cap.
func pollBackoff(attempt int, policy PollPolicy) time.Duration {
	delay := policy.InitialDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if attempt <= 1 {
		return delay
	}

	multiplier := policy.Multiplier
	if multiplier < 1.0 {
		multiplier = 2.0
	}

	maxDelay := policy.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	// Use float64 for calculation to avoid overflow before capping
	backoff := float64(delay) * math.Pow(multiplier, float64(attempt-1))
	if backoff > float64(maxDelay) || backoff > float64(math.MaxInt64) {
		return maxDelay
	}
	return time.Duration(backoff)
}

// nextDelay honors a NextPoll hint in the future and falls back to
// backoff otherwise.
func nextDelay(j *job.Job, attempt int, policy PollPolicy, now time.Time) time.Duration {
	if hint := j.NextPoll(); !hint.IsZero() && hint.After(now) {
		return hint.Sub(now)
	}
	return pollBackoff(attempt, policy)
}

// Await polls j until it completes. On Succeeded it fetches and attaches
// the result; on Failed it returns an error wrapping ErrJobFailed. Paused
// and unknown states keep polling. Any round-trip error ends polling and
// is returned as is.
func (s *Service) Await(ctx context.Context, j *job.Job, policy PollPolicy) (*model.Result, error) {
	minInterval := policy.MinInterval
	if minInterval <= 0 {
		minInterval = time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(minInterval), 1)

	for attempt := 1; ; attempt++ {
		switch j.Status() {
		case model.StatusSucceeded:
			return s.FetchResult(ctx, j)
		case model.StatusFailed:
			return nil, fmt.Errorf("%w: %s", ErrJobFailed, j.ID())
		}

		delay := nextDelay(j, attempt, policy, time.Now())
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := s.Refresh(ctx, j); err != nil {
			return nil, err
		}
	}
}
