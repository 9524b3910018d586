package httpclient

import (
	"math/rand"
	"time"
)

// RetryPolicy controls how many times a call is attempted and how long to
// wait between attempts. It is a plain value so tests can inject a
// zero-wait policy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64 // 0..1 fraction of the computed delay
}

// DefaultRetryPolicy: 3 attempts, 2s base, x2, capped at 10s, no jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
		Multiplier:  2,
	}
}

// Backoff returns the delay before the next attempt. attempt is the number
// of the attempt that just failed, starting at 1.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 30 {
		attempt = 30
	}

	delay := float64(p.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= p.Multiplier
	}

	d := time.Duration(delay)
	if d < 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}

	jitter := p.Jitter
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	if jitter > 0 {
		extra := time.Duration(float64(d) * jitter * rand.Float64())
		if d+extra > p.MaxDelay {
			d = p.MaxDelay
		} else {
			d += extra
		}
	}

	return d
}
