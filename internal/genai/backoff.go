package genai

import (
	"context"
	"math"
	"time"
)

type (
	// RetryConfig bounds the retries of one logical call
	RetryConfig struct {
		MaxRetries  int
		InitBackoff time.Duration
		MaxBackoff  time.Duration
		BackoffType string
	}

	// SleepFunc waits for d or until ctx is done
	SleepFunc func(ctx context.Context, d time.Duration) error

	backoffCalculator func(base time.Duration, retry int) time.Duration
)

const (
	BackoffTypeFixed       = "fixed"
	BackoffTypeLinear      = "linear"
	BackoffTypeExponential = "exponential"

	DefaultMaxRetries  = 3
	DefaultInitBackoff = time.Second
	DefaultMaxBackoff  = 30 * time.Second
)

var backoffCalculators = map[string]backoffCalculator{
	BackoffTypeFixed: func(base time.Duration, _ int) time.Duration {
		return base
	},
	BackoffTypeLinear: func(base time.Duration, retry int) time.Duration {
		return base * time.Duration(retry)
	},
	BackoffTypeExponential: func(base time.Duration, retry int) time.Duration {
		multiplier := math.Pow(2, float64(retry))
		return time.Duration(float64(base) * multiplier)
	},
}

// DefaultRetryConfig waits 2s, 4s and 8s between four attempts
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		InitBackoff: DefaultInitBackoff,
		MaxBackoff:  DefaultMaxBackoff,
		BackoffType: BackoffTypeExponential,
	}
}

// IsBackoffType reports whether name is a supported backoff strategy
func IsBackoffType(name string) bool {
	_, ok := backoffCalculators[name]
	return ok
}

// Delay returns the wait before retry number retry (1-based)
func (c RetryConfig) Delay(retry int) time.Duration {
	calculator, ok := backoffCalculators[c.BackoffType]
	if !ok {
		calculator = backoffCalculators[BackoffTypeExponential]
	}
	delay := calculator(c.InitBackoff, retry)
	if c.MaxBackoff > 0 {
		delay = min(delay, c.MaxBackoff)
	}
	return delay
}

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
