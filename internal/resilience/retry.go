package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"syscall"
	"time"

	"github.com/dyike/MoexGo/internal/monitor"
)

// RetryConfig configures the retry wrapper. MaxRetries is the total number
// of attempts; Delay is the fixed wait between attempts (no backoff).
type RetryConfig struct {
	MaxRetries int
	Delay      time.Duration
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		Delay:      1 * time.Second,
	}
}

// ErrRetryExhausted matches any RetryError via errors.Is.
var ErrRetryExhausted = errors.New("retries exhausted")

// RetryError reports a transient call that kept failing through every
// attempt. It wraps the last cause.
type RetryError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%s: call failed after %d attempts: %v", e.Op, e.Attempts, e.Last)
}

func (e *RetryError) Unwrap() error { return e.Last }

func (e *RetryError) Is(target error) bool { return target == ErrRetryExhausted }

// TransientError marks a failure as retryable. HTTP clients wrap 5xx/429
// responses this way; plain transport errors are recognized without it.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so the retry wrapper treats it as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err belongs to the retryable failure class:
// explicit TransientError marks and network/connection-level errors.
// Everything else is treated as fatal and propagates immediately.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	// Cancellation is a caller decision, never worth retrying. Deadline
	// overruns stay retryable below: they satisfy net.Error like any
	// other timeout.
	if errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// WithRetry invokes fn up to cfg.MaxRetries times, sleeping cfg.Delay
// between attempts. Transient failures are retried; any other failure is
// returned as-is after the first attempt. Exhaustion yields a RetryError
// wrapping the last cause.
func WithRetry(cfg *RetryConfig, op string, fn func() error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			log.Printf("[Retry] %s: unexpected error, not retrying: %v", op, err)
			return err
		}
		lastErr = err
		if attempt < attempts {
			log.Printf("[Retry] %s: attempt %d failed: %v, retrying in %s", op, attempt, err, cfg.Delay)
			time.Sleep(cfg.Delay)
		}
	}

	log.Printf("[Retry] %s: failed after %d attempts: %v", op, attempts, lastErr)
	return &RetryError{Op: op, Attempts: attempts, Last: lastErr}
}

// Instrument wraps fn so its duration and outcome are recorded on m under
// op. The returned func reports fn's error unchanged.
func Instrument(m *monitor.Monitor, op string, fn func() error) func() error {
	if m == nil {
		return fn
	}
	return func() error {
		return m.Track(op, fn)
	}
}

// Call composes the standard collaborator middleware: retry wrapping
// monitoring wrapping the raw call. Every attempt is recorded separately.
func Call(cfg *RetryConfig, m *monitor.Monitor, op string, fn func() error) error {
	return WithRetry(cfg, op, Instrument(m, op, fn))
}
