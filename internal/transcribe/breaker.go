package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	apperrors "codeberg.org/snonux/voicelab/internal/errors"
)

// BreakerProvider stops calling a failing provider for a cooldown period.
// Failures caused by the caller (bad audio, cancelled requests) do not
// count against the provider.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next in a circuit breaker that opens after
// maxFailures consecutive failures and probes again after cooldown.
func NewBreakerProvider(next Provider, maxFailures uint32, cooldown time.Duration) *BreakerProvider {
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("transcription circuit breaker changed state",
				"provider", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isCallerError(err)
		},
	}
	return &BreakerProvider{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Transcribe forwards to the wrapped provider unless the breaker is open
func (b *BreakerProvider) Transcribe(ctx context.Context, audioFile string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Transcribe(ctx, audioFile)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%s: %w: %v", b.next.Name(), apperrors.ErrModelUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Name returns the wrapped provider name
func (b *BreakerProvider) Name() string {
	return b.next.Name()
}

// IsAvailable reports the wrapped provider's availability, or an error
// while the breaker is open
func (b *BreakerProvider) IsAvailable() error {
	if b.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: circuit breaker open", b.next.Name())
	}
	return b.next.IsAvailable()
}

// State returns the breaker state name: "closed", "half-open" or "open"
func (b *BreakerProvider) State() string {
	return b.cb.State().String()
}

func isCallerError(err error) bool {
	return errors.Is(err, apperrors.ErrCorruptedFile) ||
		errors.Is(err, apperrors.ErrUnsupportedFormat) ||
		errors.Is(err, apperrors.ErrNoAudio) ||
		errors.Is(err, context.Canceled)
}
