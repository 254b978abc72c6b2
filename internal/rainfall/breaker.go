package rainfall

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

// Breaker wraps a source with a circuit breaker. After failures consecutive
// errors the source is skipped (returning gobreaker.ErrOpenState) until
// cooldown elapses, when one probe request is let through.
type Breaker struct {
	src domain.RainfallSource
	cb  *gobreaker.CircuitBreaker[domain.RainfallResult]
}

// NewBreaker wraps src. A zero failures threshold returns src unwrapped.
func NewBreaker(src domain.RainfallSource, failures uint32, cooldown time.Duration, logger *slog.Logger) domain.RainfallSource {
	if failures == 0 {
		return src
	}
	cb := gobreaker.NewCircuitBreaker[domain.RainfallResult](gobreaker.Settings{
		Name:        src.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// The caller giving up says nothing about the provider.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("rainfall source breaker state changed", "source", name, "from", from.String(), "to", to.String())
		},
	})
	return &Breaker{src: src, cb: cb}
}

func (b *Breaker) Name() string { return b.src.Name() }

func (b *Breaker) Rainfall(ctx context.Context, pt domain.GeoPoint) (domain.RainfallResult, error) {
	return b.cb.Execute(func() (domain.RainfallResult, error) {
		return b.src.Rainfall(ctx, pt)
	})
}
