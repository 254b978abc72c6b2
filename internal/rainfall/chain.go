// Package rainfall resolves annual and monthly rainfall for a point by trying
// an ordered list of sources and ending in a static figure that cannot fail.
package rainfall

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/observability"
)

// Attempt outcomes recorded per source.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeInvalid = "invalid"
)

// Chain tries each source once, in order, and returns the first valid result.
// It holds no state between calls.
type Chain struct {
	sources  []domain.RainfallSource
	fallback Static
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewChain builds a chain over sources, ending in fallback. timeout bounds
// each source attempt; zero means the caller's context is the only bound.
func NewChain(fallback Static, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, sources ...domain.RainfallSource) *Chain {
	return &Chain{
		sources:  sources,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns rainfall for pt. It never fails: a source error or an
// out-of-range result moves on to the next source, and the static fallback
// ends the chain.
func (c *Chain) Resolve(ctx context.Context, pt domain.GeoPoint) domain.RainfallResult {
	for _, src := range c.sources {
		res, err := c.attempt(ctx, src, pt)
		if err != nil {
			continue
		}
		return res
	}

	c.logger.Warn("using fallback rainfall data", "lat", pt.Lat, "lon", pt.Lon, "annual_mm", c.fallback.AnnualMM)
	c.metrics.RainfallAttempts.WithLabelValues(c.fallback.Name(), outcomeSuccess).Inc()
	return c.fallback.Result()
}

// Stage runs the named source alone and returns its error unchanged.
func (c *Chain) Stage(ctx context.Context, name string, pt domain.GeoPoint) (domain.RainfallResult, error) {
	if name == c.fallback.Name() {
		return c.fallback.Result(), nil
	}
	for _, src := range c.sources {
		if src.Name() == name {
			return c.attempt(ctx, src, pt)
		}
	}
	return domain.RainfallResult{}, &UnknownSourceError{Name: name}
}

// SourceNames lists the chain's stages in the order they are tried.
func (c *Chain) SourceNames() []string {
	names := make([]string, 0, len(c.sources)+1)
	for _, src := range c.sources {
		names = append(names, src.Name())
	}
	return append(names, c.fallback.Name())
}

func (c *Chain) attempt(ctx context.Context, src domain.RainfallSource, pt domain.GeoPoint) (domain.RainfallResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	name := src.Name()
	start := time.Now()
	res, err := src.Rainfall(ctx, pt)
	c.metrics.RainfallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("rainfall source failed", "source", name, "lat", pt.Lat, "lon", pt.Lon, "error", err)
		c.metrics.RainfallAttempts.WithLabelValues(name, outcomeError).Inc()
		return domain.RainfallResult{}, err
	}
	if err := domain.ValidateRainfallResult(res); err != nil {
		c.logger.Warn("rainfall source returned out-of-range data", "source", name, "lat", pt.Lat, "lon", pt.Lon, "error", err)
		c.metrics.RainfallAttempts.WithLabelValues(name, outcomeInvalid).Inc()
		return domain.RainfallResult{}, err
	}

	c.logger.Info("rainfall resolved", "source", name, "lat", pt.Lat, "lon", pt.Lon, "annual_mm", res.AnnualMM, "data_period", res.DataPeriod)
	c.metrics.RainfallAttempts.WithLabelValues(name, outcomeSuccess).Inc()
	res.Source = name
	return res, nil
}

// UnknownSourceError is returned by Stage for a name not in the chain.
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return "unknown rainfall source: " + e.Name
}

// Static spreads a fixed annual figure evenly over twelve months.
type Static struct {
	AnnualMM float64
}

// Name labels fallback results. Static is not a RainfallSource: it cannot
// fail, so the chain consults it directly after the last source.
func (s Static) Name() string { return "static" }

// Result returns the fallback rainfall. Each month is annual/12, rounded.
func (s Static) Result() domain.RainfallResult {
	res := domain.RainfallResult{
		AnnualMM:   s.AnnualMM,
		DataPeriod: "static",
		YearsCount: 1,
		Source:     s.Name(),
	}
	month := math.Round(s.AnnualMM / 12)
	for i := range res.MonthlyMM {
		res.MonthlyMM[i] = month
	}
	return res
}
