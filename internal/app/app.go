// Package app assembles the assessment core from configuration. Both the
// service and the CLI build on it.
package app

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/adapter/nasapower"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/assessment"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/config"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/groundwater"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/observability"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/rainfall"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/reference"
)

// Core is the wired assessment core.
type Core struct {
	Data        *reference.Dataset
	Rainfall    *rainfall.Chain
	Groundwater *groundwater.Resolver
	NASA        *nasapower.Client
	Service     *assessment.Service
}

// Build loads reference data and wires the rainfall chain, groundwater
// resolver, and Service.
func Build(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, opts ...assessment.Option) (*Core, error) {
	data, err := reference.Load(reference.Options{
		SiteDefaultsPath:   cfg.SiteDefaultsPath,
		CostTablePath:      cfg.CostTablePath,
		AquifersPath:       cfg.AquifersPath,
		GroundwaterCSV:     cfg.GroundwaterCSV,
		FallbackRainfallMM: cfg.FallbackRainfallMM,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	metrics.ReferenceSamples.Set(float64(len(data.Samples)))

	clock := clockwork.NewRealClock()
	primary := openmeteo.NewClient(cfg.OpenMeteoURL, cfg.UserAgent, cfg.RainfallTimeout, clock, logger)
	secondary := nasapower.NewClient(cfg.NASAPowerURL, cfg.UserAgent, cfg.RainfallTimeout, clock, logger)

	chain := rainfall.NewChain(
		rainfall.Static{AnnualMM: data.Defaults.RainfallMMYear},
		cfg.RainfallTimeout,
		logger,
		metrics,
		rainfall.NewBreaker(primary, cfg.BreakerFailures, cfg.BreakerCooldown, logger),
		rainfall.NewBreaker(secondary, cfg.BreakerFailures, cfg.BreakerCooldown, logger),
	)
	resolver := groundwater.NewResolver(data, logger, metrics)
	svc := assessment.NewService(chain, resolver, data, logger, metrics, opts...)

	return &Core{
		Data:        data,
		Rainfall:    chain,
		Groundwater: resolver,
		NASA:        secondary,
		Service:     svc,
	}, nil
}
