// Package assessment is the caller-facing entry point: it validates inputs,
// resolves rainfall and groundwater for a point, and runs the assessment
// engine over them.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/observability"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/reference"
)

// ErrAssessmentFailed reports an unexpected failure inside the engine. It
// carries no detail meant for callers.
var ErrAssessmentFailed = errors.New("assessment failed")

// RainfallResolver returns rainfall for a point and never fails.
type RainfallResolver interface {
	Resolve(ctx context.Context, pt domain.GeoPoint) domain.RainfallResult
}

// GroundwaterResolver returns depth to water and aquifer for a point.
type GroundwaterResolver interface {
	Resolve(pt domain.GeoPoint) domain.Groundwater
}

// Service wires the resolvers to the assessment engine. It keeps no
// per-request state; every call re-fetches rainfall and re-resolves
// groundwater.
type Service struct {
	rainfall    RainfallResolver
	groundwater GroundwaterResolver
	data        *reference.Dataset
	recorder    domain.AssessmentRecorder
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithRecorder hands every successful assessment to rec.
func WithRecorder(rec domain.AssessmentRecorder) Option {
	return func(s *Service) { s.recorder = rec }
}

// WithClock overrides the clock used to timestamp records.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// NewService creates a Service.
func NewService(rain RainfallResolver, gw GroundwaterResolver, data *reference.Dataset, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		rainfall:    rain,
		groundwater: gw,
		data:        data,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveContext gathers rainfall, groundwater, and site defaults for a point
// and annotates the result with data-quality warnings.
func (s *Service) ResolveContext(ctx context.Context, lat, lon float64) (domain.ResolvedContext, error) {
	pt, err := domain.ValidateLocation(lat, lon)
	if err != nil {
		return domain.ResolvedContext{}, err
	}

	rain := s.rainfall.Resolve(ctx, pt)
	gw := s.groundwater.Resolve(pt)

	rc := domain.AnnotateQuality(domain.ResolvedContext{
		Location:           pt,
		Rainfall:           rain,
		GroundwaterDepthM:  gw.DepthM,
		Aquifer:            gw.Aquifer,
		RunoffCoeffDefault: s.data.Defaults.RunoffCoeffDefault,
		Admin:              s.data.Defaults.Admin,
	})
	for _, w := range rc.Warnings {
		s.metrics.QualityWarnings.WithLabelValues(w).Inc()
	}
	if len(rc.Warnings) > 0 {
		s.logger.Info("data quality warnings", "lat", lat, "lon", lon, "warnings", rc.Warnings)
	}
	return rc, nil
}

// GetRainfall runs the rainfall chain for a point.
func (s *Service) GetRainfall(ctx context.Context, lat, lon float64) (domain.RainfallResult, error) {
	pt, err := domain.ValidateLocation(lat, lon)
	if err != nil {
		return domain.RainfallResult{}, err
	}
	return s.rainfall.Resolve(ctx, pt), nil
}

// GetGroundwater resolves depth to water and aquifer for a point.
func (s *Service) GetGroundwater(_ context.Context, lat, lon float64) (domain.Groundwater, error) {
	pt, err := domain.ValidateLocation(lat, lon)
	if err != nil {
		return domain.Groundwater{}, err
	}
	return s.groundwater.Resolve(pt), nil
}

// Assess validates req, resolves its location, and computes the verdict,
// structures, sizing, and cost. A rejected request returns a
// *domain.ValidationError listing every problem. Costs always use the site's
// administrative region.
func (s *Service) Assess(ctx context.Context, req domain.AssessmentRequest) (domain.AssessmentResult, error) {
	in, err := domain.ValidateAssessmentRequest(req)
	if err != nil {
		s.metrics.Assessments.WithLabelValues("invalid").Inc()
		return domain.AssessmentResult{}, err
	}

	rain := s.rainfall.Resolve(ctx, in.Location)
	gw := s.groundwater.Resolve(in.Location)

	result, err := s.compute(in, rain, gw.DepthM)
	if err != nil {
		s.metrics.Assessments.WithLabelValues("failed").Inc()
		s.logger.Error("assessment computation failed",
			"lat", in.Location.Lat, "lon", in.Location.Lon, "error", err)
		return domain.AssessmentResult{}, ErrAssessmentFailed
	}
	s.metrics.Assessments.WithLabelValues("success").Inc()

	if s.recorder != nil {
		s.recorder.Record(domain.AssessmentRecord{
			ID:         uuid.NewString(),
			AssessedAt: s.clock.Now().UTC(),
			Input:      in,
			Rainfall:   rain,
			DepthM:     gw.DepthM,
			Result:     result,
		})
	}
	return result, nil
}

// compute runs the engine, converting a panic into an error.
func (s *Service) compute(in domain.AssessmentInput, rain domain.RainfallResult, depthM float64) (result domain.AssessmentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return domain.Assess(in, rain, depthM, s.data.RegionCosts()), nil
}
