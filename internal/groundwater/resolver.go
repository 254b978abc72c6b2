// Package groundwater resolves depth to water table and aquifer for a point
// from the reference samples and aquifer polygons.
package groundwater

import (
	"log/slog"
	"strings"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/observability"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/reference"
)

// alluvialMarker classifies a sample's aquifer name as unconfined.
const alluvialMarker = "Alluvium"

// Lookup methods recorded in metrics.
const (
	methodNearest = "nearest"
	methodDefault = "default"
)

// Resolver answers groundwater queries against an immutable Dataset.
type Resolver struct {
	data    *reference.Dataset
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewResolver creates a Resolver over data.
func NewResolver(data *reference.Dataset, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{data: data, logger: logger, metrics: metrics}
}

// Resolve returns the depth of the nearest sample by great-circle distance,
// with ties going to the first listed sample. The aquifer is guessed from
// the sample's name; a sample without a name falls back to the polygon
// lookup. With no samples loaded the site defaults are returned.
func (r *Resolver) Resolve(pt domain.GeoPoint) domain.Groundwater {
	sample, distKm, ok := Nearest(r.data.Samples, pt)
	if !ok {
		r.metrics.GroundwaterLookups.WithLabelValues(methodDefault).Inc()
		aq := r.data.Defaults.Aquifer
		if aq.Name == "" {
			aq = r.Aquifer(pt)
		}
		return domain.Groundwater{DepthM: r.data.Defaults.GroundwaterDepthM, Aquifer: aq}
	}

	r.metrics.GroundwaterLookups.WithLabelValues(methodNearest).Inc()
	r.logger.Debug("nearest groundwater sample",
		"lat", pt.Lat, "lon", pt.Lon,
		"sample_lat", sample.Lat, "sample_lon", sample.Lon,
		"distance_km", distKm, "depth_m", sample.DepthM,
	)

	aq := ClassifySample(sample.AquiferName)
	if sample.AquiferName == "" {
		aq = r.Aquifer(pt)
	}
	return domain.Groundwater{DepthM: sample.DepthM, Aquifer: aq}
}

// Aquifer returns the first listed aquifer polygon containing pt, or the
// site default aquifer.
func (r *Resolver) Aquifer(pt domain.GeoPoint) domain.Aquifer {
	if aq, ok := r.data.Aquifers.Lookup(pt); ok {
		r.metrics.AquiferLookups.WithLabelValues("match").Inc()
		return aq
	}
	r.metrics.AquiferLookups.WithLabelValues("none").Inc()
	return r.data.Defaults.Aquifer
}

// Nearest scans samples for the one closest to pt. Ties keep the earlier
// sample. ok is false when samples is empty.
func Nearest(samples []domain.GroundwaterSample, pt domain.GeoPoint) (best domain.GroundwaterSample, distKm float64, ok bool) {
	for i, s := range samples {
		d := domain.HaversineKm(pt, domain.GeoPoint{Lat: s.Lat, Lon: s.Lon})
		if i == 0 || d < distKm {
			best, distKm = s, d
		}
	}
	return best, distKm, len(samples) > 0
}

// ClassifySample guesses the aquifer type from a sample's aquifer name.
func ClassifySample(name string) domain.Aquifer {
	aqType := domain.AquiferUnknown
	if strings.Contains(name, alluvialMarker) {
		aqType = domain.AquiferUnconfined
	}
	return domain.Aquifer{Name: name, Type: aqType}
}
