// Package reference loads the static tables the resolvers consult: site
// defaults, the region cost table, aquifer polygons, and groundwater samples.
// A Dataset is built once at startup and never mutated, so it may be shared
// by concurrent requests without locking.
package reference

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

//go:embed data
var embedded embed.FS

const (
	siteDefaultsFile = "data/site_defaults.json"
	costTableFile    = "data/cost_table.json"
	aquifersFile     = "data/aquifers.geojson"
	samplesFile      = "data/groundwater_samples.csv"
)

// SiteDefaults are the fixed values used when a resolver has nothing better.
// Admin is also the region every assessment is costed against.
type SiteDefaults struct {
	Admin              domain.AdminRegion `json:"admin"`
	RainfallMMYear     float64            `json:"rainfall_mm_year"`
	GroundwaterDepthM  float64            `json:"groundwater_depth_m"`
	Aquifer            domain.Aquifer     `json:"aquifer"`
	RunoffCoeffDefault float64            `json:"runoff_coeff_default"`
}

func (d SiteDefaults) validate() error {
	var problems []string
	if d.Admin.Code == "" {
		problems = append(problems, "admin code is required")
	}
	for _, r := range []domain.FieldResult{
		domain.ValidateRainfall(d.RainfallMMYear),
		domain.ValidateGroundwaterDepth(d.GroundwaterDepthM),
		domain.ValidateAquiferType(d.Aquifer.Type),
	} {
		if !r.Valid {
			problems = append(problems, r.Error)
		}
	}
	if d.RunoffCoeffDefault <= 0 || d.RunoffCoeffDefault > 1 {
		problems = append(problems, "runoff coefficient must be in (0, 1]")
	}
	if len(problems) > 0 {
		return &domain.ValidationError{Problems: problems}
	}
	return nil
}

// Dataset is the immutable reference data shared by all requests.
type Dataset struct {
	Defaults SiteDefaults
	Costs    domain.CostTable
	Samples  []domain.GroundwaterSample
	Aquifers *AquiferIndex
}

// NewDataset assembles a Dataset from already-parsed tables.
func NewDataset(defaults SiteDefaults, costs domain.CostTable, samples []domain.GroundwaterSample, polygons []domain.AquiferPolygon) *Dataset {
	return &Dataset{
		Defaults: defaults,
		Costs:    costs,
		Samples:  samples,
		Aquifers: NewAquiferIndex(polygons),
	}
}

// RegionCosts returns the cost rates for the site's administrative region.
func (d *Dataset) RegionCosts() domain.RegionCosts {
	return d.Costs.For(d.Defaults.Admin.Code)
}

// Options points at files that replace the embedded copies. Empty paths use
// the embedded data.
type Options struct {
	SiteDefaultsPath string
	CostTablePath    string
	AquifersPath     string
	GroundwaterCSV   string

	// FallbackRainfallMM overrides the site default annual rainfall when > 0.
	FallbackRainfallMM float64
}

// Load builds the Dataset. A missing or malformed override file is logged and
// replaced by the embedded copy, except the groundwater file: when it cannot
// be read the sample set is left empty and resolvers use the site defaults.
// Only a malformed embedded table is returned as an error.
func Load(opts Options, logger *slog.Logger) (*Dataset, error) {
	defaults, err := loadWithFallback(opts.SiteDefaultsPath, siteDefaultsFile, parseSiteDefaults, logger)
	if err != nil {
		return nil, err
	}
	if opts.FallbackRainfallMM > 0 {
		defaults.RainfallMMYear = opts.FallbackRainfallMM
	}

	costs, err := loadWithFallback(opts.CostTablePath, costTableFile, parseCostTable, logger)
	if err != nil {
		return nil, err
	}

	polygons, err := loadWithFallback(opts.AquifersPath, aquifersFile, func(b []byte) ([]domain.AquiferPolygon, error) {
		return parseAquifers(b, logger)
	}, logger)
	if err != nil {
		return nil, err
	}

	samples := loadSamples(opts.GroundwaterCSV, logger)

	ds := NewDataset(defaults, costs, samples, polygons)
	logger.Info("reference data loaded",
		"admin", defaults.Admin.Code,
		"regions", len(costs),
		"aquifers", ds.Aquifers.Len(),
		"samples", len(samples),
	)
	return ds, nil
}

func loadWithFallback[T any](path, name string, parse func([]byte) (T, error), logger *slog.Logger) (T, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			var v T
			if v, err = parse(b); err == nil {
				return v, nil
			}
		}
		logger.Warn("reference override unusable, using embedded copy", "path", path, "error", err)
	}

	var zero T
	b, err := embedded.ReadFile(name)
	if err != nil {
		return zero, fmt.Errorf("read embedded %s: %w", name, err)
	}
	v, err := parse(b)
	if err != nil {
		return zero, fmt.Errorf("parse embedded %s: %w", name, err)
	}
	return v, nil
}

func loadSamples(path string, logger *slog.Logger) []domain.GroundwaterSample {
	var (
		b   []byte
		err error
	)
	if path != "" {
		b, err = os.ReadFile(path)
	} else {
		b, err = embedded.ReadFile(samplesFile)
	}
	if err != nil {
		logger.Warn("groundwater samples unavailable, using site defaults", "path", path, "error", err)
		return nil
	}
	samples, err := parseSamples(b, logger)
	if err != nil {
		logger.Warn("groundwater samples malformed, using site defaults", "path", path, "error", err)
		return nil
	}
	return samples
}

func parseSiteDefaults(b []byte) (SiteDefaults, error) {
	var d SiteDefaults
	if err := json.Unmarshal(b, &d); err != nil {
		return SiteDefaults{}, fmt.Errorf("decode site defaults: %w", err)
	}
	if err := d.validate(); err != nil {
		return SiteDefaults{}, fmt.Errorf("site defaults: %w", err)
	}
	return d, nil
}

func parseCostTable(b []byte) (domain.CostTable, error) {
	var t domain.CostTable
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode cost table: %w", err)
	}
	if _, ok := t[domain.DefaultRegion]; !ok {
		return nil, errors.New("cost table has no default entry")
	}
	return t, nil
}
