package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Input and reference-data bounds.
const (
	MinLat              = -90.0
	MaxLat              = 90.0
	MinLon              = -180.0
	MaxLon              = 180.0
	MaxRoofAreaM2       = 10000.0
	MinEfficiency       = 0.1
	MaxEfficiency       = 1.0
	MaxOpenSpaceM2      = 1000.0
	MaxAnnualRainfallMM = 5000.0
	MaxMonthlyRainfall  = 1000.0
	MinDepthM           = 0.5
	MaxDepthM           = 100.0
	MaxCostINR          = 1000000.0
	MaxHarvestM3        = 10000.0
)

// Defaults applied to optional assessment fields.
const (
	DefaultRoofType             = RoofConcrete
	DefaultOpenSpaceM2          = 0.0
	DefaultOccupiers            = 4
	DefaultCollectionEfficiency = 0.9
)

// FieldResult is the outcome of a single field check.
type FieldResult struct {
	Valid bool
	Error string
	Value any
}

func valid(v any) FieldResult { return FieldResult{Valid: true, Value: v} }

func invalid(msg string) FieldResult { return FieldResult{Error: msg} }

func isNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidationError lists every problem found in a rejected input.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// ValidateLatitude checks lat ∈ [-90, 90].
func ValidateLatitude(lat float64) FieldResult {
	if !isNumber(lat) {
		return invalid("Latitude must be a valid number")
	}
	if lat < MinLat || lat > MaxLat {
		return invalid("Latitude must be between -90 and 90 degrees")
	}
	return valid(lat)
}

// ValidateLongitude checks lon ∈ [-180, 180].
func ValidateLongitude(lon float64) FieldResult {
	if !isNumber(lon) {
		return invalid("Longitude must be a valid number")
	}
	if lon < MinLon || lon > MaxLon {
		return invalid("Longitude must be between -180 and 180 degrees")
	}
	return valid(lon)
}

// ValidateRoofArea checks area ∈ [1, 10000] m².
func ValidateRoofArea(area float64) FieldResult {
	if !isNumber(area) {
		return invalid("Roof area must be a valid number")
	}
	if area < 1 {
		return invalid("Roof area must be at least 1 m²")
	}
	if area > MaxRoofAreaM2 {
		return invalid("Roof area cannot exceed 10,000 m²")
	}
	return valid(area)
}

// ValidateCollectionEfficiency checks eff ∈ [0.1, 1.0].
func ValidateCollectionEfficiency(eff float64) FieldResult {
	if !isNumber(eff) {
		return invalid("Collection efficiency must be a valid number")
	}
	if eff < MinEfficiency {
		return invalid("Collection efficiency cannot be less than 0.1 (10%)")
	}
	if eff > MaxEfficiency {
		return invalid("Collection efficiency cannot exceed 1.0 (100%)")
	}
	return valid(eff)
}

// ValidateOpenSpace checks space ∈ [0, 1000] m².
func ValidateOpenSpace(space float64) FieldResult {
	if !isNumber(space) {
		return invalid("Open space must be a valid number")
	}
	if space < 0 {
		return invalid("Open space cannot be negative")
	}
	if space > MaxOpenSpaceM2 {
		return invalid("Open space cannot exceed 1,000 m²")
	}
	return valid(space)
}

// ValidateOccupiers checks for a positive whole number.
func ValidateOccupiers(n float64) FieldResult {
	if !isNumber(n) || n != math.Trunc(n) || n < 1 {
		return invalid("Occupiers must be a positive integer")
	}
	return valid(int(n))
}

// ValidateRoofType checks membership in RoofTypes.
func ValidateRoofType(rt string) FieldResult {
	if !slices.Contains(RoofTypes, RoofType(rt)) {
		names := make([]string, len(RoofTypes))
		for i, t := range RoofTypes {
			names[i] = string(t)
		}
		return invalid("Roof type must be one of: " + strings.Join(names, ", "))
	}
	return valid(RoofType(rt))
}

// ValidateRainfall checks an annual figure ∈ [0, 5000] mm.
func ValidateRainfall(mm float64) FieldResult {
	if !isNumber(mm) {
		return invalid("Rainfall must be a valid number")
	}
	if mm < 0 {
		return invalid("Rainfall cannot be negative")
	}
	if mm > MaxAnnualRainfallMM {
		return invalid("Rainfall cannot exceed 5,000 mm/year")
	}
	return valid(mm)
}

// ValidateMonthlyRainfall checks each month ∈ [0, 1000] mm and stops at the
// first bad month.
func ValidateMonthlyRainfall(monthly []float64) FieldResult {
	if len(monthly) != 12 {
		return invalid("Monthly rainfall must have exactly 12 values")
	}
	for i, v := range monthly {
		switch {
		case !isNumber(v):
			return invalid(fmt.Sprintf("Monthly rainfall value at index %d must be a valid number", i))
		case v < 0:
			return invalid(fmt.Sprintf("Monthly rainfall value at index %d cannot be negative", i))
		case v > MaxMonthlyRainfall:
			return invalid(fmt.Sprintf("Monthly rainfall value at index %d cannot exceed 1,000 mm", i))
		}
	}
	return valid(monthly)
}

// ValidateRainfallResult checks annual and monthly figures together.
func ValidateRainfallResult(r RainfallResult) error {
	var problems []string
	if res := ValidateRainfall(r.AnnualMM); !res.Valid {
		problems = append(problems, res.Error)
	}
	if res := ValidateMonthlyRainfall(r.MonthlyMM[:]); !res.Valid {
		problems = append(problems, res.Error)
	}
	if r.YearsCount < 1 {
		problems = append(problems, "Rainfall years count must be at least 1")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateGroundwaterDepth checks depth ∈ [0.5, 100] m.
func ValidateGroundwaterDepth(depth float64) FieldResult {
	if !isNumber(depth) {
		return invalid("Groundwater depth must be a valid number")
	}
	if depth < MinDepthM {
		return invalid("Groundwater depth cannot be less than 0.5 meters")
	}
	if depth > MaxDepthM {
		return invalid("Groundwater depth cannot exceed 100 meters")
	}
	return valid(depth)
}

var aquiferTypes = []string{AquiferUnconfined, AquiferConfined, AquiferSemiConfined, AquiferUnknown}

// ValidateAquiferType checks membership in the known aquifer types.
func ValidateAquiferType(t string) FieldResult {
	if !slices.Contains(aquiferTypes, t) {
		return invalid("Aquifer type must be one of: " + strings.Join(aquiferTypes, ", "))
	}
	return valid(t)
}

// ValidateStructures rejects unknown structure tags.
func ValidateStructures(structures []Structure) FieldResult {
	for _, s := range structures {
		switch s {
		case RechargePit, RechargeTrench, RechargeShaft, ModularTank:
		default:
			return invalid(fmt.Sprintf("Invalid structure type: %s", s))
		}
	}
	return valid(structures)
}

// ValidateCost checks cost ∈ [0, 1,000,000] INR.
func ValidateCost(cost float64) FieldResult {
	if !isNumber(cost) {
		return invalid("Cost must be a valid number")
	}
	if cost < 0 {
		return invalid("Cost cannot be negative")
	}
	if cost > MaxCostINR {
		return invalid("Cost cannot exceed ₹1,000,000")
	}
	return valid(cost)
}

// ValidateHarvestVolume checks volume ∈ [0, 10,000] m³/year.
func ValidateHarvestVolume(v float64) FieldResult {
	if !isNumber(v) {
		return invalid("Harvest volume must be a valid number")
	}
	if v < 0 {
		return invalid("Harvest volume cannot be negative")
	}
	if v > MaxHarvestM3 {
		return invalid("Harvest volume cannot exceed 10,000 m³/year")
	}
	return valid(v)
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// ValidateAssessmentRequest applies defaults, runs every field check, and
// returns either a complete AssessmentInput or a ValidationError naming all
// failures.
func ValidateAssessmentRequest(req AssessmentRequest) (AssessmentInput, error) {
	var problems []string
	check := func(r FieldResult) FieldResult {
		if !r.Valid {
			problems = append(problems, r.Error)
		}
		return r
	}

	loc := LocationRequest{}
	if req.Location != nil {
		loc = *req.Location
	}
	roofType := string(DefaultRoofType)
	if req.RoofType != nil {
		roofType = *req.RoofType
	}
	openSpace := DefaultOpenSpaceM2
	if req.OpenSpaceM2 != nil {
		openSpace = *req.OpenSpaceM2
	}
	occupiers := float64(DefaultOccupiers)
	if req.Occupiers != nil {
		occupiers = *req.Occupiers
	}
	efficiency := DefaultCollectionEfficiency
	if req.CollectionEfficiency != nil {
		efficiency = *req.CollectionEfficiency
	}

	lat := check(ValidateLatitude(orNaN(loc.Lat)))
	lon := check(ValidateLongitude(orNaN(loc.Lon)))
	area := check(ValidateRoofArea(orNaN(req.RoofAreaM2)))
	rt := check(ValidateRoofType(roofType))
	space := check(ValidateOpenSpace(openSpace))
	occ := check(ValidateOccupiers(occupiers))
	eff := check(ValidateCollectionEfficiency(efficiency))

	if len(problems) > 0 {
		return AssessmentInput{}, &ValidationError{Problems: problems}
	}
	return AssessmentInput{
		Location:             GeoPoint{Lat: lat.Value.(float64), Lon: lon.Value.(float64)},
		RoofAreaM2:           area.Value.(float64),
		RoofType:             rt.Value.(RoofType),
		OpenSpaceM2:          space.Value.(float64),
		Occupiers:            occ.Value.(int),
		CollectionEfficiency: eff.Value.(float64),
	}, nil
}

// ValidateLocation checks a query point and reports both coordinates' problems.
func ValidateLocation(lat, lon float64) (GeoPoint, error) {
	var problems []string
	if r := ValidateLatitude(lat); !r.Valid {
		problems = append(problems, r.Error)
	}
	if r := ValidateLongitude(lon); !r.Valid {
		problems = append(problems, r.Error)
	}
	if len(problems) > 0 {
		return GeoPoint{}, &ValidationError{Problems: problems}
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}
