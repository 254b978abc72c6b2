package domain

import "slices"

// Data-quality advisories attached to a ResolvedContext.
const (
	WarnLowRainfall      = "Very low rainfall detected - may affect feasibility"
	WarnHighRainfall     = "Very high rainfall detected - ensure proper drainage"
	WarnShallowWater     = "Very shallow water table - consider flood risk"
	WarnDeepWater        = "Very deep water table - recharge may be challenging"
	WarnSeasonalVariance = "Extreme seasonal variation in rainfall"
)

// QualityWarnings returns advisories for a resolved context. It never rejects.
func QualityWarnings(rain RainfallResult, depthM float64) []string {
	var warnings []string
	if rain.AnnualMM < 100 {
		warnings = append(warnings, WarnLowRainfall)
	}
	if rain.AnnualMM > 3000 {
		warnings = append(warnings, WarnHighRainfall)
	}
	if depthM < 2 {
		warnings = append(warnings, WarnShallowWater)
	}
	if depthM > 50 {
		warnings = append(warnings, WarnDeepWater)
	}
	if seasonalRatioExceeds(rain.MonthlyMM[:], 20) {
		warnings = append(warnings, WarnSeasonalVariance)
	}
	return warnings
}

// seasonalRatioExceeds compares the wettest to the driest month. A dry month
// next to any rain counts as an unbounded ratio; an all-dry year does not.
func seasonalRatioExceeds(monthly []float64, limit float64) bool {
	if len(monthly) == 0 {
		return false
	}
	hi, lo := slices.Max(monthly), slices.Min(monthly)
	if lo <= 0 {
		return hi > 0
	}
	return hi/lo > limit
}

// AnnotateQuality sets ctx.Warnings from QualityWarnings.
func AnnotateQuality(ctx ResolvedContext) ResolvedContext {
	ctx.Warnings = QualityWarnings(ctx.Rainfall, ctx.GroundwaterDepthM)
	return ctx
}
