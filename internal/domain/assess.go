package domain

import (
	"math"
	"slices"
)

// Fixed structure templates and costing quantities.
const (
	trenchLengthM     = 6.0
	conveyanceLengthM = 10.0
	tankCapM3         = 20.0
	defaultRunoff     = 0.85
)

var runoffByRoof = map[RoofType]float64{
	RoofConcrete: 0.90,
	RoofTile:     0.80,
	RoofMetal:    0.85,
	RoofAsbestos: 0.75,
}

// RunoffCoefficient returns the collectible fraction of rainfall for a roof type.
func RunoffCoefficient(rt RoofType) float64 {
	if c, ok := runoffByRoof[rt]; ok {
		return c
	}
	return defaultRunoff
}

// HarvestVolumeM3 is the annual collectible roof runoff, rounded to 2 dp.
func HarvestVolumeM3(roofAreaM2, annualMM float64, rt RoofType, efficiency float64) float64 {
	v := roofAreaM2 * annualMM * RunoffCoefficient(rt) * efficiency * 1e-3
	return math.Round(v*100) / 100
}

// SuggestStructures applies the space/depth rules in fixed order. The result
// is never empty: modular_tank is suggested when no recharge structure fits.
func SuggestStructures(depthM, openSpaceM2 float64) []Structure {
	var out []Structure
	if openSpaceM2 >= 10 && depthM >= 5 && depthM <= 15 {
		out = append(out, RechargePit)
	}
	if openSpaceM2 >= 20 && depthM >= 5 && depthM <= 12 {
		out = append(out, RechargeTrench)
	}
	if depthM >= 8 && depthM <= 30 {
		out = append(out, RechargeShaft)
	}
	if len(out) == 0 {
		out = append(out, ModularTank)
	}
	return out
}

// TankVolumeM3 caps storage at 20 m³.
func TankVolumeM3(harvestM3 float64) float64 {
	return math.Min(harvestM3, tankCapM3)
}

// SizeStructures returns the dimensional template for each suggested structure.
func SizeStructures(structures []Structure, harvestM3 float64) map[Structure]Dimensions {
	sizing := make(map[Structure]Dimensions, len(structures))
	for _, s := range structures {
		switch s {
		case RechargePit:
			sizing[s] = Dimensions{"diameter_m": 1.2, "depth_m": 2.5}
		case RechargeTrench:
			sizing[s] = Dimensions{"length_m": trenchLengthM, "width_m": 0.9, "depth_m": 1.5}
		case RechargeShaft:
			sizing[s] = Dimensions{"diameter_m": 0.45, "depth_m": 10}
		case ModularTank:
			sizing[s] = Dimensions{"volume_m3": TankVolumeM3(harvestM3)}
		}
	}
	return sizing
}

// EstimateCostINR sums structure costs, a filtration unit, and 10 m of
// conveyance at the given regional rates, rounded to whole rupees.
func EstimateCostINR(structures []Structure, harvestM3 float64, rates RegionCosts) int64 {
	var cost float64
	if slices.Contains(structures, RechargePit) {
		cost += rates.RechargePitBaseINR
	}
	if slices.Contains(structures, RechargeTrench) {
		cost += rates.RechargeTrenchPerMeterINR * trenchLengthM
	}
	if slices.Contains(structures, RechargeShaft) {
		cost += rates.RechargeShaftBaseINR
	}
	if slices.Contains(structures, ModularTank) {
		cost += rates.ModularTankPerM3INR * TankVolumeM3(harvestM3)
	}
	cost += rates.FiltrationUnitBaseINR
	cost += rates.ConveyancePerMeterINR * conveyanceLengthM
	return int64(math.Round(cost))
}

// Feasibility returns "Yes" for any non-empty suggestion list. The
// "Conditional" branch is unreachable while SuggestStructures falls back to
// modular_tank.
func Feasibility(structures []Structure) string {
	if len(structures) > 0 {
		return FeasibilityYes
	}
	return FeasibilityConditional
}

// Assess runs the full engine. Inputs are trusted: validation happens before.
func Assess(in AssessmentInput, rain RainfallResult, depthM float64, rates RegionCosts) AssessmentResult {
	harvest := HarvestVolumeM3(in.RoofAreaM2, rain.AnnualMM, in.RoofType, in.CollectionEfficiency)
	structures := SuggestStructures(depthM, in.OpenSpaceM2)
	cost := EstimateCostINR(structures, harvest, rates)

	res := AssessmentResult{
		Feasibility:         Feasibility(structures),
		SuggestedStructures: structures,
		Sizing:              SizeStructures(structures, harvest),
		Volumes: Volumes{
			AnnualHarvestM3:   harvest,
			MonthlyRainfallMM: rain.MonthlyMM,
		},
		CostEstimateINR: cost,
	}
	if r := ValidateHarvestVolume(harvest); !r.Valid {
		res.Warnings = append(res.Warnings, r.Error)
	}
	if r := ValidateCost(float64(cost)); !r.Valid {
		res.Warnings = append(res.Warnings, r.Error)
	}
	return res
}
