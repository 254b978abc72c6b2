package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRates = RegionCosts{
	RechargePitBaseINR:        15000,
	RechargeTrenchPerMeterINR: 2500,
	RechargeShaftBaseINR:      30000,
	ModularTankPerM3INR:       6000,
	FiltrationUnitBaseINR:     5000,
	ConveyancePerMeterINR:     150,
}

func TestRunoffCoefficient(t *testing.T) {
	assert.InDelta(t, 0.90, RunoffCoefficient(RoofConcrete), 1e-9)
	assert.InDelta(t, 0.80, RunoffCoefficient(RoofTile), 1e-9)
	assert.InDelta(t, 0.85, RunoffCoefficient(RoofMetal), 1e-9)
	assert.InDelta(t, 0.75, RunoffCoefficient(RoofAsbestos), 1e-9)
	assert.InDelta(t, 0.85, RunoffCoefficient("thatch"), 1e-9)
}

func TestHarvestVolumeM3_Example(t *testing.T) {
	assert.InDelta(t, 77.76, HarvestVolumeM3(120, 800, RoofConcrete, 0.9), 1e-9)
}

func TestHarvestVolumeM3_RoundsToTwoPlaces(t *testing.T) {
	// 7 × 333 × 0.8 × 0.33 × 1e-3 = 0.615384
	assert.InDelta(t, 0.62, HarvestVolumeM3(7, 333, RoofTile, 0.33), 1e-9)
}

func TestHarvestVolumeM3_Monotonic(t *testing.T) {
	prev := 0.0
	for _, area := range []float64{1, 10, 50, 120, 500, 10000} {
		v := HarvestVolumeM3(area, 800, RoofMetal, 0.7)
		assert.GreaterOrEqual(t, v, prev, "area %v", area)
		prev = v
	}
	prev = 0
	for _, rain := range []float64{0, 50, 400, 800, 3000, 5000} {
		v := HarvestVolumeM3(100, rain, RoofMetal, 0.7)
		assert.GreaterOrEqual(t, v, prev, "rain %v", rain)
		prev = v
	}
	prev = 0
	for _, eff := range []float64{0.1, 0.25, 0.5, 0.9, 1.0} {
		v := HarvestVolumeM3(100, 800, RoofMetal, eff)
		assert.GreaterOrEqual(t, v, prev, "efficiency %v", eff)
		prev = v
	}
}

func TestSuggestStructures(t *testing.T) {
	tests := []struct {
		name      string
		depth     float64
		openSpace float64
		want      []Structure
	}{
		{"all three", 10, 25, []Structure{RechargePit, RechargeTrench, RechargeShaft}},
		{"deep and no space", 40, 0, []Structure{ModularTank}},
		{"pit only", 6, 15, []Structure{RechargePit}},
		{"pit and trench", 5, 20, []Structure{RechargePit, RechargeTrench}},
		{"shaft only when space is short", 20, 0, []Structure{RechargeShaft}},
		{"pit and shaft above trench range", 14, 50, []Structure{RechargePit, RechargeShaft}},
		{"upper shaft bound", 30, 0, []Structure{RechargeShaft}},
		{"shallow", 3, 500, []Structure{ModularTank}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestStructures(tt.depth, tt.openSpace))
		})
	}
}

func TestSizeStructures(t *testing.T) {
	got := SizeStructures([]Structure{RechargePit, RechargeTrench, RechargeShaft}, 77.76)
	want := map[Structure]Dimensions{
		RechargePit:    {"diameter_m": 1.2, "depth_m": 2.5},
		RechargeTrench: {"length_m": 6, "width_m": 0.9, "depth_m": 1.5},
		RechargeShaft:  {"diameter_m": 0.45, "depth_m": 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sizing mismatch (-want +got):\n%s", diff)
	}

	tank := SizeStructures([]Structure{ModularTank}, 12.5)
	assert.InDelta(t, 12.5, tank[ModularTank]["volume_m3"], 1e-9)

	capped := SizeStructures([]Structure{ModularTank}, 77.76)
	assert.InDelta(t, 20, capped[ModularTank]["volume_m3"], 1e-9)
}

func TestEstimateCostINR(t *testing.T) {
	// pit 15000 + trench 6×2500 + shaft 30000 + filtration 5000 + conveyance 10×150
	all := EstimateCostINR([]Structure{RechargePit, RechargeTrench, RechargeShaft}, 77.76, testRates)
	assert.Equal(t, int64(66500), all)

	// tank min(77.76, 20)×6000 + 5000 + 1500
	tank := EstimateCostINR([]Structure{ModularTank}, 77.76, testRates)
	assert.Equal(t, int64(126500), tank)

	// tank 3.33×6000 = 19980 + 6500
	small := EstimateCostINR([]Structure{ModularTank}, 3.33, testRates)
	assert.Equal(t, int64(26480), small)
}

func TestEstimateCostINR_Deterministic(t *testing.T) {
	s := []Structure{RechargePit, RechargeShaft}
	first := EstimateCostINR(s, 40, testRates)
	for range 10 {
		assert.Equal(t, first, EstimateCostINR(s, 40, testRates))
	}
}

func TestFeasibility(t *testing.T) {
	assert.Equal(t, FeasibilityYes, Feasibility([]Structure{ModularTank}))
	assert.Equal(t, FeasibilityYes, Feasibility([]Structure{RechargeShaft}))
	assert.Equal(t, FeasibilityConditional, Feasibility(nil))
}

func TestAssess_EndToEndExample(t *testing.T) {
	in := AssessmentInput{
		Location:             GeoPoint{Lat: 28.6139, Lon: 77.209},
		RoofAreaM2:           120,
		RoofType:             RoofConcrete,
		OpenSpaceM2:          20,
		Occupiers:            4,
		CollectionEfficiency: 0.9,
	}
	rain := RainfallResult{AnnualMM: 800, YearsCount: 1}
	for i := range rain.MonthlyMM {
		rain.MonthlyMM[i] = 67
	}

	res := Assess(in, rain, 10, testRates)

	assert.Equal(t, FeasibilityYes, res.Feasibility)
	assert.InDelta(t, 77.76, res.Volumes.AnnualHarvestM3, 1e-9)
	assert.ElementsMatch(t, []Structure{RechargePit, RechargeTrench, RechargeShaft}, res.SuggestedStructures)
	assert.Equal(t, rain.MonthlyMM, res.Volumes.MonthlyRainfallMM)
	assert.Equal(t, int64(66500), res.CostEstimateINR)
	require.Len(t, res.Sizing, 3)
	assert.Empty(t, res.Warnings)
}

func TestAssess_WarnsWhenHarvestExceedsRange(t *testing.T) {
	in := AssessmentInput{RoofAreaM2: 10000, RoofType: RoofConcrete, CollectionEfficiency: 1}
	res := Assess(in, RainfallResult{AnnualMM: 4000}, 40, testRates)

	assert.Equal(t, []Structure{ModularTank}, res.SuggestedStructures)
	assert.Contains(t, res.Warnings, "Harvest volume cannot exceed 10,000 m³/year")
}

func TestCostTable_For(t *testing.T) {
	table := CostTable{
		DefaultRegion: {FiltrationUnitBaseINR: 1},
		"DL":          {FiltrationUnitBaseINR: 2},
	}
	assert.InDelta(t, 2, table.For("DL").FiltrationUnitBaseINR, 1e-9)
	assert.InDelta(t, 1, table.For("MH").FiltrationUnitBaseINR, 1e-9)
}
