package domain

// GeoPoint is a WGS-84 latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RainfallResult is the output of exactly one rainfall source.
type RainfallResult struct {
	AnnualMM   float64     `json:"annual_mm"`
	MonthlyMM  [12]float64 `json:"monthly_mm"`
	DataPeriod string      `json:"data_period"`
	YearsCount int         `json:"years_count"`
	Source     string      `json:"source"` // "open-meteo", "nasa-power", "static"
}

// Aquifer names the water-bearing formation under a point.
type Aquifer struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Aquifer types accepted by ValidateAquiferType.
const (
	AquiferUnconfined   = "Unconfined"
	AquiferConfined     = "Confined"
	AquiferSemiConfined = "Semi-confined"
	AquiferUnknown      = "Unknown"
)

// GroundwaterSample is one row of the groundwater reference file.
type GroundwaterSample struct {
	Lat         float64
	Lon         float64
	DepthM      float64
	AquiferName string
}

// AquiferPolygon is a simple (non-holed) ring of (lon, lat) vertices.
type AquiferPolygon struct {
	Name string
	Type string
	Ring [][2]float64
}

// Groundwater is the resolved depth to water table and aquifer.
type Groundwater struct {
	DepthM  float64 `json:"depth_m"`
	Aquifer Aquifer `json:"aquifer"`
}

// AdminRegion identifies the administrative region used for costing.
type AdminRegion struct {
	Code  string `json:"code"`
	Name  string `json:"name,omitempty"`
	State string `json:"state,omitempty"`
}

// ResolvedContext is assembled fresh for every request.
type ResolvedContext struct {
	Location           GeoPoint       `json:"location"`
	Rainfall           RainfallResult `json:"rainfall"`
	GroundwaterDepthM  float64        `json:"groundwater_depth_m"`
	Aquifer            Aquifer        `json:"aquifer"`
	RunoffCoeffDefault float64        `json:"runoff_coeff_default"`
	Admin              AdminRegion    `json:"admin"`
	Warnings           []string       `json:"warnings,omitempty"`
}

// RoofType is the roofing material, which sets the runoff coefficient.
type RoofType string

const (
	RoofConcrete RoofType = "concrete"
	RoofTile     RoofType = "tile"
	RoofMetal    RoofType = "metal"
	RoofAsbestos RoofType = "asbestos"
)

// RoofTypes lists the accepted roof types in display order.
var RoofTypes = []RoofType{RoofConcrete, RoofTile, RoofMetal, RoofAsbestos}

// LocationRequest is the unvalidated location of an AssessmentRequest.
type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// AssessmentRequest is the raw caller payload. Nil fields are either
// defaulted or reported as missing by ValidateAssessmentRequest.
type AssessmentRequest struct {
	Location             *LocationRequest `json:"location"`
	RoofAreaM2           *float64         `json:"roof_area_m2"`
	RoofType             *string          `json:"roof_type"`
	OpenSpaceM2          *float64         `json:"open_space_m2"`
	Occupiers            *float64         `json:"occupiers"`
	CollectionEfficiency *float64         `json:"collection_efficiency"`
}

// AssessmentInput is an AssessmentRequest that passed validation.
type AssessmentInput struct {
	Location             GeoPoint `json:"location"`
	RoofAreaM2           float64  `json:"roof_area_m2"`
	RoofType             RoofType `json:"roof_type"`
	OpenSpaceM2          float64  `json:"open_space_m2"`
	Occupiers            int      `json:"occupiers"`
	CollectionEfficiency float64  `json:"collection_efficiency"`
}

// Structure is a recommended recharge or storage structure tag.
type Structure string

const (
	RechargePit    Structure = "recharge_pit"
	RechargeTrench Structure = "recharge_trench"
	RechargeShaft  Structure = "recharge_shaft"
	ModularTank    Structure = "modular_tank"
)

// Dimensions maps a dimension name (e.g. "diameter_m") to its value.
type Dimensions map[string]float64

// Volumes holds the water quantities behind an assessment.
type Volumes struct {
	AnnualHarvestM3   float64     `json:"annual_harvest_m3"`
	MonthlyRainfallMM [12]float64 `json:"monthly_rainfall_mm"`
}

// Feasibility verdicts.
const (
	FeasibilityYes         = "Yes"
	FeasibilityConditional = "Conditional"
)

// AssessmentResult is derived per request and never stored.
type AssessmentResult struct {
	Feasibility         string                   `json:"feasibility"`
	SuggestedStructures []Structure              `json:"suggested_structures"`
	Sizing              map[Structure]Dimensions `json:"sizing"`
	Volumes             Volumes                  `json:"volumes"`
	CostEstimateINR     int64                    `json:"cost_estimate_inr"`
	Warnings            []string                 `json:"warnings,omitempty"`
}

// RegionCosts are the unit rates for one administrative region, in INR.
type RegionCosts struct {
	RechargePitBaseINR        float64 `json:"recharge_pit_base_inr"`
	RechargeTrenchPerMeterINR float64 `json:"recharge_trench_per_meter_inr"`
	RechargeShaftBaseINR      float64 `json:"recharge_shaft_base_inr"`
	ModularTankPerM3INR       float64 `json:"modular_tank_per_m3_inr"`
	FiltrationUnitBaseINR     float64 `json:"filtration_unit_base_inr"`
	ConveyancePerMeterINR     float64 `json:"conveyance_per_meter_inr"`
}

// DefaultRegion is the cost-table key used when a region code is absent.
const DefaultRegion = "default"

// CostTable maps an administrative region code to its unit rates.
type CostTable map[string]RegionCosts

// For returns the rates for code, or the default entry when code is absent.
func (t CostTable) For(code string) RegionCosts {
	if c, ok := t[code]; ok {
		return c
	}
	return t[DefaultRegion]
}
