// Package domain models rooftop rainwater harvesting (RTRWH) feasibility for a
// single geographic point.
//
// # Inputs
//
// A request names a location (WGS-84 lat/lon) and, for an assessment, the
// rooftop parameters:
//
//	roof_area_m2           1 .. 10000
//	roof_type              concrete | tile | metal | asbestos
//	open_space_m2          0 .. 1000   (ground available for recharge structures)
//	occupiers              positive integer
//	collection_efficiency  0.1 .. 1.0
//
// Missing optional fields take the defaults concrete / 0 / 4 / 0.9. Every field
// is checked independently and all failures are reported together in a
// [ValidationError]; nothing is computed from a rejected input.
//
// # Resolved context
//
// Rainfall and groundwater are resolved per request and never cached:
//
//	RainfallResult   annual_mm plus twelve monthly_mm values, rounded to whole mm
//	groundwater      depth to water table in metres and an aquifer {name, type}
//
// Data-quality checks on the resolved context only annotate, never reject:
//
//	rainfall < 100 or > 3000 mm/yr
//	depth    < 2 or > 50 m
//	wettest / driest month > 20
//
// # Assessment heuristics
//
// The formulas are fixed rules of thumb and are deliberately left as-is:
//
//	harvest_m3 = area × annual_mm × runoff(roof) × efficiency × 1e-3   (2 dp)
//	runoff     concrete 0.90 | tile 0.80 | metal 0.85 | asbestos 0.75 | other 0.85
//
//	recharge_pit     open_space ≥ 10 and depth in [5, 15]    1.2 m Ø × 2.5 m
//	recharge_trench  open_space ≥ 20 and depth in [5, 12]    6 × 0.9 × 1.5 m
//	recharge_shaft   depth in [8, 30]                        0.45 m Ø × 10 m
//	modular_tank     only when nothing above qualifies       min(harvest, 20) m³
//
// Cost is the sum of the region rates for each suggested structure, a
// filtration unit, and 10 m of conveyance, rounded to whole rupees. The region
// is the configured site region, not one derived from the query coordinates.
//
// Feasibility is "Yes" for any non-empty suggestion list. Because the tank
// fallback always fills the list, "Conditional" is unreachable today; it is
// kept so the verdict stays well-defined if the fallback ever changes.
package domain
