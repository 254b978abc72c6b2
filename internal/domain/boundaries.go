package domain

// Range is an inclusive numeric range with an optional unit.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit,omitempty"`
}

// Boundaries returns the accepted range of every validated quantity.
func Boundaries() map[string]Range {
	return map[string]Range{
		"latitude":             {Min: MinLat, Max: MaxLat},
		"longitude":            {Min: MinLon, Max: MaxLon},
		"roofArea":             {Min: 1, Max: MaxRoofAreaM2, Unit: "m²"},
		"collectionEfficiency": {Min: MinEfficiency, Max: MaxEfficiency},
		"openSpace":            {Min: 0, Max: MaxOpenSpaceM2, Unit: "m²"},
		"rainfall":             {Min: 0, Max: MaxAnnualRainfallMM, Unit: "mm/year"},
		"groundwaterDepth":     {Min: MinDepthM, Max: MaxDepthM, Unit: "meters"},
		"cost":                 {Min: 0, Max: MaxCostINR, Unit: "INR"},
		"harvestVolume":        {Min: 0, Max: MaxHarvestM3, Unit: "m³/year"},
	}
}

// BoundaryProbe is one validator evaluated at or just past a boundary.
type BoundaryProbe struct {
	Field    string  `json:"field"`
	Value    float64 `json:"value"`
	Expected bool    `json:"expected"`
	Actual   bool    `json:"actual"`
}

// Passed reports whether the validator agreed with the expectation.
func (p BoundaryProbe) Passed() bool { return p.Expected == p.Actual }

// ProbeBoundaries exercises the input validators on both sides of each edge.
func ProbeBoundaries() []BoundaryProbe {
	cases := []struct {
		field    string
		check    func(float64) FieldResult
		value    float64
		expected bool
	}{
		{"latitude", ValidateLatitude, -90, true},
		{"latitude", ValidateLatitude, 90, true},
		{"latitude", ValidateLatitude, -91, false},
		{"latitude", ValidateLatitude, 91, false},
		{"longitude", ValidateLongitude, -180, true},
		{"longitude", ValidateLongitude, 180, true},
		{"longitude", ValidateLongitude, -181, false},
		{"longitude", ValidateLongitude, 181, false},
		{"roofArea", ValidateRoofArea, 1, true},
		{"roofArea", ValidateRoofArea, 10000, true},
		{"roofArea", ValidateRoofArea, 0, false},
		{"roofArea", ValidateRoofArea, 10001, false},
		{"collectionEfficiency", ValidateCollectionEfficiency, 0.1, true},
		{"collectionEfficiency", ValidateCollectionEfficiency, 1.0, true},
		{"collectionEfficiency", ValidateCollectionEfficiency, 0.05, false},
		{"collectionEfficiency", ValidateCollectionEfficiency, 1.1, false},
		{"openSpace", ValidateOpenSpace, 0, true},
		{"openSpace", ValidateOpenSpace, 1000, true},
		{"openSpace", ValidateOpenSpace, -1, false},
		{"openSpace", ValidateOpenSpace, 1001, false},
	}

	probes := make([]BoundaryProbe, 0, len(cases))
	for _, c := range cases {
		probes = append(probes, BoundaryProbe{
			Field:    c.field,
			Value:    c.value,
			Expected: c.expected,
			Actual:   c.check(c.value).Valid,
		})
	}
	return probes
}
