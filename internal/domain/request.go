package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// rawAssessmentRequest defers field decoding so a value of the wrong JSON
// type becomes a field-level validation problem instead of a decode error.
type rawAssessmentRequest struct {
	Location             json.RawMessage `json:"location"`
	RoofAreaM2           json.RawMessage `json:"roof_area_m2"`
	RoofType             json.RawMessage `json:"roof_type"`
	OpenSpaceM2          json.RawMessage `json:"open_space_m2"`
	Occupiers            json.RawMessage `json:"occupiers"`
	CollectionEfficiency json.RawMessage `json:"collection_efficiency"`
}

type rawLocation struct {
	Lat json.RawMessage `json:"lat"`
	Lon json.RawMessage `json:"lon"`
}

// UnmarshalJSON accepts any object. Numeric fields holding a non-number
// decode to NaN and a non-string roof_type keeps its raw text, so
// ValidateAssessmentRequest reports them with every other problem. Only
// malformed JSON or a non-object body is an error.
func (r *AssessmentRequest) UnmarshalJSON(b []byte) error {
	var raw rawAssessmentRequest
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	req := AssessmentRequest{
		RoofAreaM2:           lenientNumber(raw.RoofAreaM2),
		RoofType:             lenientString(raw.RoofType),
		OpenSpaceM2:          lenientNumber(raw.OpenSpaceM2),
		Occupiers:            lenientNumber(raw.Occupiers),
		CollectionEfficiency: lenientNumber(raw.CollectionEfficiency),
	}
	if present(raw.Location) {
		req.Location = &LocationRequest{}
		var loc rawLocation
		if err := json.Unmarshal(raw.Location, &loc); err == nil {
			req.Location.Lat = lenientNumber(loc.Lat)
			req.Location.Lon = lenientNumber(loc.Lon)
		}
	}
	*r = req
	return nil
}

func present(m json.RawMessage) bool {
	return len(m) > 0 && !bytes.Equal(m, []byte("null"))
}

func lenientNumber(m json.RawMessage) *float64 {
	if !present(m) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(m, &v); err != nil {
		v = math.NaN()
	}
	return &v
}

func lenientString(m json.RawMessage) *string {
	if !present(m) {
		return nil
	}
	var s string
	if err := json.Unmarshal(m, &s); err != nil {
		s = string(m)
	}
	return &s
}
