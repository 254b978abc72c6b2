package domain

import (
	"context"
	"time"
)

// RainfallSource is one stage of the rainfall fallback chain.
type RainfallSource interface {
	// Name identifies the source in logs, metrics, and RainfallResult.Source.
	Name() string

	// Rainfall fetches and aggregates rainfall for a point. Any error means
	// the stage failed and the next stage should be tried.
	Rainfall(ctx context.Context, pt GeoPoint) (RainfallResult, error)
}

// AssessmentRecord is the event emitted after a successful assessment.
type AssessmentRecord struct {
	ID         string           `json:"id"`
	AssessedAt time.Time        `json:"assessed_at"`
	Input      AssessmentInput  `json:"input"`
	Rainfall   RainfallResult   `json:"rainfall"`
	DepthM     float64          `json:"groundwater_depth_m"`
	Result     AssessmentResult `json:"result"`
}

// AssessmentRecorder accepts assessment records for asynchronous delivery.
// Implementations must not block the caller.
type AssessmentRecorder interface {
	Record(rec AssessmentRecord)
}
