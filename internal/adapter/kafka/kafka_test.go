package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rtrwh-assessment-service/internal/config"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	rec := domain.AssessmentRecord{
		ID:         "3f1c7a3e-0000-4000-8000-000000000001",
		AssessedAt: now,
		Input: domain.AssessmentInput{
			Location:   domain.GeoPoint{Lat: 28.6139, Lon: 77.209},
			RoofAreaM2: 120,
			RoofType:   domain.RoofConcrete,
		},
		Rainfall: domain.RainfallResult{AnnualMM: 800, Source: "open-meteo"},
		DepthM:   10,
		Result: domain.AssessmentResult{
			Feasibility:         domain.FeasibilityYes,
			SuggestedStructures: []domain.Structure{domain.RechargeShaft},
			CostEstimateINR:     36500,
		},
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte(rec.ID), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "feasibility", msg.Headers[0].Key)
	assert.Equal(t, []byte("Yes"), msg.Headers[0].Value)
	assert.Equal(t, "rainfall_source", msg.Headers[1].Key)
	assert.Equal(t, []byte("open-meteo"), msg.Headers[1].Value)
	assert.Equal(t, "assessed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, rec.ID, decoded["id"])
	assert.InDelta(t, 10, decoded["groundwater_depth_m"], 1e-9)
	result := decoded["result"].(map[string]any)
	assert.InDelta(t, 36500, result["cost_estimate_inr"], 1e-9)
}

func TestLoadBatch_EmptyIsNoop(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaTopic: "unused"}, nil)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.LoadBatch(t.Context(), nil))
}
