package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	delhi := GeoPoint{Lat: 28.6139, Lon: 77.209}
	mumbai := GeoPoint{Lat: 19.076, Lon: 72.8777}

	assert.InDelta(t, 1148, HaversineKm(delhi, mumbai), 5)
	assert.InDelta(t, 0, HaversineKm(delhi, delhi), 1e-9)
	assert.InDelta(t, HaversineKm(delhi, mumbai), HaversineKm(mumbai, delhi), 1e-9)
}

func TestHaversineKm_AcrossAntimeridian(t *testing.T) {
	// One degree of longitude at the equator, straddling ±180.
	d := HaversineKm(GeoPoint{Lat: 0, Lon: 179.5}, GeoPoint{Lat: 0, Lon: -179.5})
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestHaversineKm_Poles(t *testing.T) {
	// All meridians meet at the pole.
	assert.InDelta(t, 0, HaversineKm(GeoPoint{Lat: 90, Lon: 0}, GeoPoint{Lat: 90, Lon: 135}), 1e-6)

	// Pole to pole is half the circumference.
	d := HaversineKm(GeoPoint{Lat: 90, Lon: 0}, GeoPoint{Lat: -90, Lon: 0})
	assert.InDelta(t, 20015.09, d, 0.1)
}

func TestHaversineKm_Antipodal(t *testing.T) {
	d := HaversineKm(GeoPoint{Lat: 0, Lon: 0}, GeoPoint{Lat: 0, Lon: 180})
	assert.InDelta(t, 20015.09, d, 0.1)
}

var square = [][2]float64{{76, 28}, {78, 28}, {78, 30}, {76, 30}, {76, 28}}

func TestPointInPolygon_InsideOutside(t *testing.T) {
	assert.True(t, PointInPolygon(GeoPoint{Lat: 29, Lon: 77}, square))
	assert.False(t, PointInPolygon(GeoPoint{Lat: 31, Lon: 77}, square))
	assert.False(t, PointInPolygon(GeoPoint{Lat: 29, Lon: 75}, square))
}

func TestPointInPolygon_UnclosedRing(t *testing.T) {
	open := square[:4]
	assert.True(t, PointInPolygon(GeoPoint{Lat: 29, Lon: 77}, open))
}

func TestPointInPolygon_Concave(t *testing.T) {
	// A "U" shape opening north; the notch is outside.
	u := [][2]float64{{0, 0}, {3, 0}, {3, 3}, {2, 3}, {2, 1}, {1, 1}, {1, 3}, {0, 3}}
	assert.True(t, PointInPolygon(GeoPoint{Lat: 2, Lon: 0.5}, u))
	assert.True(t, PointInPolygon(GeoPoint{Lat: 2, Lon: 2.5}, u))
	assert.False(t, PointInPolygon(GeoPoint{Lat: 2, Lon: 1.5}, u))
}

func TestPointInPolygon_HorizontalEdgeAtTestLatitude(t *testing.T) {
	// The bottom edge has zero vertical extent and sits exactly on the ray.
	assert.NotPanics(t, func() {
		PointInPolygon(GeoPoint{Lat: 28, Lon: 77}, square)
	})
	assert.True(t, PointInPolygon(GeoPoint{Lat: 28.0000001, Lon: 77}, square))
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	assert.False(t, PointInPolygon(GeoPoint{Lat: 0, Lon: 0}, nil))
	assert.False(t, PointInPolygon(GeoPoint{Lat: 0, Lon: 0}, [][2]float64{{0, 0}}))
}

func TestPointInPolygon_NearPole(t *testing.T) {
	polarCap := [][2]float64{{-180, 85}, {180, 85}, {180, 90}, {-180, 90}}
	assert.True(t, PointInPolygon(GeoPoint{Lat: 89.9, Lon: 10}, polarCap))
	assert.False(t, PointInPolygon(GeoPoint{Lat: 84, Lon: 10}, polarCap))
}

func TestRingBounds(t *testing.T) {
	lo, hi := RingBounds(square)
	assert.Equal(t, [2]float64{76, 28}, lo)
	assert.Equal(t, [2]float64{78, 30}, hi)
}
