package domain

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// ringEpsilon keeps the ray-casting slope finite for horizontal edges.
const ringEpsilon = 1e-12

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	s := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Pow(math.Sin(dLon/2), 2)
	// Rounding can push s a hair above 1 for antipodal points.
	s = math.Min(1, s)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(s))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// PointInPolygon reports whether pt lies inside ring using even-odd ray
// casting. Ring vertices are (lon, lat); closing the ring is optional.
func PointInPolygon(pt GeoPoint, ring [][2]float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > pt.Lat) == (yj > pt.Lat) {
			continue
		}
		denom := yj - yi
		if math.Abs(denom) < ringEpsilon {
			denom = math.Copysign(ringEpsilon, denom)
		}
		if pt.Lon < (xj-xi)*(pt.Lat-yi)/denom+xi {
			inside = !inside
		}
	}
	return inside
}

// RingBounds returns the (lon, lat) bounding box of ring as min and max corners.
func RingBounds(ring [][2]float64) (minLonLat, maxLonLat [2]float64) {
	if len(ring) == 0 {
		return minLonLat, maxLonLat
	}
	minLonLat, maxLonLat = ring[0], ring[0]
	for _, v := range ring[1:] {
		minLonLat[0] = math.Min(minLonLat[0], v[0])
		minLonLat[1] = math.Min(minLonLat[1], v[1])
		maxLonLat[0] = math.Max(maxLonLat[0], v[0])
		maxLonLat[1] = math.Max(maxLonLat[1], v[1])
	}
	return minLonLat, maxLonLat
}
