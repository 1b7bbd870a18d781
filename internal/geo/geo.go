package geo

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine distance between two coordinates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// RoundCoord snaps a coordinate to 3 decimal places, roughly a 111 m grid.
// Practically identical proximity queries collapse onto the same cache key.
func RoundCoord(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ProximityKey derives the cache key for a nearest-store query.
func ProximityKey(lat, lng, radiusKm float64, limit int) string {
	return fmt.Sprintf("proximity:%.3f:%.3f:%g:%d", RoundCoord(lat), RoundCoord(lng), radiusKm, limit)
}
