// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package geo provides great-circle distance math and walk-time conversion.
//
// All functions are pure and allocation-free. Coordinate validity
// (lat in [-90, 90], lon in [-180, 180]) is a caller precondition; the
// request validation layer rejects out-of-range coordinates before any
// geo computation runs.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// WalkingSpeedKmh is the fixed average walking pace used to convert
	// distances into walk minutes.
	WalkingSpeedKmh = 4.5
)

// DistanceKm returns the haversine great-circle distance in kilometers
// between (lat1, lon1) and (lat2, lon2), both in WGS84 degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// WalkMinutes returns the estimated walking time for a distance, rounded
// to the nearest minute, at the fixed WalkingSpeedKmh pace.
func WalkMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm / WalkingSpeedKmh * 60))
}

// MaxWalkDistanceKm converts a walk-time budget into the farthest distance
// reachable at the fixed walking pace.
func MaxWalkDistanceKm(maxWalkMinutes int) float64 {
	return float64(maxWalkMinutes) / 60 * WalkingSpeedKmh
}

// BoundingBox returns the (minLat, minLon, maxLat, maxLon) box that fully
// contains a circle of radiusKm around the center. Used by the spatial
// database provider to pre-filter candidate rows before exact distance
// checks. The longitude delta widens toward the poles; latitude is clamped
// to the valid range.
func BoundingBox(lat, lon, radiusKm float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusKm / 111.0 // 1 degree latitude ~ 111 km
	lonDelta := latDelta
	if cos := math.Cos(lat * math.Pi / 180); cos > 1e-6 {
		lonDelta = latDelta / cos
	} else {
		lonDelta = 180
	}

	minLat = math.Max(lat-latDelta, -90)
	maxLat = math.Min(lat+latDelta, 90)
	minLon = lon - lonDelta
	maxLon = lon + lonDelta
	return minLat, minLon, maxLat, maxLon
}
