// Package geo provides great-circle math for filtering aircraft around a
// fixed observation point.
//
// All calculations use a spherical-Earth approximation with the WGS84 mean
// radius. That is accurate to well under a kilometer over the distances this
// project cares about (tens of kilometers).
package geo

import "math"

const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusKm is the Earth's radius in kilometers (WGS84 mean radius)
	EarthRadiusKm = 6371.0

	// kmPerDegreeLat is the approximate north-south span of one degree of
	// latitude, used for bounding-box expansion.
	kmPerDegreeLat = 111.0
)

// Point is a position on Earth's surface in decimal degrees.
// Positive latitude = North, positive longitude = East.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Box is a latitude/longitude bounding box.
type Box struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// DistanceKm returns the haversine great-circle distance between two points
// in kilometers.
func DistanceKm(a, b Point) float64 {
	dlat := (b.Latitude - a.Latitude) * DegreesToRadians
	dlon := (b.Longitude - a.Longitude) * DegreesToRadians

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(a.Latitude*DegreesToRadians)*math.Cos(b.Latitude*DegreesToRadians)*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

// BearingDeg returns the initial bearing from one point to another in
// degrees clockwise from true north, normalized to [0, 360).
func BearingDeg(from, to Point) float64 {
	dlon := (to.Longitude - from.Longitude) * DegreesToRadians
	lat1 := from.Latitude * DegreesToRadians
	lat2 := to.Latitude * DegreesToRadians

	x := math.Sin(dlon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)
	deg := math.Atan2(x, y) * RadiansToDegrees
	return math.Mod(deg+360.0, 360.0)
}

// BoundingBox returns a box that fully contains the circle of radiusKm
// around center. The box is a superset of the circle: callers that need the
// true circular filter must still check DistanceKm per candidate.
//
// The longitude delta divides by cos(latitude), so the box degrades near the
// poles where cos approaches zero. This is a known limit of the
// approximation, acceptable at the middle latitudes this project targets.
func BoundingBox(center Point, radiusKm float64) Box {
	latDelta := radiusKm / kmPerDegreeLat
	lonDelta := radiusKm / (kmPerDegreeLat * math.Cos(center.Latitude*DegreesToRadians))
	return Box{
		LatMin: center.Latitude - latDelta,
		LatMax: center.Latitude + latDelta,
		LonMin: center.Longitude - lonDelta,
		LonMax: center.Longitude + lonDelta,
	}
}

// BearingInWindow reports whether a bearing lies inside the window
// [min, max) degrees. Windows may wrap through north: min=300, max=60 covers
// the 120-degree arc centered on north. A zero-width window (min == max)
// matches everything, which is how the "no bearing filter" default behaves.
func BearingInWindow(bearing, min, max float64) bool {
	if min == max {
		return true
	}
	bearing = math.Mod(bearing+360.0, 360.0)
	if min < max {
		return bearing >= min && bearing < max
	}
	// Wraps through 0/360.
	return bearing >= min || bearing < max
}
