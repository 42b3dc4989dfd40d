// Package opensky provides a client for the OpenSky Network state-vector
// API, including its OAuth2 client-credentials token flow.
//
// API Documentation: https://openskynetwork.github.io/opensky-api/
// Rate Limit: authenticated accounts get 4000 requests/month on the free
// tier, which is why the pipeline polls on a fixed 30s cadence.
package opensky

import (
	"math"
	"time"
)

const (
	// DefaultBaseURL is the OpenSky Network REST API root
	DefaultBaseURL = "https://opensky-network.org"

	// DefaultTokenURL is the OpenSky OAuth2 client-credentials token endpoint
	DefaultTokenURL = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"

	// DefaultTimeout for API requests
	DefaultTimeout = 15 * time.Second

	// minStateFields is the minimum element count of one positional state
	// array; shorter elements are dropped. Extra trailing fields are ignored.
	minStateFields = 17
)

// StateVector is one aircraft snapshot from the /states/all response.
// Numeric fields reported as null on the wire carry NaN; absent timestamps
// carry 0. A StateVector with NaN Latitude or Longitude is never returned
// by the client.
type StateVector struct {
	// ICAO24 is the unique 24-bit transponder address, stable per airframe
	ICAO24 string

	// Callsign is the broadcast flight identifier, trimmed; may be empty
	Callsign string

	// OriginCountry is the country the aircraft is registered in
	OriginCountry string

	// TimePosition is the Unix timestamp of the last position report (0 = absent)
	TimePosition int64

	// LastContact is the Unix timestamp of the last received message (0 = absent)
	LastContact int64

	// Longitude in decimal degrees (NaN = absent)
	Longitude float64

	// Latitude in decimal degrees (NaN = absent)
	Latitude float64

	// BaroAltitude is the barometric altitude in meters (NaN = absent)
	BaroAltitude float64

	// OnGround reports a surface position
	OnGround bool

	// Velocity is the ground speed in m/s (NaN = absent)
	Velocity float64

	// Heading is the track in degrees from north (NaN = absent)
	Heading float64

	// VerticalRate in m/s, positive climbing (NaN = absent)
	VerticalRate float64

	// Sensors is the receiving sensor mask (0 = absent)
	Sensors int64

	// GeoAltitude is the geometric altitude in meters (NaN = absent)
	GeoAltitude float64

	// Squawk is the transponder code; may be empty
	Squawk string

	// SPI reports the special-position-indicator flag
	SPI bool

	// PositionSource: 0 = ADS-B, 1 = ASTERIX, 2 = MLAT, 3 = FLARM
	PositionSource int

	// DistanceKm is the great-circle distance from the query center,
	// populated only for records retained by the radius filter
	DistanceKm float64

	// BearingDeg is the initial bearing from the query center in [0, 360),
	// populated only for retained records
	BearingDeg float64
}

// HasPosition reports whether the vector carries usable coordinates.
func (s *StateVector) HasPosition() bool {
	return !math.IsNaN(s.Latitude) && !math.IsNaN(s.Longitude)
}
