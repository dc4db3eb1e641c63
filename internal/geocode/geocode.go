// Package geocode resolves free-text addresses to coordinates.
package geocode

import "context"

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves an address to coordinates. Implementations normalize
// every failure mode (transport errors, empty results, bad payloads) to
// domain.ErrGeocodeFailed so callers see a single error kind.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}
