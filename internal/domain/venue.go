package domain

import "time"

// Venue is a playable court or field with geocoded coordinates.
type Venue struct {
	ID        string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	// Sport is the free-text label entered by the administrator,
	// e.g. "Fútbol", "Baby-Futbol 5", "Multicancha".
	Sport     string
	CreatedAt time.Time
}
