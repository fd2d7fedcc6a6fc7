package models

import "time"

// Geolocation is the structured position sample mobile clients attach
// to alerts and checkpoints. Persisted as a JSON column.
type Geolocation struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Heading   float64   `json:"heading,omitempty"`
	Speed     float64   `json:"speed,omitempty"`
	Battery   float64   `json:"battery,omitempty"`
	Network   string    `json:"network,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type GeolocationList []Geolocation

// Valid rejects the null island and out-of-range coordinates.
func (g Geolocation) Valid() bool {
	if g.Latitude == 0 && g.Longitude == 0 {
		return false
	}
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}
