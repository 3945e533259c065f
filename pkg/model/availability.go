package model

import "gateless/pkg/config"

// LocationAvailability annotates a location with the booking pressure for a
// requested window. Status degrades to Full when no spots remain; the
// persisted operator status is never touched by this computation.
type LocationAvailability struct {
	Location       ParkingLocation       `json:"location"`
	DistanceMeters float64               `json:"distance_meters"`
	BookedCount    int64                 `json:"booked_count"`
	RemainingSpots int64                 `json:"remaining_spots"`
	Status         config.LocationStatus `json:"status"`
}
