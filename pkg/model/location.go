package model

import (
	"gateless/pkg/config"
	"strings"
	"time"
)

// GeoPoint is a GeoJSON point as stored in the 2dsphere index.
// Coordinates are [longitude, latitude] per the GeoJSON spec.
type GeoPoint struct {
	Type        string    `json:"type" bson:"type" validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" validate:"required,len=2"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Longitude() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Latitude() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[1]
}

type ParkingLocation struct {
	ID            string                `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string                `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address       string                `json:"address" bson:"address" validate:"required,min=2,max=200"`
	Position      GeoPoint              `json:"position" bson:"position" validate:"required"`
	NumberOfSpots int                   `json:"number_of_spots" bson:"number_of_spots" validate:"required,min=1,max=10000"`
	PricePerHour  float64               `json:"price_per_hour" bson:"price_per_hour" validate:"min=0"`
	Status        config.LocationStatus `json:"status" bson:"status" validate:"omitempty,oneof=available notavailable"`
	CreatedAt     time.Time             `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time             `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// StreetAddress returns the street-level part of the address, used for
// confirmation messages.
func (l *ParkingLocation) StreetAddress() string {
	if l.Address == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(l.Address, ",")[0])
}

// Free reports whether the location charges nothing per hour.
func (l *ParkingLocation) Free() bool {
	return l.PricePerHour == 0
}

type ParkingLocationUpdate struct {
	Name          string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Address       string    `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	Position      *GeoPoint `json:"position,omitempty" validate:"omitempty"`
	NumberOfSpots *int      `json:"number_of_spots,omitempty" validate:"omitempty,min=1,max=10000"`
	PricePerHour  *float64  `json:"price_per_hour,omitempty" validate:"omitempty,min=0"`
}
