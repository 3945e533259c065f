package validator

import (
	"testing"

	"gateless/pkg/logger"
	"gateless/pkg/model"
)

func newTestValidator() *LocationValidator {
	return NewLocationValidator(logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT}))
}

func validLocation() *model.ParkingLocation {
	return &model.ParkingLocation{
		Name:          "New Road Parking",
		Address:       "New Road, Kathmandu",
		Position:      model.NewGeoPoint(85.3240, 27.7172),
		NumberOfSpots: 20,
		PricePerHour:  50,
	}
}

func TestValidateLocation(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		mutate  func(*model.ParkingLocation)
		wantErr bool
	}{
		{"valid", func(l *model.ParkingLocation) {}, false},
		{"missing name", func(l *model.ParkingLocation) { l.Name = "" }, true},
		{"single char name", func(l *model.ParkingLocation) { l.Name = "A" }, true},
		{"missing address", func(l *model.ParkingLocation) { l.Address = "" }, true},
		{"zero spots", func(l *model.ParkingLocation) { l.NumberOfSpots = 0 }, true},
		{"negative price", func(l *model.ParkingLocation) { l.PricePerHour = -1 }, true},
		{"free location", func(l *model.ParkingLocation) { l.PricePerHour = 0 }, false},
		{"wrong geo type", func(l *model.ParkingLocation) { l.Position.Type = "Polygon" }, true},
		{"longitude out of range", func(l *model.ParkingLocation) {
			l.Position = model.NewGeoPoint(181, 27.7172)
		}, true},
		{"latitude out of range", func(l *model.ParkingLocation) {
			l.Position = model.NewGeoPoint(85.3240, 91)
		}, true},
		{"one coordinate", func(l *model.ParkingLocation) {
			l.Position = model.GeoPoint{Type: "Point", Coordinates: []float64{85.3240}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := validLocation()
			tt.mutate(loc)
			err := v.Validate(loc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidateLocationUpdate(t *testing.T) {
	v := newTestValidator()

	spots := 10
	price := -5.0
	badPos := model.GeoPoint{Type: "Point", Coordinates: []float64{200, 0}}

	tests := []struct {
		name    string
		update  *model.ParkingLocationUpdate
		wantErr bool
	}{
		{"empty update", &model.ParkingLocationUpdate{}, false},
		{"spots only", &model.ParkingLocationUpdate{NumberOfSpots: &spots}, false},
		{"negative price", &model.ParkingLocationUpdate{PricePerHour: &price}, true},
		{"bad position", &model.ParkingLocationUpdate{Position: &badPos}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
