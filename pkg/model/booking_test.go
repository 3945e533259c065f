package model

import (
	"testing"
	"time"

	"gateless/pkg/config"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
		want         bool
	}{
		{"identical windows", at(0), at(2), at(0), at(2), true},
		{"partial overlap", at(0), at(2), at(1), at(3), true},
		{"contained window", at(0), at(4), at(1), at(2), true},
		{"touching end to start", at(0), at(2), at(2), at(4), false},
		{"touching start to end", at(2), at(4), at(0), at(2), false},
		{"disjoint", at(0), at(1), at(3), at(4), false},
		{"one minute overlap", at(0), at(2), at(2).Add(-time.Minute), at(3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps(%v, %v, %v, %v) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// The predicate is symmetric.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to config.BookingStatus
		want     bool
	}{
		{config.Pending, config.Booked, true},
		{config.Pending, config.Cancelled, true},
		{config.Booked, config.Cancelled, true},
		{config.Booked, config.Pending, false},
		{config.Cancelled, config.Pending, false},
		{config.Cancelled, config.Booked, false},
		{config.Cancelled, config.Cancelled, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStreetAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"New Road, Kathmandu, Nepal", "New Road"},
		{"Thamel Marg", "Thamel Marg"},
		{"", ""},
		{" Durbar Marg , Kathmandu", "Durbar Marg"},
	}

	for _, tt := range tests {
		l := &ParkingLocation{Address: tt.address}
		if got := l.StreetAddress(); got != tt.want {
			t.Errorf("StreetAddress() for %q = %q, want %q", tt.address, got, tt.want)
		}
	}
}
