package service

import (
	"context"
	"sort"
	"time"

	locationsrepo "gateless/internal/locations/repository"
	"gateless/pkg/config"
	apperrors "gateless/pkg/errors"
	"gateless/pkg/model"
)

const maxNearbyLocations = 100

// OverlapCounter reports how many live bookings intersect a half-open
// window at one location. Pending bookings count; cancelled never do.
type OverlapCounter interface {
	CountOverlapping(ctx context.Context, locationID string, windowStart, windowEnd time.Time) (int64, error)
}

type AvailabilityService interface {
	Search(ctx context.Context, lat, lng, radiusMeters float64, windowStart, windowEnd time.Time) ([]*model.LocationAvailability, error)
}

type availabilityService struct {
	locations locationsrepo.LocationRepository
	bookings  OverlapCounter
	cfg       *config.Config
}

func NewAvailabilityService(
	locations locationsrepo.LocationRepository,
	bookings OverlapCounter,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		locations: locations,
		bookings:  bookings,
		cfg:       cfg,
	}
}

// Search returns every location within radiusMeters of the point, annotated
// with the booking pressure for [windowStart, windowEnd). An empty result is
// a successful answer, not an error.
func (s *availabilityService) Search(ctx context.Context, lat, lng, radiusMeters float64, windowStart, windowEnd time.Time) ([]*model.LocationAvailability, error) {
	if lat < -90 || lat > 90 {
		return nil, apperrors.InvalidInput("Latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return nil, apperrors.InvalidInput("Longitude must be between -180 and 180")
	}
	if !windowEnd.After(windowStart) {
		return nil, apperrors.InvalidInput("Search window end must be after its start")
	}

	if radiusMeters <= 0 || radiusMeters > s.cfg.MaxSearchRadius {
		radiusMeters = s.cfg.MaxSearchRadius
	}

	nearby, err := s.locations.FindNearby(ctx, lng, lat, radiusMeters, maxNearbyLocations)
	if err != nil {
		s.cfg.Log.Error("Failed to search nearby locations",
			"lat", lat,
			"lng", lng,
			"radius_m", radiusMeters,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search nearby locations", err)
	}

	results := make([]*model.LocationAvailability, 0, len(nearby))
	for _, loc := range nearby {
		booked, err := s.bookings.CountOverlapping(ctx, loc.ID, windowStart, windowEnd)
		if err != nil {
			s.cfg.Log.Error("Failed to count overlapping bookings",
				"location_id", loc.ID,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to compute availability", err)
		}

		// Remaining can go negative when a lot is overbooked under the
		// best effort policy; callers see the real deficit.
		remaining := int64(loc.NumberOfSpots) - booked

		status := loc.Status
		if remaining <= 0 {
			status = config.Full
		}

		results = append(results, &model.LocationAvailability{
			Location:       loc.ParkingLocation,
			DistanceMeters: loc.DistanceMeters,
			BookedCount:    booked,
			RemainingSpots: remaining,
			Status:         status,
		})
	}

	// Geo distance alone can tie; break ties on location id so the same
	// query always yields the same order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceMeters != results[j].DistanceMeters {
			return results[i].DistanceMeters < results[j].DistanceMeters
		}
		return results[i].Location.ID < results[j].Location.ID
	})

	s.cfg.Log.Debug("Availability search completed",
		"lat", lat,
		"lng", lng,
		"radius_m", radiusMeters,
		"results", len(results),
	)
	return results, nil
}
