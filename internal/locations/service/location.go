package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	locationserrors "gateless/internal/locations/errors"
	"gateless/internal/locations/repository"
	"gateless/internal/locations/validator"
	"gateless/pkg/config"
	apperrors "gateless/pkg/errors"
	"gateless/pkg/model"
)

type LocationService interface {
	Create(ctx context.Context, location *model.ParkingLocation) error
	GetByID(ctx context.Context, id string) (*model.ParkingLocation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLocation, int64, error)
	Update(ctx context.Context, id string, updates *model.ParkingLocationUpdate) error
	ToggleAvailability(ctx context.Context, id string) (config.LocationStatus, error)
	Delete(ctx context.Context, id string) error
}

type locationService struct {
	repo      repository.LocationRepository
	validator *validator.LocationValidator
	cfg       *config.Config
}

func NewLocationService(
	repo repository.LocationRepository,
	validator *validator.LocationValidator,
	cfg *config.Config,
) LocationService {
	return &locationService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *locationService) Create(ctx context.Context, location *model.ParkingLocation) error {
	s.sanitize(location)
	if location.Status == "" {
		location.Status = config.Available
	}

	if err := s.validate(location); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, location); err != nil {
		s.cfg.Log.Error("Failed to create location", "error", err)
		return apperrors.Internal("Failed to create location", err)
	}

	s.cfg.Log.Info("Location created successfully",
		"id", location.ID,
		"name", location.Name,
		"spots", location.NumberOfSpots,
	)
	return nil
}

func (s *locationService) GetByID(ctx context.Context, id string) (*model.ParkingLocation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Location ID cannot be empty")
	}

	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, locationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Location", id)
		}
		if errors.Is(err, locationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid location ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve location", err)
	}

	return location, nil
}

func (s *locationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLocation, int64, error) {
	var count int64
	var locations []*model.ParkingLocation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count locations", "error", errCount)
			errCount = apperrors.Internal("Failed to count locations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		locations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list locations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve locations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return locations, count, nil
}

func (s *locationService) Update(ctx context.Context, id string, updates *model.ParkingLocationUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Location ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Location update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, locationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Location", id)
		}
		s.cfg.Log.Error("Failed to update location", "id", id, "error", err)
		return apperrors.Internal("Failed to update location", err)
	}

	s.cfg.Log.Info("Location updated successfully", "id", id)
	return nil
}

// ToggleAvailability flips a location between available and notavailable.
// Full is never stored; it is derived from live bookings at read time.
func (s *locationService) ToggleAvailability(ctx context.Context, id string) (config.LocationStatus, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	next := config.Available
	if existing.Status == config.Available {
		next = config.NotAvailable
	}

	if err := s.repo.SetStatus(ctx, id, next); err != nil {
		if errors.Is(err, locationserrors.ErrNotFound) {
			return "", apperrors.NotFoundWithID("Location", id)
		}
		s.cfg.Log.Error("Failed to toggle location status", "id", id, "error", err)
		return "", apperrors.Internal("Failed to toggle location status", err)
	}

	s.cfg.Log.Info("Location status toggled",
		"id", id,
		"from", existing.Status,
		"to", next,
	)
	return next, nil
}

func (s *locationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Location ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, locationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Location", id)
		}
		if errors.Is(err, locationserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid location ID format")
		}
		s.cfg.Log.Error("Failed to delete location", "id", id, "error", err)
		return apperrors.Internal("Failed to delete location", err)
	}

	s.cfg.Log.Info("Location deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *locationService) sanitize(l *model.ParkingLocation) {
	l.Name = strings.TrimSpace(l.Name)
	l.Address = strings.TrimSpace(l.Address)
}

func (s *locationService) validate(location *model.ParkingLocation) error {
	if err := s.validator.Validate(location); err != nil {
		s.cfg.Log.Warn("Location validation failed", "error", err)
		return apperrors.Validation("Location validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *locationService) mergeUpdates(existing *model.ParkingLocation, updates *model.ParkingLocationUpdate) *model.ParkingLocation {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Address != "" {
		merged.Address = updates.Address
	}
	if updates.Position != nil {
		merged.Position = *updates.Position
	}
	if updates.NumberOfSpots != nil {
		merged.NumberOfSpots = *updates.NumberOfSpots
	}
	if updates.PricePerHour != nil {
		merged.PricePerHour = *updates.PricePerHour
	}

	return &merged
}
