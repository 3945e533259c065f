package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	locationserrors "gateless/internal/locations/errors"
	"gateless/pkg/config"
	"gateless/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Parking_locations"
)

// NearbyLocation is a location enriched with the distance computed by the
// $geoNear stage.
type NearbyLocation struct {
	model.ParkingLocation `bson:",inline"`
	DistanceMeters        float64 `bson:"distance_meters"`
}

type LocationRepository interface {
	Create(ctx context.Context, location *model.ParkingLocation) error
	FindByID(ctx context.Context, id string) (*model.ParkingLocation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLocation, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, location *model.ParkingLocation) error
	SetStatus(ctx context.Context, id string, status config.LocationStatus) error
	Delete(ctx context.Context, id string) error
	FindNearby(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int) ([]*NearbyLocation, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoLocationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLocationRepository(cfg *config.Config) LocationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLocationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoLocationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoLocationRepository) Create(ctx context.Context, location *model.ParkingLocation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	location.CreatedAt = now
	location.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		location.ID = oid.Hex()
	}
	return nil
}

func (r *mongoLocationRepository) FindByID(ctx context.Context, id string) (*model.ParkingLocation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", locationserrors.ErrInvalidID, id)
	}

	var location model.ParkingLocation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&location)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, locationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find location: %w", err)
	}

	return &location, nil
}

func (r *mongoLocationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ParkingLocation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*model.ParkingLocation
	if err = cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}

	return locations, nil
}

func (r *mongoLocationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}

	return count, nil
}

func (r *mongoLocationRepository) Update(ctx context.Context, id string, location *model.ParkingLocation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", locationserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":            location.Name,
			"address":         location.Address,
			"position":        location.Position,
			"number_of_spots": location.NumberOfSpots,
			"price_per_hour":  location.PricePerHour,
			"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	if result.MatchedCount == 0 {
		return locationserrors.ErrNotFound
	}

	return nil
}

func (r *mongoLocationRepository) SetStatus(ctx context.Context, id string, status config.LocationStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", locationserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set location status: %w", err)
	}

	if result.MatchedCount == 0 {
		return locationserrors.ErrNotFound
	}

	return nil
}

func (r *mongoLocationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", locationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	if result.DeletedCount == 0 {
		return locationserrors.ErrNotFound
	}

	return nil
}

// FindNearby runs a $geoNear aggregation so every result carries its
// distance from the search point. Ordering by distance alone is not
// deterministic for equidistant locations; callers re-sort.
func (r *mongoLocationRepository) FindNearby(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int) ([]*NearbyLocation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": []float64{lng, lat},
			},
			"key":           "position",
			"distanceField": "distance_meters",
			"maxDistance":   maxDistanceMeters,
			"spherical":     true,
		}}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*NearbyLocation
	if err = cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode nearby locations: %w", err)
	}

	return locations, nil
}

func (r *mongoLocationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "position", Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create 2dsphere index: %w", err)
	}

	return nil
}
