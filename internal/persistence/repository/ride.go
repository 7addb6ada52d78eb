package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type locationDocument struct {
	Address   string   `bson:"address,omitempty"`
	Latitude  *float64 `bson:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty"`
}

type rideDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Pickup    locationDocument   `bson:"pickup"`
	Dropoff   locationDocument   `bson:"dropoff"`
	Status    domain.RideStatus  `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func newRideDocument(ride *domain.Ride) rideDocument {
	return rideDocument{
		Pickup:    locationDocument(ride.Pickup),
		Dropoff:   locationDocument(ride.Dropoff),
		Status:    ride.Status,
		CreatedAt: ride.CreatedAt,
		UpdatedAt: ride.UpdatedAt,
	}
}

func (d rideDocument) toDomain() *domain.Ride {
	return &domain.Ride{
		ID:        d.ID.Hex(),
		Pickup:    domain.Location(d.Pickup),
		Dropoff:   domain.Location(d.Dropoff),
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type rideRepository struct {
	db *mongo.Database
}

func NewRideRepository(db *mongo.Database) domain.RideRepository {
	return &rideRepository{
		db: db,
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if ride == nil {
		return domain.ErrInvalidInput
	}
	collection := r.db.Collection(db.RidesCollection)

	doc := newRideDocument(ride)
	doc.ID = primitive.NewObjectID()

	if _, err := collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	ride.ID = doc.ID.Hex()
	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRideNotFound
	}
	collection := r.db.Collection(db.RidesCollection)

	var doc rideDocument
	if err := collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRideNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}

	return doc.toDomain(), nil
}

func (r *rideRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RideStatus) (*domain.Ride, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRideNotFound
	}
	collection := r.db.Collection(db.RidesCollection)

	filter := bson.M{"_id": oid}
	if from != "" {
		filter["status"] = from
	}
	update := bson.M{
		"$set": bson.M{
			"status":    to,
			"updatedAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc rideDocument
	err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	if from == "" {
		return nil, domain.ErrRideNotFound
	}

	// The guarded update matched nothing: either the ride is gone or its
	// status moved on.
	n, err := collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	if n == 0 {
		return nil, domain.ErrRideNotFound
	}
	return nil, domain.ErrStatusConflict
}

func (r *rideRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.RidesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
