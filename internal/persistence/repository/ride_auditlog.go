package repository

import (
	"context"
	"time"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideAuditLogRepository struct {
	db *mongo.Database
}

func NewRideAuditLogRepository(db *mongo.Database) domain.RideAuditRepository {
	return &rideAuditLogRepository{
		db: db,
	}
}

func (r *rideAuditLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) error {
	collection := r.db.Collection(db.RideAuditLogsCollection)

	filter := bson.M{
		"timestamp": bson.M{
			"$lt": before,
		},
	}

	_, err := collection.DeleteMany(ctx, filter)
	return err
}

func (r *rideAuditLogRepository) GetByRideID(ctx context.Context, rideID string, limit int) ([]domain.RideAuditLog, error) {
	collection := r.db.Collection(db.RideAuditLogsCollection)

	filter := bson.M{"ride_id": rideID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.RideAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *rideAuditLogRepository) Log(ctx context.Context, log *domain.RideAuditLog) error {
	if log == nil || log.RideID == "" {
		return domain.ErrInvalidInput
	}
	collection := r.db.Collection(db.RideAuditLogsCollection)

	_, err := collection.InsertOne(ctx, log)
	return err
}

func (r *rideAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.RideAuditLogsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "ride_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(7776000), // 90 days TTL
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
