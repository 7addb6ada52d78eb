package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RideEventType string

const (
	EventRideCreated       RideEventType = "ride_created"
	EventRideStatusChanged RideEventType = "ride_status_changed"
)

type RideAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RideID    string         `bson:"ride_id" json:"rideId"`
	EventType RideEventType  `bson:"event_type" json:"eventType"`
	Status    RideStatus     `bson:"status" json:"status"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type RideAuditRepository interface {
	Log(ctx context.Context, log *RideAuditLog) error
	GetByRideID(ctx context.Context, rideID string, limit int) ([]RideAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewRideCreatedLog(ride Ride) *RideAuditLog {
	return &RideAuditLog{
		ID:        uuid.NewString(),
		RideID:    ride.ID,
		EventType: EventRideCreated,
		Status:    ride.Status,
		Timestamp: time.Now().UTC(),
		Metadata: map[string]any{
			"pickup":  locationLabel(ride.Pickup),
			"dropoff": locationLabel(ride.Dropoff),
		},
	}
}

func NewRideStatusChangedLog(ride Ride) *RideAuditLog {
	return &RideAuditLog{
		ID:        uuid.NewString(),
		RideID:    ride.ID,
		EventType: EventRideStatusChanged,
		Status:    ride.Status,
		Timestamp: time.Now().UTC(),
		Metadata: map[string]any{
			"terminal": ride.Status.IsTerminal(),
		},
	}
}

func locationLabel(l Location) any {
	if c, ok := l.Coordinate(); ok {
		return map[string]any{
			"address":   l.Address,
			"latitude":  c.Latitude,
			"longitude": c.Longitude,
		}
	}
	return l.Address
}
