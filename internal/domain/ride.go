package domain

import (
	"context"
	"fmt"
	"time"
)

type Ride struct {
	ID        string     `json:"_id"`
	Pickup    Location   `json:"pickup"`
	Dropoff   Location   `json:"dropoff"`
	Status    RideStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RideRepository is the ride store. Create assigns the identifier.
// UpdateStatus applies `to` only while the stored status equals `from`;
// an empty `from` updates unconditionally (last write wins).
type RideRepository interface {
	Create(ctx context.Context, ride *Ride) error
	GetByID(ctx context.Context, id string) (*Ride, error)
	UpdateStatus(ctx context.Context, id string, from, to RideStatus) (*Ride, error)
}

func NewRide(pickup, dropoff Location) (*Ride, error) {
	if err := pickup.Validate(); err != nil {
		return nil, fmt.Errorf("pickup: %w", err)
	}
	if err := dropoff.Validate(); err != nil {
		return nil, fmt.Errorf("dropoff: %w", err)
	}

	now := time.Now().UTC()

	return &Ride{
		Pickup:    pickup,
		Dropoff:   dropoff,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Clone returns a copy that shares no pointers with r.
func (r *Ride) Clone() *Ride {
	if r == nil {
		return nil
	}
	cpy := *r
	cpy.Pickup = r.Pickup.clone()
	cpy.Dropoff = r.Dropoff.clone()
	return &cpy
}

func (l Location) clone() Location {
	cpy := Location{Address: l.Address}
	if l.Latitude != nil {
		lat := *l.Latitude
		cpy.Latitude = &lat
	}
	if l.Longitude != nil {
		lon := *l.Longitude
		cpy.Longitude = &lon
	}
	return cpy
}
