package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/ridehail/internal/domain"
)

// rideRepository keeps rides in process memory. Stored values are cloned on
// the way in and out so callers never share pointers with the map.
type rideRepository struct {
	rides map[string]*domain.Ride
	mu    *sync.RWMutex
}

func NewRideRepository() domain.RideRepository {
	return &rideRepository{
		rides: make(map[string]*domain.Ride),
		mu:    &sync.RWMutex{},
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if ride == nil {
		return domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	if ride.ID == "" {
		ride.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = now
	}
	if ride.UpdatedAt.IsZero() {
		ride.UpdatedAt = ride.CreatedAt
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rides[ride.ID]; exists {
		return fmt.Errorf("%w: duplicate ride id %s", domain.ErrStoreWrite, ride.ID)
	}
	r.rides[ride.ID] = ride.Clone()

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, domain.ErrRideNotFound
	}

	return ride.Clone(), nil
}

func (r *rideRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RideStatus) (*domain.Ride, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ride, ok := r.rides[id]
	if !ok {
		return nil, domain.ErrRideNotFound
	}
	if from != "" && ride.Status != from {
		return nil, domain.ErrStatusConflict
	}

	ride.Status = to
	ride.UpdatedAt = time.Now().UTC()

	return ride.Clone(), nil
}
