package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRide(t *testing.T) *domain.Ride {
	t.Helper()
	ride, err := domain.NewRide(domain.NewAddress("A"), domain.NewPoint(1, 2))
	require.NoError(t, err)
	return ride
}

func TestRideRepository_CreateAssignsUniqueIDs(t *testing.T) {
	repo := NewRideRepository()
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ride := newRide(t)
		require.NoError(t, repo.Create(ctx, ride))
		require.NotEmpty(t, ride.ID)
		assert.False(t, seen[ride.ID])
		seen[ride.ID] = true
	}
}

func TestRideRepository_GetByIDReturnsCopy(t *testing.T) {
	repo := NewRideRepository()
	ctx := context.Background()
	ride := newRide(t)
	require.NoError(t, repo.Create(ctx, ride))

	got, err := repo.GetByID(ctx, ride.ID)
	require.NoError(t, err)
	got.Status = domain.StatusCompleted
	*got.Dropoff.Latitude = 50

	again, err := repo.GetByID(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
	assert.Equal(t, 1.0, *again.Dropoff.Latitude)
}

func TestRideRepository_GetByIDMissing(t *testing.T) {
	_, err := NewRideRepository().GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrRideNotFound)
}

func TestRideRepository_UpdateStatus(t *testing.T) {
	repo := NewRideRepository()
	ctx := context.Background()
	ride := newRide(t)
	require.NoError(t, repo.Create(ctx, ride))

	updated, err := repo.UpdateStatus(ctx, ride.ID, domain.StatusPending, domain.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(ride.UpdatedAt))

	_, err = repo.UpdateStatus(ctx, ride.ID, domain.StatusPending, domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrStatusConflict)

	updated, err = repo.UpdateStatus(ctx, ride.ID, "", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	_, err = repo.UpdateStatus(ctx, "missing", "", domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrRideNotFound)
}

func TestRideRepository_CompareAndSetHasOneWinner(t *testing.T) {
	repo := NewRideRepository()
	ctx := context.Background()
	ride := newRide(t)
	require.NoError(t, repo.Create(ctx, ride))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateStatus(ctx, ride.ID, domain.StatusPending, domain.StatusAccepted)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else if errors.Is(err, domain.ErrStatusConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 15, conflicts)
}

func TestRideRepository_CancelledContext(t *testing.T) {
	repo := NewRideRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, newRide(t))
	assert.ErrorIs(t, err, domain.ErrStoreWrite)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.GetByID(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrStoreRead)
}

func TestRideAuditRepository(t *testing.T) {
	repo := NewRideAuditRepository()
	ctx := context.Background()
	ride := newRide(t)
	ride.ID = "ride-1"

	first := domain.NewRideCreatedLog(*ride)
	first.Timestamp = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.Log(ctx, first))

	ride.Status = domain.StatusAccepted
	require.NoError(t, repo.Log(ctx, domain.NewRideStatusChangedLog(*ride)))
	assert.ErrorIs(t, repo.Log(ctx, &domain.RideAuditLog{}), domain.ErrInvalidInput)

	logs, err := repo.GetByRideID(ctx, "ride-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.EventRideStatusChanged, logs[0].EventType)

	require.NoError(t, repo.DeleteOlderThan(ctx, time.Now().Add(-time.Hour)))
	logs, err = repo.GetByRideID(ctx, "ride-1", 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
