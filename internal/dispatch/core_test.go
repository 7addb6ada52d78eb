package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/repository"
	"github.com/hilthontt/ridehail/internal/infrastructure/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emission struct {
	rideID  string
	event   string
	payload any
}

type fakeRooms struct {
	mu      sync.Mutex
	emitted []emission
	joins   map[string][]string
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{joins: map[string][]string{}}
}

func (f *fakeRooms) Join(connID, rideID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins[connID] = append(f.joins[connID], rideID)
	return nil
}

func (f *fakeRooms) Leave(connID, rideID string) {}

func (f *fakeRooms) Unregister(connID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.joins, connID)
	return true
}

func (f *fakeRooms) EmitToRoom(rideID, event string, payload any) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, emission{rideID: rideID, event: event, payload: payload})
	return 1
}

func (f *fakeRooms) EmitToAll(event string, payload any) int {
	return f.EmitToRoom("", event, payload)
}

func (f *fakeRooms) emissions() []emission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emission(nil), f.emitted...)
}

// failingStore fails every call with err, or blocks until the context ends
// when block is set.
type failingStore struct {
	err   error
	block bool
	ride  *domain.Ride
}

func (s *failingStore) wait(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *failingStore) Create(ctx context.Context, ride *domain.Ride) error {
	return s.wait(ctx)
}

func (s *failingStore) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if s.ride != nil {
		return s.ride.Clone(), nil
	}
	return nil, s.wait(ctx)
}

func (s *failingStore) UpdateStatus(ctx context.Context, id string, from, to domain.RideStatus) (*domain.Ride, error) {
	return nil, s.wait(ctx)
}

type recordingPublisher struct {
	created []domain.Ride
	updated []domain.Ride
	err     error
}

func (p *recordingPublisher) PublishRideCreated(ctx context.Context, ride domain.Ride) error {
	p.created = append(p.created, ride)
	return p.err
}

func (p *recordingPublisher) PublishRideUpdated(ctx context.Context, ride domain.Ride) error {
	p.updated = append(p.updated, ride)
	return p.err
}

func newTestCore(t *testing.T, opts Options) *Core {
	t.Helper()
	if opts.Rides == nil {
		opts.Rides = repository.NewRideRepository()
	}
	core, err := New(opts)
	require.NoError(t, err)
	return core
}

func createRide(t *testing.T, core *Core) *domain.Ride {
	t.Helper()
	ride, err := core.CreateRide(context.Background(), domain.NewAddress("Home"), domain.NewAddress("Office"))
	require.NoError(t, err)
	return ride
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{Rooms: newFakeRooms()})
	assert.Error(t, err)

	_, err = New(Options{Rides: repository.NewRideRepository()})
	assert.Error(t, err)
}

func TestCreateRide_PersistsAndBroadcastsOnce(t *testing.T) {
	rooms := newFakeRooms()
	core := newTestCore(t, Options{Rooms: rooms})

	first := createRide(t, core)
	second := createRide(t, core)

	assert.Equal(t, domain.StatusPending, first.Status)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	emitted := rooms.emissions()
	require.Len(t, emitted, 2)
	assert.Equal(t, ws.NewRide, emitted[0].event)
	assert.Equal(t, first.ID, emitted[0].payload.(*domain.Ride).ID)
}

func TestCreateRide_InvalidLocation(t *testing.T) {
	rooms := newFakeRooms()
	core := newTestCore(t, Options{Rooms: rooms})

	_, err := core.CreateRide(context.Background(), domain.Location{}, domain.NewAddress("Office"))
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
	assert.Empty(t, rooms.emissions())
}

func TestCreateRide_StoreFailureSkipsEmit(t *testing.T) {
	rooms := newFakeRooms()
	publisher := &recordingPublisher{}
	core := newTestCore(t, Options{
		Rides:     &failingStore{err: errors.New("disk full")},
		Rooms:     rooms,
		Publisher: publisher,
	})

	_, err := core.CreateRide(context.Background(), domain.NewAddress("A"), domain.NewAddress("B"))
	assert.ErrorIs(t, err, domain.ErrStoreWrite)
	assert.Empty(t, rooms.emissions())
	assert.Empty(t, publisher.created)
}

func TestCreateRide_StoreTimeout(t *testing.T) {
	rooms := newFakeRooms()
	core := newTestCore(t, Options{
		Rides:        &failingStore{block: true},
		Rooms:        rooms,
		StoreTimeout: 20 * time.Millisecond,
	})

	start := time.Now()
	_, err := core.CreateRide(context.Background(), domain.NewAddress("A"), domain.NewAddress("B"))

	assert.ErrorIs(t, err, domain.ErrStoreWrite)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, rooms.emissions())
}

func TestCreateRide_PublishFailureIsNotFatal(t *testing.T) {
	rooms := newFakeRooms()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	core := newTestCore(t, Options{Rooms: rooms, Publisher: publisher})

	ride := createRide(t, core)

	require.Len(t, publisher.created, 1)
	assert.Equal(t, ride.ID, publisher.created[0].ID)
	assert.Len(t, rooms.emissions(), 1)
}

func TestUpdateRideStatus_EmitsToRoom(t *testing.T) {
	rooms := newFakeRooms()
	publisher := &recordingPublisher{}
	core := newTestCore(t, Options{Rooms: rooms, Publisher: publisher, EnforceTransitions: true})
	ride := createRide(t, core)

	updated, err := core.UpdateRideStatus(context.Background(), ride.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, updated.Status)

	emitted := rooms.emissions()
	require.Len(t, emitted, 2)
	assert.Equal(t, ws.RideUpdate, emitted[1].event)
	assert.Equal(t, ride.ID, emitted[1].rideID)
	assert.Equal(t, domain.StatusAccepted, emitted[1].payload.(*domain.Ride).Status)

	require.Len(t, publisher.updated, 1)
	assert.Equal(t, domain.StatusAccepted, publisher.updated[0].Status)
}

func TestUpdateRideStatus_UnknownRide(t *testing.T) {
	rooms := newFakeRooms()
	core := newTestCore(t, Options{Rooms: rooms})

	_, err := core.UpdateRideStatus(context.Background(), "does-not-exist", "accepted")
	assert.ErrorIs(t, err, domain.ErrRideNotFound)
	assert.Empty(t, rooms.emissions())
}

func TestUpdateRideStatus_UnknownStatus(t *testing.T) {
	rooms := newFakeRooms()
	core := newTestCore(t, Options{Rooms: rooms})
	ride := createRide(t, core)

	_, err := core.UpdateRideStatus(context.Background(), ride.ID, "teleported")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Len(t, rooms.emissions(), 1, "only the creation broadcast")
}

func TestUpdateRideStatus_TransitionEnforcement(t *testing.T) {
	t.Run("enforced", func(t *testing.T) {
		rooms := newFakeRooms()
		core := newTestCore(t, Options{Rooms: rooms, EnforceTransitions: true})
		ride := createRide(t, core)

		_, err := core.UpdateRideStatus(context.Background(), ride.ID, "completed")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Len(t, rooms.emissions(), 1)
	})

	t.Run("permissive", func(t *testing.T) {
		rooms := newFakeRooms()
		core := newTestCore(t, Options{Rooms: rooms, EnforceTransitions: false})
		ride := createRide(t, core)

		updated, err := core.UpdateRideStatus(context.Background(), ride.ID, "completed")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, updated.Status)

		updated, err = core.UpdateRideStatus(context.Background(), ride.ID, "pending")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, updated.Status)
		assert.Len(t, rooms.emissions(), 3)
	})
}

func TestUpdateRideStatus_StoreFailures(t *testing.T) {
	pending := &domain.Ride{ID: "r-1", Status: domain.StatusPending}

	cases := []struct {
		name  string
		store *failingStore
		want  error
	}{
		{"read failure", &failingStore{err: errors.New("connection reset")}, domain.ErrStoreRead},
		{"write failure", &failingStore{err: errors.New("connection reset"), ride: pending}, domain.ErrStoreWrite},
		{"write timeout", &failingStore{block: true, ride: pending}, domain.ErrStoreWrite},
		{"conflict", &failingStore{err: domain.ErrStatusConflict, ride: pending}, domain.ErrStatusConflict},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			rooms := newFakeRooms()
			core := newTestCore(t, Options{
				Rides:              tt.store,
				Rooms:              rooms,
				StoreTimeout:       20 * time.Millisecond,
				EnforceTransitions: true,
			})

			_, err := core.UpdateRideStatus(context.Background(), "r-1", "accepted")
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, rooms.emissions())
		})
	}
}

type testConn struct {
	id string

	mu   sync.Mutex
	msgs []*ws.WSMessage
}

func (c *testConn) ID() string { return c.id }

func (c *testConn) Send(msg *ws.WSMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return true
}

func (c *testConn) Close() {}

func (c *testConn) count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if m.Type == event {
			n++
		}
	}
	return n
}

func TestCore_WithRegistry(t *testing.T) {
	registry := ws.NewRegistry(nil)
	core := newTestCore(t, Options{Rooms: registry, EnforceTransitions: true})

	rider, driver, dashboard := &testConn{id: "rider"}, &testConn{id: "driver"}, &testConn{id: "dashboard"}
	for _, c := range []*testConn{rider, driver, dashboard} {
		require.NoError(t, registry.Register(c))
	}

	ride := createRide(t, core)
	assert.Equal(t, 1, dashboard.count(ws.NewRide))
	assert.Equal(t, 1, rider.count(ws.NewRide))

	require.NoError(t, core.HandleJoin("rider", ride.ID))
	require.NoError(t, core.HandleJoin("rider", ride.ID))
	require.NoError(t, core.HandleJoin("driver", ride.ID))
	assert.ErrorIs(t, core.HandleJoin("stranger", ride.ID), ws.ErrClientNotFound)

	_, err := core.UpdateRideStatus(context.Background(), ride.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, 1, rider.count(ws.RideUpdate))
	assert.Equal(t, 1, driver.count(ws.RideUpdate))
	assert.Equal(t, 0, dashboard.count(ws.RideUpdate))

	core.HandleDisconnect("driver")
	core.HandleLeave("rider", ride.ID)
	core.HandleLeave("rider", ride.ID)

	_, err = core.UpdateRideStatus(context.Background(), ride.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, 1, rider.count(ws.RideUpdate))
	assert.Equal(t, 1, driver.count(ws.RideUpdate))
	assert.Equal(t, 0, registry.RoomCount())
}

func TestGetRide(t *testing.T) {
	core := newTestCore(t, Options{Rooms: newFakeRooms()})
	ride := createRide(t, core)

	got, err := core.GetRide(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.ID, got.ID)

	_, err = core.GetRide(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRideNotFound)

	failing := newTestCore(t, Options{Rides: &failingStore{err: errors.New("boom")}, Rooms: newFakeRooms()})
	_, err = failing.GetRide(context.Background(), "r-1")
	assert.ErrorIs(t, err, domain.ErrStoreRead)
}
