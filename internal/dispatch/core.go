// Package dispatch routes ride lifecycle events from the store to the rooms
// that care about them.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/metrics"
	"github.com/hilthontt/ridehail/internal/infrastructure/tracing"
	"github.com/hilthontt/ridehail/internal/infrastructure/ws"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultStoreTimeout = 5 * time.Second

// Rooms is the part of *ws.Registry the core drives.
type Rooms interface {
	Join(connID, rideID string) error
	Leave(connID, rideID string)
	Unregister(connID string) bool
	EmitToRoom(rideID, event string, payload any) int
	EmitToAll(event string, payload any) int
}

// EventPublisher forwards committed ride changes to other services.
type EventPublisher interface {
	PublishRideCreated(ctx context.Context, ride domain.Ride) error
	PublishRideUpdated(ctx context.Context, ride domain.Ride) error
}

type Options struct {
	Rides     domain.RideRepository
	Rooms     Rooms
	Publisher EventPublisher // optional
	Logger    logging.Logger

	// StoreTimeout bounds every store call. Zero means DefaultStoreTimeout.
	StoreTimeout time.Duration

	// EnforceTransitions rejects status changes the ride lifecycle does not
	// allow and makes the write conditional on the status that was read.
	EnforceTransitions bool
}

type Core struct {
	rides              domain.RideRepository
	rooms              Rooms
	publisher          EventPublisher
	logger             logging.Logger
	tracer             trace.Tracer
	storeTimeout       time.Duration
	enforceTransitions bool
}

func New(opts Options) (*Core, error) {
	if opts.Rides == nil {
		return nil, errors.New("dispatch: ride repository is required")
	}
	if opts.Rooms == nil {
		return nil, errors.New("dispatch: rooms are required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}

	return &Core{
		rides:              opts.Rides,
		rooms:              opts.Rooms,
		publisher:          opts.Publisher,
		logger:             opts.Logger,
		tracer:             tracing.GetTracer("dispatch"),
		storeTimeout:       opts.StoreTimeout,
		enforceTransitions: opts.EnforceTransitions,
	}, nil
}

// CreateRide persists a pending ride and announces it to every connection.
// Nothing is emitted unless the write succeeded.
func (c *Core) CreateRide(ctx context.Context, pickup, dropoff domain.Location) (*domain.Ride, error) {
	ctx, span := c.tracer.Start(ctx, "dispatch.CreateRide")
	defer span.End()

	ride, err := domain.NewRide(pickup, dropoff)
	if err != nil {
		metrics.RecordRideCreated("invalid")
		return nil, c.fail(span, err)
	}

	storeCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	start := time.Now()
	err = c.rides.Create(storeCtx, ride)
	cancel()
	metrics.RecordStoreOperation("create", time.Since(start), err == nil)
	if err != nil {
		metrics.RecordRideCreated("store_error")
		c.logger.Error(logging.Dispatch, logging.Insert, "failed to persist ride", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return nil, c.fail(span, wrapStoreError(domain.ErrStoreWrite, err))
	}

	span.SetAttributes(attribute.String("ride.id", ride.ID))

	delivered := c.rooms.EmitToAll(ws.NewRide, ride.Clone())
	metrics.RecordRideCreated("ok")
	c.logger.Info(logging.Dispatch, logging.Emit, "ride created", map[logging.ExtraKey]any{
		logging.RideID:    ride.ID,
		logging.Delivered: delivered,
	})

	if c.publisher != nil {
		if err := c.publisher.PublishRideCreated(ctx, *ride.Clone()); err != nil {
			c.logger.Warn(logging.RabbitMQ, logging.Publish, "failed to publish ride created", map[logging.ExtraKey]any{
				logging.RideID:       ride.ID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	return ride, nil
}

// UpdateRideStatus applies a status change and tells the ride's room. The
// room hears nothing when the lookup, validation or write fails.
func (c *Core) UpdateRideStatus(ctx context.Context, rideID, status string) (*domain.Ride, error) {
	ctx, span := c.tracer.Start(ctx, "dispatch.UpdateRideStatus", trace.WithAttributes(
		attribute.String("ride.id", rideID),
		attribute.String("ride.status", status),
	))
	defer span.End()

	next, err := domain.ParseRideStatus(status)
	if err != nil {
		metrics.RecordStatusUpdate("unknown", "invalid_status")
		return nil, c.fail(span, err)
	}

	readCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	start := time.Now()
	current, err := c.rides.GetByID(readCtx, rideID)
	cancel()
	metrics.RecordStoreOperation("get", time.Since(start), err == nil || errors.Is(err, domain.ErrRideNotFound))
	if err != nil {
		if errors.Is(err, domain.ErrRideNotFound) {
			metrics.RecordStatusUpdate(next.String(), "not_found")
			return nil, c.fail(span, err)
		}
		metrics.RecordStatusUpdate(next.String(), "store_error")
		return nil, c.fail(span, wrapStoreError(domain.ErrStoreRead, err))
	}

	var from domain.RideStatus
	if c.enforceTransitions {
		if !current.Status.CanTransitionTo(next) {
			metrics.RecordStatusUpdate(next.String(), "invalid_transition")
			return nil, c.fail(span, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next))
		}
		from = current.Status
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	start = time.Now()
	updated, err := c.rides.UpdateStatus(writeCtx, rideID, from, next)
	cancel()
	metrics.RecordStoreOperation("update_status", time.Since(start), err == nil)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRideNotFound):
			metrics.RecordStatusUpdate(next.String(), "not_found")
			return nil, c.fail(span, err)
		case errors.Is(err, domain.ErrStatusConflict):
			metrics.RecordStatusUpdate(next.String(), "conflict")
			return nil, c.fail(span, err)
		}
		metrics.RecordStatusUpdate(next.String(), "store_error")
		c.logger.Error(logging.Dispatch, logging.Update, "failed to persist ride status", map[logging.ExtraKey]any{
			logging.RideID:       rideID,
			logging.Status:       next.String(),
			logging.ErrorMessage: err.Error(),
		})
		return nil, c.fail(span, wrapStoreError(domain.ErrStoreWrite, err))
	}

	delivered := c.rooms.EmitToRoom(rideID, ws.RideUpdate, updated.Clone())
	metrics.RecordStatusUpdate(next.String(), "ok")
	c.logger.Info(logging.Dispatch, logging.Emit, "ride status updated", map[logging.ExtraKey]any{
		logging.RideID:    rideID,
		logging.Status:    next.String(),
		logging.Delivered: delivered,
	})

	if c.publisher != nil {
		if err := c.publisher.PublishRideUpdated(ctx, *updated.Clone()); err != nil {
			c.logger.Warn(logging.RabbitMQ, logging.Publish, "failed to publish ride updated", map[logging.ExtraKey]any{
				logging.RideID:       rideID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	return updated, nil
}

func (c *Core) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	ctx, span := c.tracer.Start(ctx, "dispatch.GetRide", trace.WithAttributes(
		attribute.String("ride.id", rideID),
	))
	defer span.End()

	readCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()

	ride, err := c.rides.GetByID(readCtx, rideID)
	if err != nil {
		if errors.Is(err, domain.ErrRideNotFound) {
			return nil, err
		}
		return nil, c.fail(span, wrapStoreError(domain.ErrStoreRead, err))
	}
	return ride, nil
}

// HandleJoin subscribes a connection to a ride's room. The ride need not exist.
func (c *Core) HandleJoin(connID, rideID string) error {
	if err := c.rooms.Join(connID, rideID); err != nil {
		return err
	}

	c.logger.Debug(logging.WebSocket, logging.Join, "joined ride room", map[logging.ExtraKey]any{
		logging.ConnID: connID,
		logging.RideID: rideID,
	})
	return nil
}

func (c *Core) HandleLeave(connID, rideID string) {
	c.rooms.Leave(connID, rideID)
}

// HandleDisconnect removes the connection from every room before returning.
func (c *Core) HandleDisconnect(connID string) {
	c.rooms.Unregister(connID)
}

func (c *Core) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func wrapStoreError(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
