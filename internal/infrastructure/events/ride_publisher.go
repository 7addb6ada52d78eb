package events

import (
	"context"
	"encoding/json"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/contracts"
	"github.com/hilthontt/ridehail/internal/infrastructure/messaging"
	"github.com/hilthontt/ridehail/internal/infrastructure/metrics"
)

// MessagePublisher is satisfied by *messaging.RabbitMQ.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error
}

type RidePublisher struct {
	rabbitmq MessagePublisher
}

func NewRidePublisher(rabbitmq MessagePublisher) *RidePublisher {
	return &RidePublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RidePublisher) PublishRideCreated(ctx context.Context, ride domain.Ride) error {
	return p.publish(ctx, contracts.EventRideCreated, ride)
}

func (p *RidePublisher) PublishRideUpdated(ctx context.Context, ride domain.Ride) error {
	return p.publish(ctx, contracts.EventRideUpdated, ride)
}

func (p *RidePublisher) publish(ctx context.Context, routingKey string, ride domain.Ride) error {
	rideEventJSON, err := json.Marshal(messaging.RideEventData{Ride: ride})
	if err != nil {
		return err
	}

	err = p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RideID: ride.ID,
		Data:   rideEventJSON,
	})
	metrics.RecordPublish(routingKey, err == nil)
	return err
}
