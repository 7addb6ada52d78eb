package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/contracts"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

// MessageConsumer is satisfied by *messaging.RabbitMQ.
type MessageConsumer interface {
	ConsumeMessages(ctx context.Context, queueName string, handler messaging.MessageHandler) error
}

// RideConsumer turns ride events into audit log entries.
type RideConsumer struct {
	rabbitmq MessageConsumer
	auditLog domain.RideAuditRepository
	logger   logging.Logger
}

func NewRideConsumer(rabbitmq MessageConsumer, auditLog domain.RideAuditRepository, logger logging.Logger) *RideConsumer {
	return &RideConsumer{
		rabbitmq: rabbitmq,
		auditLog: auditLog,
		logger:   logger,
	}
}

func (c *RideConsumer) Listen(ctx context.Context) error {
	return c.rabbitmq.ConsumeMessages(ctx, messaging.RideEventsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		return c.Handle(ctx, msg.RoutingKey, msg.Body)
	})
}

func (c *RideConsumer) Handle(ctx context.Context, routingKey string, body []byte) error {
	var message contracts.AmqpMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	var payload messaging.RideEventData
	if err := json.Unmarshal(message.Data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal ride event: %w", err)
	}

	var entry *domain.RideAuditLog
	switch routingKey {
	case contracts.EventRideCreated:
		entry = domain.NewRideCreatedLog(payload.Ride)
	case contracts.EventRideUpdated:
		entry = domain.NewRideStatusChangedLog(payload.Ride)
	default:
		return fmt.Errorf("unknown routing key %q", routingKey)
	}

	if err := c.auditLog.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	c.logger.Debug(logging.RabbitMQ, logging.Consume, "ride event audited", map[logging.ExtraKey]any{
		logging.RideID: payload.Ride.ID,
		logging.Event:  routingKey,
		logging.Status: string(payload.Ride.Status),
	})
	return nil
}
