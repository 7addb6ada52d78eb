package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/contracts"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	routingKey string
	message    contracts.AmqpMessage
}

type fakeBroker struct {
	messages []published
	err      error
}

func (b *fakeBroker) PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error {
	if b.err != nil {
		return b.err
	}
	b.messages = append(b.messages, published{routingKey: routingKey, message: message})
	return nil
}

func testRide(t *testing.T) domain.Ride {
	t.Helper()
	ride, err := domain.NewRide(domain.NewAddress("Airport"), domain.NewPoint(40.7, -74))
	require.NoError(t, err)
	ride.ID = "ride-42"
	return *ride
}

func TestRidePublisher_RoundTripThroughConsumer(t *testing.T) {
	broker := &fakeBroker{}
	publisher := NewRidePublisher(broker)
	audit := repository.NewRideAuditRepository()
	consumer := NewRideConsumer(nil, audit, logging.NewNopLogger())
	ctx := context.Background()

	ride := testRide(t)
	require.NoError(t, publisher.PublishRideCreated(ctx, ride))
	ride.Status = domain.StatusAccepted
	require.NoError(t, publisher.PublishRideUpdated(ctx, ride))

	require.Len(t, broker.messages, 2)
	assert.Equal(t, contracts.EventRideCreated, broker.messages[0].routingKey)
	assert.Equal(t, contracts.EventRideUpdated, broker.messages[1].routingKey)
	assert.Equal(t, "ride-42", broker.messages[0].message.RideID)

	for _, m := range broker.messages {
		body, err := jsonBody(m.message)
		require.NoError(t, err)
		require.NoError(t, consumer.Handle(ctx, m.routingKey, body))
	}

	logs, err := audit.GetByRideID(ctx, "ride-42", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	types := []domain.RideEventType{logs[0].EventType, logs[1].EventType}
	assert.ElementsMatch(t, []domain.RideEventType{domain.EventRideCreated, domain.EventRideStatusChanged}, types)
}

func TestRidePublisher_PropagatesBrokerError(t *testing.T) {
	broker := &fakeBroker{err: errors.New("channel closed")}

	err := NewRidePublisher(broker).PublishRideCreated(context.Background(), testRide(t))
	assert.EqualError(t, err, "channel closed")
}

func TestRideConsumer_RejectsBadInput(t *testing.T) {
	consumer := NewRideConsumer(nil, repository.NewRideAuditRepository(), logging.NewNopLogger())
	ctx := context.Background()

	assert.Error(t, consumer.Handle(ctx, contracts.EventRideCreated, []byte("{")))

	body, err := jsonBody(contracts.AmqpMessage{RideID: "x", Data: []byte(`{"ride":{"_id":"x"}}`)})
	require.NoError(t, err)
	assert.Error(t, consumer.Handle(ctx, "ride.exploded", body))
}

func jsonBody(m contracts.AmqpMessage) ([]byte, error) {
	return json.Marshal(m)
}
