package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RideID string `json:"rideId"`
	Data   []byte `json:"data"`
}

// Routing keys - using consistent event/command patterns
const (
	EventRideCreated = "ride.created"
	EventRideUpdated = "ride.updated"
)

// RideEvents lists every routing key bound to the ride events queue.
var RideEvents = []string{EventRideCreated, EventRideUpdated}
