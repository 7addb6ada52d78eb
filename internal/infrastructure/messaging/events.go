package messaging

import "github.com/hilthontt/ridehail/internal/domain"

const (
	RideEventsQueue = "ride_events"
	DeadLetterQueue = "dead_letter_queue"
)

type RideEventData struct {
	Ride domain.Ride `json:"ride"`
}
