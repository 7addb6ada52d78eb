package rides

import "github.com/hilthontt/ridehail/internal/domain"

// createRideRequest carries the two ends of a trip. Each location is either
// an address string or an object with latitude and longitude.
type createRideRequest struct {
	Pickup  domain.Location `json:"pickup" swaggertype:"object"`  // Pickup address or coordinates
	Dropoff domain.Location `json:"dropoff" swaggertype:"object"` // Dropoff address or coordinates
}

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" example:"40.7128"`   // Degrees north
	Longitude *float64 `json:"longitude" example:"-74.0060"` // Degrees east
}

func (c *coordinateRequest) toDomain() (domain.Coordinate, bool) {
	if c == nil || c.Latitude == nil || c.Longitude == nil {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}, true
}

// fareRequest represents a fare estimate request
type fareRequest struct {
	Pickup  *coordinateRequest `json:"pickup"`
	Dropoff *coordinateRequest `json:"dropoff"`
}

// fareResponse represents the estimated trip
type fareResponse struct {
	Distance float64 `json:"distance" example:"111.19"` // Great-circle distance in kilometres
	Fare     float64 `json:"fare" example:"113.19"`     // Base fare plus the per-kilometre charge
}
