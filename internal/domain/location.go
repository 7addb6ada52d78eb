package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Location is either a free-form address or a coordinate pair, optionally
// labelled with an address. A bare address marshals back to a JSON string.
type Location struct {
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type locationObject Location

func NewAddress(address string) Location {
	return Location{Address: strings.TrimSpace(address)}
}

func NewPoint(lat, lon float64) Location {
	return Location{Latitude: &lat, Longitude: &lon}
}

func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = Location{}
		return nil
	}

	if data[0] == '"' {
		var address string
		if err := json.Unmarshal(data, &address); err != nil {
			return err
		}
		*l = NewAddress(address)
		return nil
	}

	var obj locationObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	obj.Address = strings.TrimSpace(obj.Address)
	*l = Location(obj)
	return nil
}

func (l Location) MarshalJSON() ([]byte, error) {
	if !l.HasCoordinates() {
		return json.Marshal(l.Address)
	}
	return json.Marshal(locationObject(l))
}

func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

func (l Location) IsZero() bool {
	return l.Address == "" && l.Latitude == nil && l.Longitude == nil
}

func (l Location) Coordinate() (Coordinate, bool) {
	if !l.HasCoordinates() {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *l.Latitude, Longitude: *l.Longitude}, true
}

func (l Location) Validate() error {
	if l.IsZero() {
		return ErrInvalidLocation
	}
	if (l.Latitude == nil) != (l.Longitude == nil) {
		return ErrInvalidLocation
	}
	if l.HasCoordinates() && (!isFinite(*l.Latitude) || !isFinite(*l.Longitude)) {
		return ErrInvalidLocation
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
