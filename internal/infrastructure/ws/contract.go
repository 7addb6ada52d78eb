package ws

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrMalformedMessage = errors.New("malformed socket message")

type WSMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data"`
}

// InboundMessage keeps Data raw until the event type is known.
type InboundMessage struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId,omitempty"`
	Data   json.RawMessage `json:"data"`
}

type UpdateRidePayload struct {
	RideID string `json:"rideId"`
	Status string `json:"status"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func DecodeInbound(raw []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return InboundMessage{}, errors.Join(ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return InboundMessage{}, ErrMalformedMessage
	}
	return msg, nil
}

// RideID resolves the ride a joinRide or leaveRide targets. The ride ID may
// travel as the data string or as roomId.
func (m InboundMessage) RideID() (string, error) {
	if len(m.Data) > 0 && string(m.Data) != "null" {
		var id string
		if err := json.Unmarshal(m.Data, &id); err != nil {
			return "", errors.Join(ErrMalformedMessage, err)
		}
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	if id := strings.TrimSpace(m.RoomID); id != "" {
		return id, nil
	}
	return "", ErrMalformedMessage
}

func (m InboundMessage) UpdatePayload() (UpdateRidePayload, error) {
	var p UpdateRidePayload
	if err := json.Unmarshal(m.Data, &p); err != nil {
		return UpdateRidePayload{}, errors.Join(ErrMalformedMessage, err)
	}
	p.RideID = strings.TrimSpace(p.RideID)
	if p.RideID == "" {
		p.RideID = strings.TrimSpace(m.RoomID)
	}
	if p.RideID == "" {
		return UpdateRidePayload{}, ErrMalformedMessage
	}
	return p, nil
}

func NewError(roomID, code, message string) *WSMessage {
	return &WSMessage{
		Type:   ErrorEvent,
		RoomID: roomID,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
