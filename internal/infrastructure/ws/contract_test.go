package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"joinRide","data":"abc123"}`))
	require.NoError(t, err)
	assert.Equal(t, JoinRide, msg.Type)

	id, err := msg.RideID()
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	_, err = DecodeInbound([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = DecodeInbound([]byte(`{"data":"x"}`))
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestInboundMessage_RideIDFallsBackToRoom(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"leaveRide","roomId":"r-9"}`))
	require.NoError(t, err)

	id, err := msg.RideID()
	require.NoError(t, err)
	assert.Equal(t, "r-9", id)

	msg, err = DecodeInbound([]byte(`{"type":"joinRide","data":42}`))
	require.NoError(t, err)
	_, err = msg.RideID()
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestInboundMessage_UpdatePayload(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"updateRide","data":{"rideId":" r-1 ","status":"accepted"}}`))
	require.NoError(t, err)

	p, err := msg.UpdatePayload()
	require.NoError(t, err)
	assert.Equal(t, UpdateRidePayload{RideID: "r-1", Status: "accepted"}, p)

	msg, err = DecodeInbound([]byte(`{"type":"updateRide","data":{"status":"accepted"}}`))
	require.NoError(t, err)
	_, err = msg.UpdatePayload()
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestNewError_WireShape(t *testing.T) {
	out, err := json.Marshal(NewError("r-1", CodeRideNotFound, "ride not found"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"error","roomId":"r-1","data":{"code":"RIDE_NOT_FOUND","message":"ride not found"}}`, string(out))
}
