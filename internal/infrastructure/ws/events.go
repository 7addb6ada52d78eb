package ws

// Outbound events.
const (
	NewRide    = "newRide"
	RideUpdate = "rideUpdate"
	ErrorEvent = "error"
)

// Inbound events.
const (
	JoinRide   = "joinRide"
	UpdateRide = "updateRide"
	LeaveRide  = "leaveRide"
)

// Error codes carried by ErrorEvent.
const (
	CodeRideNotFound      = "RIDE_NOT_FOUND"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeStatusConflict    = "STATUS_CONFLICT"
	CodeStoreError        = "STORE_ERROR"
	CodeBadRequest        = "BAD_REQUEST"
	CodeRateLimited       = "RATE_LIMITED"
)
