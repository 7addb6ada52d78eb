package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidLocation    = errors.New("invalid location")

	ErrRideNotFound      = errors.New("ride not found")
	ErrInvalidStatus     = errors.New("invalid ride status")
	ErrInvalidTransition = errors.New("invalid ride status transition")
	ErrStatusConflict    = errors.New("ride status changed concurrently")

	ErrStoreRead  = errors.New("ride store read failed")
	ErrStoreWrite = errors.New("ride store write failed")
)
