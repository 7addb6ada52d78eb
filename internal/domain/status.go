package domain

import (
	"fmt"
	"strings"
)

type RideStatus string

const (
	StatusPending    RideStatus = "pending"
	StatusAccepted   RideStatus = "accepted"
	StatusInProgress RideStatus = "in_progress"
	StatusCompleted  RideStatus = "completed"
	StatusCancelled  RideStatus = "cancelled"
)

var transitions = map[RideStatus][]RideStatus{
	StatusPending:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

// ParseRideStatus normalises case and surrounding whitespace.
func ParseRideStatus(raw string) (RideStatus, error) {
	s := RideStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

func (s RideStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s RideStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RideStatus) String() string {
	return string(s)
}
