// Package validate checks loose string input taken from request paths,
// bodies and socket payloads.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	maxRideIDLength  = 128
	maxAddressLength = 512
)

// Validator reports why value is unacceptable, or nil.
type Validator func(value string) error

// Field runs validators in order and prefixes the first failure with name.
func Field(name string, validators ...Validator) Validator {
	return func(value string) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	}
}

func Required() Validator {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("this field is required")
		}
		return nil
	}
}

func MaxLength(max int) Validator {
	return func(v string) error {
		if len(v) > max {
			return fmt.Errorf("must be no more than %d characters", max)
		}
		return nil
	}
}

func NoSpaces() Validator {
	return func(v string) error {
		if strings.ContainsFunc(v, unicode.IsSpace) {
			return errors.New("must not contain spaces")
		}
		return nil
	}
}

// RideID is the rule for ride identifiers arriving from clients.
func RideID() Validator {
	return Field("rideId", Required(), MaxLength(maxRideIDLength), NoSpaces())
}

// Address bounds free-form location text.
func Address(name string) Validator {
	return Field(name, MaxLength(maxAddressLength))
}
