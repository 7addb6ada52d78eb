package domain

import (
	"fmt"
	"math"
)

const (
	EarthRadiusKm = 6371.0

	DefaultBaseFare  = 2.0
	DefaultPerKmRate = 1.0
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) Valid() bool {
	return isFinite(c.Latitude) && isFinite(c.Longitude)
}

type FareEstimate struct {
	DistanceKm float64 `json:"distance"`
	Fare       float64 `json:"fare"`
}

type FareCalculator struct {
	BaseFare  float64
	PerKmRate float64
}

func NewFareCalculator(baseFare, perKmRate float64) *FareCalculator {
	return &FareCalculator{
		BaseFare:  baseFare,
		PerKmRate: perKmRate,
	}
}

func DefaultFareCalculator() *FareCalculator {
	return NewFareCalculator(DefaultBaseFare, DefaultPerKmRate)
}

func (f *FareCalculator) Estimate(pickup, dropoff Coordinate) (FareEstimate, error) {
	if !pickup.Valid() {
		return FareEstimate{}, fmt.Errorf("%w: pickup", ErrInvalidCoordinates)
	}
	if !dropoff.Valid() {
		return FareEstimate{}, fmt.Errorf("%w: dropoff", ErrInvalidCoordinates)
	}

	distance := HaversineDistance(pickup.Latitude, pickup.Longitude, dropoff.Latitude, dropoff.Longitude)

	return FareEstimate{
		DistanceKm: distance,
		Fare:       f.BaseFare + distance*f.PerKmRate,
	}, nil
}

// EstimateFare prices a trip at the default flat rate.
func EstimateFare(pickup, dropoff Coordinate) (FareEstimate, error) {
	return DefaultFareCalculator().Estimate(pickup, dropoff)
}

// HaversineDistance returns the great-circle distance in kilometres.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}
