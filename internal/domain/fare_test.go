package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateFare_KnownDistance(t *testing.T) {
	est, err := EstimateFare(Coordinate{0, 0}, Coordinate{0, 1})
	require.NoError(t, err)

	assert.InDelta(t, 111.19, est.DistanceKm, 0.01)
	assert.InDelta(t, 113.19, est.Fare, 0.01)
}

func TestEstimateFare_SamePoint(t *testing.T) {
	p := Coordinate{Latitude: 37.7749, Longitude: -122.4194}

	est, err := EstimateFare(p, p)
	require.NoError(t, err)

	assert.Equal(t, 0.0, est.DistanceKm)
	assert.Equal(t, 2.0, est.Fare)
}

func TestEstimateFare_SymmetricAndFlatRate(t *testing.T) {
	pairs := []struct {
		name string
		a, b Coordinate
	}{
		{"SF to Oakland", Coordinate{37.7749, -122.4194}, Coordinate{37.8044, -122.2712}},
		{"NYC to LA", Coordinate{40.7128, -74.0060}, Coordinate{34.0522, -118.2437}},
		{"across antimeridian", Coordinate{-16.5, 179.9}, Coordinate{-17.1, -179.8}},
		{"pole to equator", Coordinate{90, 0}, Coordinate{0, 45}},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			forward, err := EstimateFare(tt.a, tt.b)
			require.NoError(t, err)
			backward, err := EstimateFare(tt.b, tt.a)
			require.NoError(t, err)

			assert.InDelta(t, forward.DistanceKm, backward.DistanceKm, 1e-9)
			assert.InDelta(t, 2+forward.DistanceKm, forward.Fare, 1e-9)
			assert.Greater(t, forward.DistanceKm, 0.0)
		})
	}
}

func TestEstimateFare_InvalidCoordinates(t *testing.T) {
	valid := Coordinate{1, 1}
	cases := []struct {
		name            string
		pickup, dropoff Coordinate
	}{
		{"NaN pickup latitude", Coordinate{math.NaN(), 0}, valid},
		{"Inf pickup longitude", Coordinate{0, math.Inf(1)}, valid},
		{"NaN dropoff longitude", valid, Coordinate{0, math.NaN()}},
		{"-Inf dropoff latitude", valid, Coordinate{math.Inf(-1), 0}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateFare(tt.pickup, tt.dropoff)
			assert.True(t, errors.Is(err, ErrInvalidCoordinates), "got %v", err)
		})
	}
}

func TestFareCalculator_CustomRates(t *testing.T) {
	calc := NewFareCalculator(5, 0.5)

	est, err := calc.Estimate(Coordinate{0, 0}, Coordinate{0, 1})
	require.NoError(t, err)

	assert.InDelta(t, 5+est.DistanceKm*0.5, est.Fare, 1e-9)
}

func BenchmarkHaversineDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HaversineDistance(37.7749, -122.4194, 37.8044, -122.2712)
	}
}
