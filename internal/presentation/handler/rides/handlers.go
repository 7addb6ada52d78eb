package rides

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/ridehail/internal/domain"
	"github.com/hilthontt/ridehail/internal/infrastructure/json"
	"github.com/hilthontt/ridehail/internal/infrastructure/logging"
	"github.com/hilthontt/ridehail/internal/infrastructure/validate"
)

const invalidCoordinatesMessage = "Invalid coordinates"

// Dispatcher is the slice of the dispatch core the HTTP API needs.
type Dispatcher interface {
	CreateRide(ctx context.Context, pickup, dropoff domain.Location) (*domain.Ride, error)
	GetRide(ctx context.Context, rideID string) (*domain.Ride, error)
}

type Handler struct {
	dispatcher Dispatcher
	fares      *domain.FareCalculator
	logger     logging.Logger
}

func NewHandler(dispatcher Dispatcher, fares *domain.FareCalculator, logger logging.Logger) *Handler {
	if fares == nil {
		fares = domain.DefaultFareCalculator()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Handler{
		dispatcher: dispatcher,
		fares:      fares,
		logger:     logger,
	}
}

// CreateRideHandler godoc
// @Summary      Request a ride
// @Description  Stores a pending ride and announces it to every connected socket
// @Tags         rides
// @Accept       json
// @Produce      json
// @Param        request body createRideRequest true "Pickup and dropoff"
// @Success      200 {object} domain.Ride "Ride created"
// @Failure      400 {object} json.ErrorResponse "Malformed body or missing location"
// @Failure      500 {object} json.ErrorResponse "Ride store failure"
// @Router       /api/rides [post]
func (h *Handler) CreateRideHandler(w http.ResponseWriter, r *http.Request) {
	var req createRideRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	for _, check := range []error{
		validate.Address("pickup")(req.Pickup.Address),
		validate.Address("dropoff")(req.Dropoff.Address),
	} {
		if check != nil {
			json.WriteValidationError(w, check)
			return
		}
	}

	ride, err := h.dispatcher.CreateRide(r.Context(), req.Pickup, req.Dropoff)
	if err != nil {
		h.writeRideError(w, err)
		return
	}

	json.Write(w, http.StatusOK, ride)
}

// GetRideHandler godoc
// @Summary      Get a ride
// @Description  Returns the stored ride with its current status
// @Tags         rides
// @Produce      json
// @Param        rideId path string true "Ride ID"
// @Success      200 {object} domain.Ride
// @Failure      404 {object} json.ErrorResponse "Ride not found"
// @Failure      500 {object} json.ErrorResponse "Ride store failure"
// @Router       /api/rides/{rideId} [get]
func (h *Handler) GetRideHandler(w http.ResponseWriter, r *http.Request) {
	rideID := strings.TrimSpace(chi.URLParam(r, "rideId"))
	if err := validate.RideID()(rideID); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ride, err := h.dispatcher.GetRide(r.Context(), rideID)
	if err != nil {
		h.writeRideError(w, err)
		return
	}

	json.Write(w, http.StatusOK, ride)
}

// EstimateFareHandler godoc
// @Summary      Estimate a fare
// @Description  Prices a trip from the great-circle distance between two coordinates
// @Tags         fare
// @Accept       json
// @Produce      json
// @Param        request body fareRequest true "Pickup and dropoff coordinates"
// @Success      200 {object} fareResponse
// @Failure      400 {object} json.ErrorResponse "Missing or non-numeric coordinates"
// @Router       /api/fare [post]
func (h *Handler) EstimateFareHandler(w http.ResponseWriter, r *http.Request) {
	var req fareRequest
	if err := json.Read(r, &req); err != nil {
		writeInvalidCoordinates(w)
		return
	}

	pickup, ok := req.Pickup.toDomain()
	if !ok {
		writeInvalidCoordinates(w)
		return
	}
	dropoff, ok := req.Dropoff.toDomain()
	if !ok {
		writeInvalidCoordinates(w)
		return
	}

	estimate, err := h.fares.Estimate(pickup, dropoff)
	if err != nil {
		writeInvalidCoordinates(w)
		return
	}

	json.Write(w, http.StatusOK, fareResponse{
		Distance: estimate.DistanceKm,
		Fare:     estimate.Fare,
	})
}

// Fare clients read the reason from "error" directly.
func writeInvalidCoordinates(w http.ResponseWriter) {
	json.Write(w, http.StatusBadRequest, json.ErrorResponse{Error: invalidCoordinatesMessage})
}

func (h *Handler) writeRideError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidLocation):
		json.WriteValidationError(w, err)
	case errors.Is(err, domain.ErrRideNotFound):
		json.WriteNotFoundError(w, "Ride not found")
	default:
		h.logger.Error(logging.RequestResponse, logging.ExternalService, "ride request failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w, err)
	}
}
