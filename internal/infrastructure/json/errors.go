package json

import (
	"errors"
	"net/http"
	"strconv"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, err error, msg string) {
	Write(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
	})
}

func WriteValidationError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, err, err.Error())
}

func WriteNotFoundError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusNotFound, errors.New("not found"), msg)
}

// WriteInternalError hides err from the client. Callers log it.
func WriteInternalError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusInternalServerError, err, "An unexpected error occurred")
}

func WriteRateLimitError(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	WriteError(w, http.StatusTooManyRequests, errors.New("rate limited"), "Too many requests. Please try again later.")
}
