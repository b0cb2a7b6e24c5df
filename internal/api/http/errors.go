package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Date    string `json:"date,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeError maps core errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Message: err.Error()}
	status := http.StatusInternalServerError

	var insufficient *domain.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		status, resp.Error = http.StatusConflict, "INSUFFICIENT_INVENTORY"
		resp.Date = domain.FormatDate(insufficient.Date)
	case errors.Is(err, domain.ErrInsufficientInventory):
		status, resp.Error = http.StatusConflict, "INSUFFICIENT_INVENTORY"
	case errors.Is(err, domain.ErrInvalidRange):
		status, resp.Error = http.StatusBadRequest, "INVALID_RANGE"
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, resp.Error = http.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrInvalidGuests):
		status, resp.Error = http.StatusBadRequest, "INVALID_GUESTS"
	case errors.Is(err, domain.ErrReservationNotFound):
		status, resp.Error = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrAlreadyProcessed):
		status, resp.Error = http.StatusConflict, "ALREADY_PROCESSED"
	case errors.Is(err, domain.ErrCapacityBelowConsumed):
		status, resp.Error = http.StatusConflict, "CAPACITY_BELOW_CONSUMED"
	case errors.Is(err, domain.ErrHoldExpired):
		status, resp.Error = http.StatusGone, "HOLD_EXPIRED"
	case errors.Is(err, domain.ErrLockTimeout):
		status, resp.Error = http.StatusServiceUnavailable, "LOCK_TIMEOUT"
	default:
		resp.Error = "INTERNAL"
		resp.Message = "internal server error"
		logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	writeJSON(w, status, resp)
}

func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, "BAD_REQUEST", message)
}
