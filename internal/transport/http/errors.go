package http

import (
	"errors"
	"net/http"

	"slotbook/internal/service/booking"
	"slotbook/internal/transport/wire"
)

const (
	reasonStoreUnavailable = "STORE_UNAVAILABLE"
	reasonInternal         = "INTERNAL"
	reasonRateLimited      = "RATE_LIMITED"
)

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func statusFor(reason booking.Reason) int {
	switch reason {
	case booking.ReasonOwnerNotFound:
		return http.StatusNotFound
	case booking.ReasonSlotAlreadyBooked:
		return http.StatusConflict
	case booking.ReasonSlotUnavailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func errorResponse(err error) (int, errorBody) {
	var rej *booking.Rejection
	switch {
	case errors.As(err, &rej):
		return statusFor(rej.Reason), errorBody{Error: rej.Error(), Reason: string(rej.Reason)}
	case errors.Is(err, wire.ErrMalformed):
		return http.StatusBadRequest, errorBody{Error: err.Error(), Reason: wire.ReasonMalformed}
	case errors.Is(err, booking.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorBody{Error: "storage temporarily unavailable, try again", Reason: reasonStoreUnavailable}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal error", Reason: reasonInternal}
	}
}
