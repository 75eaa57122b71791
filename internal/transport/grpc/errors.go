package grpc

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slotbook/internal/service/booking"
	"slotbook/internal/transport/wire"
)

// ErrorDomain is the ErrorInfo domain attached to every rejection.
const ErrorDomain = "slotbook"

func codeFor(reason booking.Reason) codes.Code {
	switch reason {
	case booking.ReasonOwnerNotFound:
		return codes.NotFound
	case booking.ReasonSlotUnavailable:
		return codes.FailedPrecondition
	case booking.ReasonSlotAlreadyBooked:
		return codes.AlreadyExists
	default:
		return codes.InvalidArgument
	}
}

func toStatus(err error) error {
	var rej *booking.Rejection
	switch {
	case errors.As(err, &rej):
		return withReason(status.New(codeFor(rej.Reason), rej.Error()), string(rej.Reason))
	case errors.Is(err, wire.ErrMalformed):
		return withReason(status.New(codes.InvalidArgument, err.Error()), wire.ReasonMalformed)
	case errors.Is(err, booking.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, "storage temporarily unavailable, try again")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func withReason(st *status.Status, reason string) error {
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: ErrorDomain,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// ReasonOf extracts the ErrorInfo reason from a status error, or "".
func ReasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}
