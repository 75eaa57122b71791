package booking

import (
	"errors"
	"fmt"
)

// Reason names why the engine turned a request down.
type Reason string

const (
	ReasonOwnerNotFound     Reason = "OWNER_NOT_FOUND"
	ReasonInvalidOwner      Reason = "INVALID_OWNER"
	ReasonInvalidOrder      Reason = "INVALID_ORDER"
	ReasonWindowTooShort    Reason = "WINDOW_TOO_SHORT"
	ReasonNotHourAligned    Reason = "NOT_HOUR_ALIGNED"
	ReasonPastDate          Reason = "PAST_DATE"
	ReasonInvalidInvitee    Reason = "INVALID_INVITEE"
	ReasonSlotUnavailable   Reason = "SLOT_UNAVAILABLE"
	ReasonSlotAlreadyBooked Reason = "SLOT_ALREADY_BOOKED"
)

// Rejection is a business-rule failure. Callers branch on Reason, either
// directly or with errors.Is against the Err* values below.
type Rejection struct {
	Reason Reason
	msg    string
}

func (e *Rejection) Error() string {
	return e.msg
}

func (e *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == e.Reason
}

func reject(reason Reason, msg string) *Rejection {
	return &Rejection{Reason: reason, msg: msg}
}

var (
	ErrOwnerNotFound     = reject(ReasonOwnerNotFound, "owner not found")
	ErrInvalidOwner      = reject(ReasonInvalidOwner, "username is required")
	ErrInvalidOrder      = reject(ReasonInvalidOrder, "start time must be before end time")
	ErrWindowTooShort    = reject(ReasonWindowTooShort, "availability window must be at least 1 hour")
	ErrNotHourAligned    = reject(ReasonNotHourAligned, "start and end times must be on the hour")
	ErrPastDate          = reject(ReasonPastDate, "date is in the past")
	ErrInvalidInvitee    = reject(ReasonInvalidInvitee, "invitee name is required")
	ErrSlotUnavailable   = reject(ReasonSlotUnavailable, "slot is not available")
	ErrSlotAlreadyBooked = reject(ReasonSlotAlreadyBooked, "slot is already booked")
)

// ErrStoreUnavailable wraps infrastructure faults. No decision was made when
// it is returned, so the caller may retry.
var ErrStoreUnavailable = errors.New("store unavailable")

func storeFault(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
