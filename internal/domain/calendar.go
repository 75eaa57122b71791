package domain

import (
	"errors"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

var (
	ErrWindowOrder          = errors.New("start time must be before end time")
	ErrWindowTooShort       = errors.New("availability window must be at least 1 hour")
	ErrWindowNotHourAligned = errors.New("start and end times must be on the hour")
)

// Owner is the calendar holder. Username is the external identity.
type Owner struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

// AvailabilityRule is the daily window in which an owner accepts bookings.
type AvailabilityRule struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Start     civil.Time
	End       civil.Time
	CreatedAt time.Time
}

// Validate reports the first problem with the window, checking order, then
// length, then hour alignment.
func (r AvailabilityRule) Validate() error {
	return ValidateWindow(r.Start, r.End)
}

func ValidateWindow(start, end civil.Time) error {
	s := SinceMidnight(start)
	e := SinceMidnight(end)
	if s >= e {
		return ErrWindowOrder
	}
	if e-s < SlotDuration {
		return ErrWindowTooShort
	}
	if !onTheHour(start) || !onTheHour(end) {
		return ErrWindowNotHourAligned
	}
	return nil
}

func onTheHour(t civil.Time) bool {
	return t.Minute == 0 && t.Second == 0 && t.Nanosecond == 0
}

// Appointment is a booked slot. It is never updated after insert.
type Appointment struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Date         civil.Date
	Start        civil.Time
	End          civil.Time
	InviteeName  string
	InviteeEmail string
	CreatedAt    time.Time
}

func (a Appointment) Slot() Slot {
	return Slot{Date: a.Date, Start: a.Start, End: a.End}
}

// SortAppointments orders appointments ascending by (date, start).
func SortAppointments(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].Slot().Before(appts[j].Slot())
	})
}
