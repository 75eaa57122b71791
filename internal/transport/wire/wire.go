// Package wire holds the request and response shapes shared by the gRPC and
// HTTP transports, and the text encodings of dates and times they carry.
package wire

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"slotbook/internal/domain"
)

// ReasonMalformed is reported when a request cannot be decoded at all.
const ReasonMalformed = "MALFORMED_REQUEST"

var ErrMalformed = errors.New("malformed request")

type Owner struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type CreateOwnerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

type CreateOwnerResponse struct {
	Owner *Owner `json:"owner"`
}

type AvailabilityRule struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SetAvailabilityRequest struct {
	Username  string `json:"username"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SetAvailabilityResponse struct {
	Rule *AvailabilityRule `json:"rule"`
}

type Slot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SearchSlotsRequest struct {
	Username string `json:"username"`
	Date     string `json:"date"`
}

type SearchSlotsResponse struct {
	Slots []*Slot `json:"slots"`
}

type BookAppointmentRequest struct {
	Username     string `json:"username"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	InviteeName  string `json:"invitee_name"`
	InviteeEmail string `json:"invitee_email,omitempty"`
}

type BookAppointmentResponse struct {
	Slot *Slot `json:"slot"`
}

type Appointment struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	InviteeName  string `json:"invitee_name"`
	InviteeEmail string `json:"invitee_email,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type ListUpcomingAppointmentsRequest struct {
	Username string `json:"username"`
}

type ListUpcomingAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(field, s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrMalformed, field)
	}
	return d, nil
}

// ParseTime accepts HH:MM and HH:MM:SS.
func ParseTime(field, s string) (civil.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len("15:04") {
		s += ":00"
	}
	t, err := civil.ParseTime(s)
	if err != nil {
		return civil.Time{}, fmt.Errorf("%w: %s must be HH:MM", ErrMalformed, field)
	}
	return t, nil
}

func FormatTime(t civil.Time) string {
	if t.Second == 0 && t.Nanosecond == 0 {
		return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	}
	return t.String()
}

func OwnerOf(o domain.Owner) *Owner {
	return &Owner{
		ID:          o.ID.String(),
		Username:    o.Username,
		DisplayName: o.DisplayName,
	}
}

func RuleOf(r domain.AvailabilityRule) *AvailabilityRule {
	return &AvailabilityRule{
		ID:        r.ID.String(),
		StartTime: FormatTime(r.Start),
		EndTime:   FormatTime(r.End),
	}
}

func SlotOf(s domain.Slot) *Slot {
	return &Slot{
		Date:      s.Date.String(),
		StartTime: FormatTime(s.Start),
		EndTime:   FormatTime(s.End),
	}
}

func SlotsOf(slots []domain.Slot) []*Slot {
	out := make([]*Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotOf(s))
	}
	return out
}

func AppointmentOf(a domain.Appointment) *Appointment {
	out := &Appointment{
		ID:           a.ID.String(),
		Date:         a.Date.String(),
		StartTime:    FormatTime(a.Start),
		EndTime:      FormatTime(a.End),
		InviteeName:  a.InviteeName,
		InviteeEmail: a.InviteeEmail,
	}
	if !a.CreatedAt.IsZero() {
		out.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func AppointmentsOf(appts []domain.Appointment) []*Appointment {
	out := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, AppointmentOf(a))
	}
	return out
}
