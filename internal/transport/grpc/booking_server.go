package grpc

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/civil"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slotbook/internal/domain"
	"slotbook/internal/service/booking"
	"slotbook/internal/transport/wire"
)

type BookingServer struct {
	svc bookingService
	log *slog.Logger
}

var _ BookingServiceServer = (*BookingServer)(nil)

type bookingService interface {
	RegisterOwner(ctx context.Context, username, displayName string) (domain.Owner, error)
	SetAvailability(ctx context.Context, username string, start, end civil.Time) (domain.AvailabilityRule, error)
	Search(ctx context.Context, username string, date civil.Date) []domain.Slot
	Book(ctx context.Context, in booking.BookInput) (domain.Slot, error)
	ListUpcoming(ctx context.Context, username string) []domain.Appointment
}

func NewBookingServer(svc bookingService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.booking")),
	}
}

func (s *BookingServer) CreateOwner(ctx context.Context, req *wire.CreateOwnerRequest) (*wire.CreateOwnerResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateOwner"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	owner, err := s.svc.RegisterOwner(ctx, req.Username, req.DisplayName)
	if err != nil {
		return nil, s.fail(log, "owner create failed", err, slog.String("username", req.Username))
	}

	log.Info("owner registered", slog.String("owner_id", owner.ID.String()), slog.String("username", owner.Username))
	return &wire.CreateOwnerResponse{Owner: wire.OwnerOf(owner)}, nil
}

func (s *BookingServer) SetAvailability(ctx context.Context, req *wire.SetAvailabilityRequest) (*wire.SetAvailabilityResponse, error) {
	log := s.log.With(slog.String("rpc", "SetAvailability"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	start, err := wire.ParseTime("start_time", req.StartTime)
	if err != nil {
		return nil, s.fail(log, "invalid request", err, slog.String("username", req.Username))
	}
	end, err := wire.ParseTime("end_time", req.EndTime)
	if err != nil {
		return nil, s.fail(log, "invalid request", err, slog.String("username", req.Username))
	}

	rule, err := s.svc.SetAvailability(ctx, req.Username, start, end)
	if err != nil {
		return nil, s.fail(log, "availability update failed", err, slog.String("username", req.Username))
	}

	return &wire.SetAvailabilityResponse{Rule: wire.RuleOf(rule)}, nil
}

func (s *BookingServer) SearchSlots(ctx context.Context, req *wire.SearchSlotsRequest) (*wire.SearchSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "SearchSlots"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	date, err := wire.ParseDate("date", req.Date)
	if err != nil {
		return nil, s.fail(log, "invalid request", err, slog.String("username", req.Username))
	}

	slots := s.svc.Search(ctx, req.Username, date)

	log.Debug(
		"slots searched",
		slog.String("username", req.Username),
		slog.String("date", date.String()),
		slog.Int("count", len(slots)),
	)
	return &wire.SearchSlotsResponse{Slots: wire.SlotsOf(slots)}, nil
}

func (s *BookingServer) BookAppointment(ctx context.Context, req *wire.BookAppointmentRequest) (*wire.BookAppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "BookAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	date, err := wire.ParseDate("date", req.Date)
	if err != nil {
		return nil, s.fail(log, "invalid request", err, slog.String("username", req.Username))
	}
	start, err := wire.ParseTime("start_time", req.StartTime)
	if err != nil {
		return nil, s.fail(log, "invalid request", err, slog.String("username", req.Username))
	}

	slot, err := s.svc.Book(ctx, booking.BookInput{
		Username:     req.Username,
		Date:         date,
		Start:        start,
		InviteeName:  req.InviteeName,
		InviteeEmail: req.InviteeEmail,
	})
	if err != nil {
		return nil, s.fail(
			log,
			"appointment book failed",
			err,
			slog.String("username", req.Username),
			slog.String("date", req.Date),
			slog.String("start_time", req.StartTime),
		)
	}

	return &wire.BookAppointmentResponse{Slot: wire.SlotOf(slot)}, nil
}

func (s *BookingServer) ListUpcomingAppointments(ctx context.Context, req *wire.ListUpcomingAppointmentsRequest) (*wire.ListUpcomingAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListUpcomingAppointments"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	appts := s.svc.ListUpcoming(ctx, req.Username)

	log.Debug("appointments listed", slog.String("username", req.Username), slog.Int("count", len(appts)))
	return &wire.ListUpcomingAppointmentsResponse{Appointments: wire.AppointmentsOf(appts)}, nil
}

// fail logs err at a level that matches its kind and converts it to a status.
func (s *BookingServer) fail(log *slog.Logger, msg string, err error, attrs ...any) error {
	args := append([]any{slog.Any("err", err)}, attrs...)

	var rej *booking.Rejection
	switch {
	case errors.As(err, &rej):
		log.Info(msg, append(args, slog.String("reason", string(rej.Reason)))...)
	case errors.Is(err, wire.ErrMalformed):
		log.Warn(msg, args...)
	default:
		log.Error(msg, args...)
	}
	return toStatus(err)
}
