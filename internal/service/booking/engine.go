package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

// Engine decides availability and bookings. It holds no mutable state;
// every call reads a fresh snapshot from the stores, and the appointment
// store's uniqueness constraint is what makes concurrent bookings safe.
type Engine struct {
	owners       store.OwnerStore
	rules        store.AvailabilityStore
	appointments store.AppointmentStore

	generator domain.SlotGenerator
	now       func() time.Time
	loc       *time.Location
	log       *slog.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone in which "today" and "now" are evaluated.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithGenerator(g domain.SlotGenerator) Option {
	return func(e *Engine) { e.generator = g }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func NewEngine(owners store.OwnerStore, rules store.AvailabilityStore, appointments store.AppointmentStore, opts ...Option) *Engine {
	e := &Engine{
		owners:       owners,
		rules:        rules,
		appointments: appointments,
		generator:    domain.HourlyGenerator{},
		now:          time.Now,
		loc:          time.Local,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(slog.String("component", "booking.engine"))
	return e
}

// clock is read exactly once per request and threaded through.
func (e *Engine) clock() civil.DateTime {
	return civil.DateTimeOf(e.now().In(e.loc))
}

func (e *Engine) RegisterOwner(ctx context.Context, username, displayName string) (domain.Owner, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Owner{}, ErrInvalidOwner
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}

	owner, err := e.owners.CreateIfAbsent(ctx, username, displayName)
	if err != nil {
		return domain.Owner{}, storeFault(err)
	}
	return owner, nil
}

// SetAvailability replaces the owner's window. Checks run in order: owner,
// ordering, length, hour alignment.
func (e *Engine) SetAvailability(ctx context.Context, username string, start, end civil.Time) (domain.AvailabilityRule, error) {
	owner, err := e.lookupOwner(ctx, username)
	if err != nil {
		return domain.AvailabilityRule{}, err
	}

	if err := domain.ValidateWindow(start, end); err != nil {
		switch {
		case errors.Is(err, domain.ErrWindowOrder):
			return domain.AvailabilityRule{}, ErrInvalidOrder
		case errors.Is(err, domain.ErrWindowTooShort):
			return domain.AvailabilityRule{}, ErrWindowTooShort
		default:
			return domain.AvailabilityRule{}, ErrNotHourAligned
		}
	}

	rule, err := e.rules.ReplaceForOwner(ctx, owner.ID, domain.AvailabilityRule{
		OwnerID: owner.ID,
		Start:   start,
		End:     end,
	})
	if err != nil {
		return domain.AvailabilityRule{}, storeFault(err)
	}

	e.log.Info(
		"availability replaced",
		slog.String("owner", owner.Username),
		slog.String("start", rule.Start.String()),
		slog.String("end", rule.End.String()),
	)
	return rule, nil
}

// Search lists the free slots of an owner on date in (date, start) order.
// Every failure, including store faults, yields an empty result.
func (e *Engine) Search(ctx context.Context, username string, date civil.Date) []domain.Slot {
	now := e.clock()

	owner, err := e.lookupOwner(ctx, username)
	if err != nil {
		e.logDegraded("search", username, err)
		return []domain.Slot{}
	}
	if date.Before(now.Date) {
		e.log.Warn("search for past date", slog.String("owner", username), slog.String("date", date.String()))
		return []domain.Slot{}
	}

	snap, err := e.snapshot(ctx, owner, date)
	if err != nil {
		e.logDegraded("search", username, err)
		return []domain.Slot{}
	}
	return snap.free(e.generator, date, now)
}

type BookInput struct {
	Username     string
	Date         civil.Date
	Start        civil.Time
	InviteeName  string
	InviteeEmail string
}

// Book reserves the one-hour slot starting at in.Start. The free-set and
// point-lookup checks only produce precise errors early; the store's unique
// constraint on (owner, date, start) is what guarantees a single winner.
func (e *Engine) Book(ctx context.Context, in BookInput) (domain.Slot, error) {
	now := e.clock()

	owner, err := e.lookupOwner(ctx, in.Username)
	if err != nil {
		return domain.Slot{}, err
	}
	if in.Date.Before(now.Date) {
		return domain.Slot{}, ErrPastDate
	}
	name := strings.TrimSpace(in.InviteeName)
	if name == "" {
		return domain.Slot{}, ErrInvalidInvitee
	}

	want := domain.NewSlot(in.Date, in.Start)
	log := e.log.With(
		slog.String("owner", owner.Username),
		slog.String("date", want.Date.String()),
		slog.String("start", want.Start.String()),
	)

	snap, err := e.snapshot(ctx, owner, in.Date)
	if err != nil {
		log.Error("booking snapshot failed", slog.Any("err", err))
		return domain.Slot{}, err
	}
	if !containsSlot(snap.free(e.generator, in.Date, now), want) {
		// A slot that would be offered but for an existing booking was lost
		// to another booker; anything else was never on offer.
		if containsSlot(snap.offered(e.generator, in.Date, now), want) {
			log.Info("slot already booked")
			return domain.Slot{}, ErrSlotAlreadyBooked
		}
		log.Info("slot not available")
		return domain.Slot{}, ErrSlotUnavailable
	}

	_, err = e.appointments.FindByOwnerDateStart(ctx, owner.ID, in.Date, in.Start)
	switch {
	case err == nil:
		log.Info("slot already booked", slog.String("check", "point_lookup"))
		return domain.Slot{}, ErrSlotAlreadyBooked
	case !errors.Is(err, store.ErrNotFound):
		log.Error("slot lookup failed", slog.Any("err", err))
		return domain.Slot{}, storeFault(err)
	}

	appt, err := e.appointments.Insert(ctx, domain.Appointment{
		OwnerID:      owner.ID,
		Date:         want.Date,
		Start:        want.Start,
		End:          want.End,
		InviteeName:  name,
		InviteeEmail: strings.TrimSpace(in.InviteeEmail),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Info("slot already booked", slog.String("check", "unique_constraint"))
			return domain.Slot{}, ErrSlotAlreadyBooked
		}
		log.Error("appointment insert failed", slog.Any("err", err))
		return domain.Slot{}, storeFault(err)
	}

	log.Info("appointment booked", slog.String("appointment_id", appt.ID.String()))
	return appt.Slot(), nil
}

// ListUpcoming returns the owner's appointments from today on, ordered by
// (date, start). Failures yield an empty result.
func (e *Engine) ListUpcoming(ctx context.Context, username string) []domain.Appointment {
	now := e.clock()

	owner, err := e.lookupOwner(ctx, username)
	if err != nil {
		e.logDegraded("list_upcoming", username, err)
		return []domain.Appointment{}
	}

	appts, err := e.appointments.FindUpcoming(ctx, owner.ID, now.Date)
	if err != nil {
		e.logDegraded("list_upcoming", username, storeFault(err))
		return []domain.Appointment{}
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	return appts
}

func (e *Engine) lookupOwner(ctx context.Context, username string) (domain.Owner, error) {
	owner, err := e.owners.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Owner{}, ErrOwnerNotFound
		}
		return domain.Owner{}, storeFault(err)
	}
	return owner, nil
}

func (e *Engine) logDegraded(op, username string, err error) {
	if errors.Is(err, ErrStoreUnavailable) {
		e.log.Error(op+" degraded to empty", slog.String("owner", username), slog.Any("err", err))
		return
	}
	e.log.Warn(op+" degraded to empty", slog.String("owner", username), slog.Any("err", err))
}

// snapshot is one read of everything slot computation needs for a date.
type snapshot struct {
	rules        []domain.AvailabilityRule
	bookedStarts []civil.Time
}

func (e *Engine) snapshot(ctx context.Context, owner domain.Owner, date civil.Date) (snapshot, error) {
	rules, err := e.rules.FindByOwner(ctx, owner.ID)
	if err != nil {
		return snapshot{}, storeFault(err)
	}
	if len(rules) == 0 {
		return snapshot{}, nil
	}

	appts, err := e.appointments.FindByOwnerAndDate(ctx, owner.ID, date)
	if err != nil {
		return snapshot{}, storeFault(err)
	}
	booked := make([]civil.Time, 0, len(appts))
	for _, a := range appts {
		booked = append(booked, a.Start)
	}
	return snapshot{rules: rules, bookedStarts: booked}, nil
}

func (s snapshot) free(gen domain.SlotGenerator, date civil.Date, now civil.DateTime) []domain.Slot {
	return s.generate(gen, date, s.bookedStarts, now)
}

// offered ignores existing bookings.
func (s snapshot) offered(gen domain.SlotGenerator, date civil.Date, now civil.DateTime) []domain.Slot {
	return s.generate(gen, date, nil, now)
}

func (s snapshot) generate(gen domain.SlotGenerator, date civil.Date, booked []civil.Time, now civil.DateTime) []domain.Slot {
	out := make([]domain.Slot, 0, 8)
	for _, r := range s.rules {
		out = append(out, gen.Generate(date, r.Start, r.End, booked, now)...)
	}
	domain.SortSlots(out)
	return out
}

func containsSlot(slots []domain.Slot, want domain.Slot) bool {
	for _, s := range slots {
		if s.Equal(want) {
			return true
		}
	}
	return false
}
