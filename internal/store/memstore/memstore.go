// Package memstore keeps owners, availability rules and appointments in
// process memory. It enforces the same uniqueness rules as the SQL store.
package memstore

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

type slotKey struct {
	ownerID uuid.UUID
	date    civil.Date
	start   civil.Time
}

type Store struct {
	mu sync.RWMutex

	owners       map[string]domain.Owner
	rules        map[uuid.UUID][]domain.AvailabilityRule
	appointments map[slotKey]domain.Appointment
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		owners:       make(map[string]domain.Owner),
		rules:        make(map[uuid.UUID][]domain.AvailabilityRule),
		appointments: make(map[slotKey]domain.Appointment),
	}
}

func (s *Store) Owners() store.OwnerStore             { return ownerStore{s} }
func (s *Store) Availability() store.AvailabilityStore { return availabilityStore{s} }
func (s *Store) Appointments() store.AppointmentStore  { return appointmentStore{s} }
func (s *Store) Close() error                          { return nil }

type ownerStore struct{ s *Store }

func (o ownerStore) GetByUsername(ctx context.Context, username string) (domain.Owner, error) {
	if err := ctx.Err(); err != nil {
		return domain.Owner{}, err
	}
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()

	owner, ok := o.s.owners[username]
	if !ok {
		return domain.Owner{}, store.ErrNotFound
	}
	return owner, nil
}

func (o ownerStore) CreateIfAbsent(ctx context.Context, username, displayName string) (domain.Owner, error) {
	if err := ctx.Err(); err != nil {
		return domain.Owner{}, err
	}
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	if owner, ok := o.s.owners[username]; ok {
		return owner, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Owner{}, err
	}
	owner := domain.Owner{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	o.s.owners[username] = owner
	return owner, nil
}

type availabilityStore struct{ s *Store }

func (a availabilityStore) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AvailabilityRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	rules := a.s.rules[ownerID]
	out := make([]domain.AvailabilityRule, len(rules))
	copy(out, rules)
	return out, nil
}

func (a availabilityStore) ReplaceForOwner(ctx context.Context, ownerID uuid.UUID, rule domain.AvailabilityRule) (domain.AvailabilityRule, error) {
	if err := ctx.Err(); err != nil {
		return domain.AvailabilityRule{}, err
	}
	if rule.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.AvailabilityRule{}, err
		}
		rule.ID = id
	}
	rule.OwnerID = ownerID
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	a.s.mu.Lock()
	a.s.rules[ownerID] = []domain.AvailabilityRule{rule}
	a.s.mu.Unlock()

	return rule, nil
}

type appointmentStore struct{ s *Store }

func (a appointmentStore) FindByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date civil.Date) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	var out []domain.Appointment
	for k, appt := range a.s.appointments {
		if k.ownerID == ownerID && k.date == date {
			out = append(out, appt)
		}
	}
	domain.SortAppointments(out)
	return out, nil
}

func (a appointmentStore) FindByOwnerDateStart(ctx context.Context, ownerID uuid.UUID, date civil.Date, start civil.Time) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	appt, ok := a.s.appointments[slotKey{ownerID: ownerID, date: date, start: start}]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return appt, nil
}

func (a appointmentStore) Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Appointment{}, err
	}
	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}

	key := slotKey{ownerID: appt.OwnerID, date: appt.Date, start: appt.Start}

	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, taken := a.s.appointments[key]; taken {
		return domain.Appointment{}, store.ErrConflict
	}
	a.s.appointments[key] = appt
	return appt, nil
}

func (a appointmentStore) FindUpcoming(ctx context.Context, ownerID uuid.UUID, from civil.Date) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	var out []domain.Appointment
	for k, appt := range a.s.appointments {
		if k.ownerID == ownerID && !k.date.Before(from) {
			out = append(out, appt)
		}
	}
	domain.SortAppointments(out)
	return out, nil
}
