package store

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"slotbook/internal/domain"
)

type OwnerStore interface {
	// GetByUsername returns ErrNotFound when no owner has that username.
	GetByUsername(ctx context.Context, username string) (domain.Owner, error)
	CreateIfAbsent(ctx context.Context, username, displayName string) (domain.Owner, error)
}

type AvailabilityStore interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AvailabilityRule, error)
	// ReplaceForOwner atomically drops every rule of the owner and stores rule
	// in their place. Readers never observe the owner without a rule.
	ReplaceForOwner(ctx context.Context, ownerID uuid.UUID, rule domain.AvailabilityRule) (domain.AvailabilityRule, error)
}

type AppointmentStore interface {
	FindByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date civil.Date) ([]domain.Appointment, error)
	// FindByOwnerDateStart returns ErrNotFound when the slot is free.
	FindByOwnerDateStart(ctx context.Context, ownerID uuid.UUID, date civil.Date, start civil.Time) (domain.Appointment, error)
	// Insert returns ErrConflict when (owner, date, start) is already taken.
	Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	// FindUpcoming lists appointments on or after from, ordered by (date, start).
	FindUpcoming(ctx context.Context, ownerID uuid.UUID, from civil.Date) ([]domain.Appointment, error)
}

// Store bundles the three collaborators the booking engine reads and writes.
type Store interface {
	Owners() OwnerStore
	Availability() AvailabilityStore
	Appointments() AppointmentStore
	Close() error
}
