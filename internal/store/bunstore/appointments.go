package bunstore

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) FindByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date civil.Date) ([]domain.Appointment, error) {
	var rows []appointmentRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		Where("date = ?", dateValue{date}).
		OrderExpr("start_minute ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return toAppointments(rows), nil
}

func (r *AppointmentRepo) FindByOwnerDateStart(ctx context.Context, ownerID uuid.UUID, date civil.Date, start civil.Time) (domain.Appointment, error) {
	var row appointmentRow
	err := r.db.NewSelect().
		Model(&row).
		Where("owner_id = ?", ownerID).
		Where("date = ?", dateValue{date}).
		Where("start_minute = ?", domain.MinuteOfDay(start)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, notFound(err)
	}
	return row.toDomain(), nil
}

// Insert relies on the (owner_id, date, start_minute) unique constraint as
// the final arbiter between concurrent bookers.
func (r *AppointmentRepo) Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	row := appointmentRowOf(appt)
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}
	return row.toDomain(), nil
}

func (r *AppointmentRepo) FindUpcoming(ctx context.Context, ownerID uuid.UUID, from civil.Date) ([]domain.Appointment, error) {
	var rows []appointmentRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		Where("date >= ?", dateValue{from}).
		OrderExpr("date ASC, start_minute ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return toAppointments(rows), nil
}

func toAppointments(rows []appointmentRow) []domain.Appointment {
	out := make([]domain.Appointment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
