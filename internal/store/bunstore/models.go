package bunstore

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"slotbook/internal/domain"
)

type ownerRow struct {
	bun.BaseModel `bun:"table:calendar_owners"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Username    string    `bun:"username,notnull,unique"`
	DisplayName string    `bun:"display_name"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (o *ownerRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if o.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		o.ID = id
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (o ownerRow) toDomain() domain.Owner {
	return domain.Owner{
		ID:          o.ID,
		Username:    o.Username,
		DisplayName: o.DisplayName,
		CreatedAt:   o.CreatedAt,
	}
}

type availabilityRuleRow struct {
	bun.BaseModel `bun:"table:availability_rules"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID     uuid.UUID `bun:"owner_id,notnull,type:uuid"`
	StartMinute int       `bun:"start_minute,notnull"`
	EndMinute   int       `bun:"end_minute,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (r *availabilityRuleRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (r availabilityRuleRow) toDomain() domain.AvailabilityRule {
	return domain.AvailabilityRule{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Start:     domain.TimeOfMinute(r.StartMinute),
		End:       domain.TimeOfMinute(r.EndMinute),
		CreatedAt: r.CreatedAt,
	}
}

type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID      uuid.UUID `bun:"owner_id,notnull,type:uuid,unique:appointments_owner_date_start_key"`
	Date         dateValue `bun:"date,notnull,type:date,unique:appointments_owner_date_start_key"`
	StartMinute  int       `bun:"start_minute,notnull,unique:appointments_owner_date_start_key"`
	EndMinute    int       `bun:"end_minute,notnull"`
	InviteeName  string    `bun:"invitee_name,notnull"`
	InviteeEmail string    `bun:"invitee_email"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (a *appointmentRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

func appointmentRowOf(a domain.Appointment) appointmentRow {
	return appointmentRow{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		Date:         dateValue{a.Date},
		StartMinute:  domain.MinuteOfDay(a.Start),
		EndMinute:    domain.MinuteOfDay(a.End),
		InviteeName:  a.InviteeName,
		InviteeEmail: a.InviteeEmail,
		CreatedAt:    a.CreatedAt,
	}
}

func (a appointmentRow) toDomain() domain.Appointment {
	return domain.Appointment{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		Date:         a.Date.Date,
		Start:        domain.TimeOfMinute(a.StartMinute),
		End:          domain.TimeOfMinute(a.EndMinute),
		InviteeName:  a.InviteeName,
		InviteeEmail: a.InviteeEmail,
		CreatedAt:    a.CreatedAt,
	}
}

// dateValue stores a civil.Date as YYYY-MM-DD. Postgres hands back a
// time.Time for date columns, SQLite either text or a parsed time.
type dateValue struct {
	civil.Date
}

func (d dateValue) Value() (driver.Value, error) {
	return d.Date.String(), nil
}

func (d *dateValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = civil.DateOf(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		d.Date = civil.Date{}
		return nil
	default:
		return fmt.Errorf("bunstore: cannot scan %T into date", src)
	}
}

func (d *dateValue) parse(s string) error {
	if len(s) > len("2006-01-02") {
		s = s[:len("2006-01-02")]
	}
	parsed, err := civil.ParseDate(s)
	if err != nil {
		return err
	}
	d.Date = parsed
	return nil
}
