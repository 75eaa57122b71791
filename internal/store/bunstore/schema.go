package bunstore

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateSchema creates the tables and indexes if they do not exist yet.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().
			Model((*ownerRow)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewCreateTable().
			Model((*availabilityRuleRow)(nil)).
			IfNotExists().
			ForeignKey(`("owner_id") REFERENCES "calendar_owners" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewCreateIndex().
			Model((*availabilityRuleRow)(nil)).
			Index("availability_rules_owner_id_idx").
			Column("owner_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		_, err := tx.NewCreateTable().
			Model((*appointmentRow)(nil)).
			IfNotExists().
			ForeignKey(`("owner_id") REFERENCES "calendar_owners" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		return err
	})
}
