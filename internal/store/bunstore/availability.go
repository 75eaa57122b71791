package bunstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"slotbook/internal/domain"
)

type AvailabilityRepo struct {
	db *bun.DB
}

func NewAvailabilityRepo(db *bun.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AvailabilityRule, error) {
	var rows []availabilityRuleRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		OrderExpr("start_minute ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AvailabilityRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AvailabilityRepo) ReplaceForOwner(ctx context.Context, ownerID uuid.UUID, rule domain.AvailabilityRule) (domain.AvailabilityRule, error) {
	row := availabilityRuleRow{
		ID:          rule.ID,
		OwnerID:     ownerID,
		StartMinute: domain.MinuteOfDay(rule.Start),
		EndMinute:   domain.MinuteOfDay(rule.End),
		CreatedAt:   rule.CreatedAt,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockOwner(ctx, tx, ownerID); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*availabilityRuleRow)(nil)).
			Where("owner_id = ?", ownerID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(&row).Exec(ctx)
		return err
	})
	if err != nil {
		return domain.AvailabilityRule{}, err
	}
	return row.toDomain(), nil
}
