package bunstore

import (
	"context"

	"github.com/uptrace/bun"

	"slotbook/internal/domain"
)

type OwnerRepo struct {
	db *bun.DB
}

func NewOwnerRepo(db *bun.DB) *OwnerRepo {
	return &OwnerRepo{db: db}
}

func (r *OwnerRepo) GetByUsername(ctx context.Context, username string) (domain.Owner, error) {
	var row ownerRow
	err := r.db.NewSelect().
		Model(&row).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Owner{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (r *OwnerRepo) CreateIfAbsent(ctx context.Context, username, displayName string) (domain.Owner, error) {
	row := ownerRow{Username: username, DisplayName: displayName}
	_, err := r.db.NewInsert().
		Model(&row).
		On("CONFLICT (username) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Owner{}, err
	}
	return r.GetByUsername(ctx, username)
}
