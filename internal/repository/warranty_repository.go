package repository

import (
	"context"

	"app/internal/domain/model"
)

type WarrantyRepository interface {
	CreateBulk(ctx context.Context, ws []model.Warranty) error
	ListByUserID(ctx context.Context, userID int64) ([]model.Warranty, error)
	FindByID(ctx context.Context, id int64) (model.Warranty, error)
}
