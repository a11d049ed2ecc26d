package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type WarrantyGormRepository struct {
	db *gorm.DB
}

func NewWarrantyGormRepository(db *gorm.DB) *WarrantyGormRepository {
	return &WarrantyGormRepository{db: db}
}

func (r *WarrantyGormRepository) CreateBulk(ctx context.Context, ws []model.Warranty) error {
	if len(ws) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ws).Error
}

func (r *WarrantyGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Warranty, error) {
	var ws []model.Warranty
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&ws).Error; err != nil {
		return []model.Warranty{}, err
	}
	return ws, nil
}

func (r *WarrantyGormRepository) FindByID(ctx context.Context, id int64) (model.Warranty, error) {
	var w model.Warranty
	err := r.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Warranty{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Warranty{}, err
	}
	return w, nil
}
