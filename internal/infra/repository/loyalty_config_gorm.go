package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoyaltyConfigGormRepository struct {
	db *gorm.DB
}

func NewLoyaltyConfigGormRepository(db *gorm.DB) *LoyaltyConfigGormRepository {
	return &LoyaltyConfigGormRepository{db: db}
}

// min_spent昇順で全件。0件ならデフォルトにフォールバックする（usecase側）
func (r *LoyaltyConfigGormRepository) ListOrdered(ctx context.Context) ([]model.LoyaltyConfig, error) {
	var rows []model.LoyaltyConfig
	if err := r.db.WithContext(ctx).Order("min_spent asc").Find(&rows).Error; err != nil {
		return []model.LoyaltyConfig{}, err
	}
	return rows, nil
}

// tierをキーにupsert
func (r *LoyaltyConfigGormRepository) Upsert(ctx context.Context, cfg model.LoyaltyConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tier"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_spent", "discount_percent", "updated_at"}),
		}).
		Create(&cfg).Error
}
