package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type VariantGormRepository struct {
	db *gorm.DB
}

func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

func (r *VariantGormRepository) FindByID(ctx context.Context, id int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

func (r *VariantGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	var vs []model.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&vs).Error; err != nil {
		return []model.ProductVariant{}, err
	}
	return vs, nil
}

func (r *VariantGormRepository) Create(ctx context.Context, v model.ProductVariant) (model.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

func (r *VariantGormRepository) Update(ctx context.Context, v model.ProductVariant) error {
	res := r.db.WithContext(ctx).Model(&model.ProductVariant{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"sku":   v.SKU,
		"name":  v.Name,
		"price": v.Price,
		"stock": v.Stock,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *VariantGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.ProductVariant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// デフォルトバリアントは商品ごとに1つ。
// 永続層のフックではなく、同一トランザクション内の明示的な2段更新で保証する
func (r *VariantGormRepository) SetDefault(ctx context.Context, productID int64, variantID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ProductVariant{}).
			Where("product_id = ?", productID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		res := tx.Model(&model.ProductVariant{}).
			Where("id = ? AND product_id = ?", variantID, productID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
