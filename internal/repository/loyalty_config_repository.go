package repository

import (
	"context"

	"app/internal/domain/model"
)

type LoyaltyConfigRepository interface {
	//min_spent昇順で全件
	ListOrdered(ctx context.Context) ([]model.LoyaltyConfig, error)

	//tierをキーに作成または更新
	Upsert(ctx context.Context, cfg model.LoyaltyConfig) error
}
