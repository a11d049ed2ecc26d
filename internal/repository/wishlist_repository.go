package repository

import (
	"context"

	"app/internal/domain/model"
)

type WishlistRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	//重複追加は何もしない
	Add(ctx context.Context, userID int64, productID int64) error
	Remove(ctx context.Context, userID int64, productID int64) error
}
