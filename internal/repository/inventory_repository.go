package repository

import (
	"app/internal/domain/model"
	"context"
)

// 在庫は「足りるときだけ減算」の条件付き原子更新で予約する。
// 事前チェック＋後書きの2段構えにはしない。
type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// バリアント在庫が足りるときだけ減算
	DecreaseVariantStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
	IncreaseVariantStock(ctx context.Context, variantID int64, qty int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
