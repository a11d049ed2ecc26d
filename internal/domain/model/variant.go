package model

import "time"

// 商品バリアント（サイズ・色など）。価格と在庫を独自に持つ。
// デフォルトは商品ごとに1つまで（書き込みトランザクション内で保証する）。
type ProductVariant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	SKU       string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"sku"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	Stock     int64     `gorm:"not null" json:"stock"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
