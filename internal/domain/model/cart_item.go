package model

import "time"

// カートの明細。
// 追加時点の価格を必ず保存。TotalPrice = UnitPriceSnapshot * Quantity を
// 全ての更新で保つ。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;index" json:"cart_id"`
	ProductID         int64     `gorm:"not null;index" json:"product_id"`
	VariantID         *int64    `gorm:"index" json:"variant_id,omitempty"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	TotalPrice        int64     `gorm:"not null" json:"total_price"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
