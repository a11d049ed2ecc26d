package model

import "time"

type WarrantyStatus string

const (
	WarrantyStatusActive  WarrantyStatus = "ACTIVE"
	WarrantyStatusExpired WarrantyStatus = "EXPIRED"
)

// 保証。注文がDELIVEREDになった時点で明細ごとに作成する。
type Warranty struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64          `gorm:"not null;index" json:"order_id"`
	OrderItemID int64          `gorm:"not null;uniqueIndex" json:"order_item_id"`
	UserID      int64          `gorm:"not null;index" json:"user_id"`
	ProductID   int64          `gorm:"not null;index" json:"product_id"`
	Status      WarrantyStatus `gorm:"type:varchar(20);not null" json:"status"`
	StartsAt    time.Time      `gorm:"not null" json:"starts_at"`
	ExpiresAt   time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}
