package model

import "time"

// 管理者が調整できるランク閾値テーブル。
// 行が無い場合はハードコードのデフォルトにフォールバックする。
type LoyaltyConfig struct {
	ID              int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Tier            LoyaltyTier `gorm:"type:varchar(20);not null;uniqueIndex" json:"tier"`
	MinSpent        int64       `gorm:"not null" json:"min_spent"`
	DiscountPercent int64       `gorm:"not null" json:"discount_percent"`
	CreatedAt       time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
