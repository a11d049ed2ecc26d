package model

import (
	"time"

	"gorm.io/gorm"
)

type CouponType string

const (
	CouponTypePercent CouponType = "percent"
	CouponTypeFixed   CouponType = "fixed"
)

// クーポン。コードは大文字に正規化して保存する。
// 評価は毎回その場で行う（注文に状態を持たない）。
type Coupon struct {
	ID   int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Type CouponType `gorm:"type:varchar(20);not null" json:"type"`

	//percentなら割引率、fixedなら割引額
	Value int64 `gorm:"not null" json:"value"`

	MinOrderAmount int64 `gorm:"not null;default:0" json:"min_order_amount"`

	//0なら上限なし
	MaxDiscount int64 `gorm:"not null;default:0" json:"max_discount"`

	StartDate *time.Time `gorm:"index" json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"index" json:"end_date,omitempty"`

	//0なら回数無制限
	UsageLimit int64 `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount  int64 `gorm:"not null;default:0" json:"used_count"`

	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
