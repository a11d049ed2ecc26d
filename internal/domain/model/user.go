package model

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSupport  Role = "SUPPORT"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// 累計購入額から導出する会員ランク
type LoyaltyTier string

const (
	TierNone    LoyaltyTier = "none"
	TierSilver  LoyaltyTier = "silver"
	TierGold    LoyaltyTier = "gold"
	TierDiamond LoyaltyTier = "diamond"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Name         string `gorm:"type:varchar(255)"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	TokenVersion int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`

	//支払い確定時のみ加算（単調増加）
	TotalSpent int64 `gorm:"not null;default:0"`

	//1000通貨単位ごとに1ポイント
	LoyaltyPoints int64 `gorm:"not null;default:0"`

	//TotalSpentから再計算で導出する。直接セットしない
	LoyaltyTier LoyaltyTier `gorm:"type:varchar(20);not null;default:'none'"`

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
