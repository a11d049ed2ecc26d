package model

import "time"

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	Phone      string `gorm:"type:varchar(30)" json:"phone"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	Line1      string `gorm:"type:varchar(255);not null" json:"line1"`
	Line2      string `gorm:"type:varchar(255)" json:"line2"`

	//このユーザーのデフォルト住所か（1ユーザー1つ。書き込みTx内で保証）
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
