package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodStripe PaymentMethod = "STRIPE"
	PaymentMethodPayOS  PaymentMethod = "PAYOS"
)

// 注文。監査のため削除しない。
// TotalAmount = Subtotal + TaxAmount + ShippingFee - DiscountAmount（0未満にしない）
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//ORD-{YY}{MM}-{連番} 形式の人間可読ID
	OrderNumber string `gorm:"type:varchar(30);not null;uniqueIndex" json:"order_number"`

	Subtotal       int64  `gorm:"not null" json:"subtotal"`
	DiscountAmount int64  `gorm:"not null;default:0" json:"discount_amount"`
	TaxAmount      int64  `gorm:"not null;default:0" json:"tax_amount"`
	ShippingFee    int64  `gorm:"not null;default:0" json:"shipping_fee"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	CouponCode     string `gorm:"type:varchar(50)" json:"coupon_code,omitempty"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`

	//決済プロバイダ側の取引ID
	PaymentTransactionID string `gorm:"type:varchar(128)" json:"payment_transaction_id,omitempty"`

	//配送先スナップショット
	ShippingName    string `gorm:"type:varchar(255);not null" json:"shipping_name"`
	ShippingPhone   string `gorm:"type:varchar(30)" json:"shipping_phone"`
	ShippingAddress string `gorm:"type:varchar(500);not null" json:"shipping_address"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
